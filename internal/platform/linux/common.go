//go:build linux

package linux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// commandTimeout bounds every helper tool invocation so a hung tool
// cannot stall a jiggle cycle or a zen poll.
const commandTimeout = 2 * time.Second

// hasCommand reports whether name resolves on PATH.
func hasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// runVerbose executes a command and returns the combined output (stdout+stderr) and any error.
func runVerbose(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%s timed out after %s", name, commandTimeout)
	}
	return strings.TrimSpace(buf.String()), err
}

// ProcessRunning reports whether a process with the given name exists.
func ProcessRunning(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false
	}
	for _, p := range procs {
		if n, err := p.NameWithContext(ctx); err == nil && n == name {
			return true
		}
	}
	return false
}
