//go:build !darwin && !linux && !windows

package platform

import (
	"fmt"
	"runtime"
)

// NewInjector reports that input injection is not supported on this OS.
func NewInjector() (Injector, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s", ErrInjectionUnavailable, runtime.GOOS)
}
