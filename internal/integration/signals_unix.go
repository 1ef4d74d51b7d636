//go:build !windows

// Package integration holds end-to-end tests that drive the keeper with a
// recording injector and a scripted monitor.
package integration

import (
	"os"
	"syscall"
)

func shutdownSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}
