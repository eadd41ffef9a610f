//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext returns a context cancelled on interrupt, so an interrupted
// batch stops scheduling renders. Call stop() to release resources.
// syscall.SIGTERM is not available on Windows.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
