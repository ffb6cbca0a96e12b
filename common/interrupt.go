package common

import (
	"os"
	"os/signal"
	"syscall"
)

// Interrupted delivers the signals that should shut a daemon down.
func Interrupted() <-chan os.Signal {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	return interrupt
}
