package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// RunUntilSignal blocks until SIGINT or SIGTERM arrives, then runs
// onSignal and returns. The caller's shutdown sequence (stopping a
// streaming session, draining a read loop) runs inside onSignal, so
// RunUntilSignal doesn't return until that sequence has finished.
func RunUntilSignal(onSignal func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	onSignal()
}
