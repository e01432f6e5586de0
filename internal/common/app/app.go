package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// CreateContextWithShutdown returns a context derived from parent that will report done when a SIGINT
// or SIGTERM is received. Calling the returned cancel function releases the signal handler.
func CreateContextWithShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			log.Infof("Received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
