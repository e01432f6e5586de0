package serve

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// ListenAndServe runs server until ctx is done and then shuts it down gracefully. It returns nil after
// a clean shutdown.
func ListenAndServe(ctx context.Context, server *http.Server) error {
	errs := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.Wrapf(err, "serving on %s", server.Addr)
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Infof("Stopping server on %s", server.Addr)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	return <-errs
}
