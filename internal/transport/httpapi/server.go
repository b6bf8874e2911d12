package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fleetcheck/internal/bootstrap/logging"
)

type Server struct {
	server *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "http.server"))
	logging.Info(logCtx, "http server started", slog.String("addr", s.server.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info(logCtx, "http server shutting down")
		return s.server.Shutdown(shutdownCtx)
	}
}
