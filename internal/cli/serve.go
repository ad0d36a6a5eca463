package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mobcsv/internal/history"
	"github.com/JonMunkholm/mobcsv/internal/web"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalizer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}

	c.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides MOBCSV_ADDR)")
	return c
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to ShutdownTimeout.
func (a *app) serve(ctx context.Context) error {
	var runs web.RunStore
	if a.cfg.Database.HistoryEnabled() {
		pool, store, err := history.Connect(ctx, a.cfg.Database)
		if err != nil {
			a.logger.Warn("run history unavailable", "error", err)
		} else {
			defer pool.Close()
			runs = store
		}
	}

	server := web.NewServer(a.cfg, runs)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
