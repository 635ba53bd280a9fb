package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joywithwealth/jwwblog"
	"github.com/joywithwealth/jwwblog/logger"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := jwwblog.LoadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			_, flush := logger.Init(os.Stderr, logger.Options{
				Dev:       cfg.IsDevelopment(),
				SentryDSN: cfg.SentryDSN,
				Release:   version,
			})
			defer flush()

			return serve(cmd.Context(), jwwblog.New(cfg))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}

// serve runs app until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests.
func serve(ctx context.Context, app *jwwblog.App) error {
	if err := app.Setup(); err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", app.Config.Addr, "url", app.Config.URL)
		errc <- app.Echo.Start(app.Config.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
