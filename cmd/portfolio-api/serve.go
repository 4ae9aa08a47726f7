package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-api/internal/logger"
	"portfolio-api/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, p, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}

			srv := server.New(cfg, p)
			errc := make(chan error, 1)
			go func() {
				errc <- srv.Start(ctx)
			}()

			select {
			case err := <-errc:
				if err != nil {
					logger.ErrorWithErr(ctx, "HTTP server stopped", err)
				}
				return err
			case <-ctx.Done():
			}

			logger.Info(context.Background(), "Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.ErrorWithErr(shutdownCtx, "Graceful shutdown failed", err)
				return err
			}
			return <-errc
		},
	}
}
