package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"portfolio-api/internal/trace"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "portfolio-api",
		Short:        "Trades dashboard backend for Alpaca accounts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeSystem()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = trace.Shutdown(ctx)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newTradesCmd(&configPath),
		newMetricsCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), trace.ServiceName, version)
			},
		},
	)
	return cmd
}
