package main

import (
	"encoding/json"
	"fmt"
	"io"

	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/store"

	"github.com/spf13/cobra"
)

// newTradesCmd prints an account's reconstructed trades without starting the
// server.
func newTradesCmd(configPath *string) *cobra.Command {
	var (
		project int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Print reconstructed trades for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccount(cmd, *configPath, project, func(p interfaces.Portfolio, acct store.AccountConfig) error {
				res := p.Trades(cmd.Context(), acct.ID)
				shown := res.Trades
				if limit >= 0 && len(shown) > limit {
					shown = shown[:limit]
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"algorithm": acct.Name,
					"trades":    shown,
					"total":     len(res.Trades),
					"stats":     p.Stats(cmd.Context(), acct.ID),
				})
			})
		},
	}
	cmd.Flags().IntVarP(&project, "project", "p", 1, "account id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "max trades to print, -1 for all")
	return cmd
}

func newMetricsCmd(configPath *string) *cobra.Command {
	var project int
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the dashboard metrics snapshot for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccount(cmd, *configPath, project, func(p interfaces.Portfolio, acct store.AccountConfig) error {
				return writeJSON(cmd.OutOrStdout(), p.Metrics(cmd.Context(), acct.ID))
			})
		},
	}
	cmd.Flags().IntVarP(&project, "project", "p", 1, "account id")
	return cmd
}

func withAccount(cmd *cobra.Command, configPath string, project int, fn func(interfaces.Portfolio, store.AccountConfig) error) error {
	cfg, p, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	acct, ok := cfg.Account(project)
	if !ok {
		return fmt.Errorf("unknown project %d", project)
	}
	return fn(p, acct)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
