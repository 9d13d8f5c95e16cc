// Package cli provides the command-line interface for phmonitor.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/logging"
)

const appName = "phmonitor"

// runtime carries what PersistentPreRunE loads into the subcommands.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree. Configuration comes from the
// environment and is loaded before any subcommand runs.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Aquarium pH dashboard",
		Long: `phmonitor serves a dashboard of aquarium pH readings over a selected
date and time range: summary metrics, a threshold chart and an Excel export.

Readings come from a local SQLite file, a Supabase (PostgREST) table or a
Postgres database, selected with STORE_BACKEND.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			rt.cfg = cfg
			rt.logger = logging.New(cfg, Version, appName)
			slog.SetDefault(rt.logger)
			return nil
		},
	}

	root.AddCommand(newServeCmd(rt))
	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newExportCmd(rt))
	root.AddCommand(newSeedCmd(rt))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command with ctx as the command context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
