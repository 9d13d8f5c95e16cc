package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/AndreyATC/ph-monitor/internal/app"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dashboard until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt.logger.Info("starting", "version", Version, "env", rt.cfg.AppEnv)
			err := app.Run(cmd.Context(), rt.cfg, rt.logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			rt.logger.Info("shutting down")
			return nil
		},
	}
}
