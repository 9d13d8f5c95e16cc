package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/repository"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the ph_logs schema of the configured store",
		Long: `Applies the schema for STORE_BACKEND=sqlite or postgres. Supabase tables are
managed in the Supabase project and are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			factory, err := repository.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer func() { _ = factory.Close() }()

			m, ok := factory.(repository.SchemaMigrator)
			if !ok {
				return fmt.Errorf("migrate %s: %w", factory.Backend(), repository.ErrUnsupported)
			}
			if err := m.Migrate(ctx); err != nil {
				return err
			}
			rt.logger.Info("schema up to date", "backend", factory.Backend())
			return nil
		},
	}
}
