package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/export"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/repository"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/service"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/timerange"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		in  timerange.Input
		out string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the readings of a range to an Excel workbook",
		Example: `  phmonitor export --start-date 2024-01-01 --end-date 2024-01-03
  phmonitor export --start-date 2024-01-01 --start-time 08:00 --end-time 20:00 --out day.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rng, err := in.Resolve(time.Now(), rt.cfg.DisplayLocation)
			if err != nil {
				return err
			}

			factory, err := repository.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer func() { _ = factory.Close() }()

			fetcher := service.NewFetcher(factory, service.Options{
				DownsampleThreshold: rt.cfg.DownsampleThreshold,
				BucketWidth:         rt.cfg.BucketWidth,
			}, rt.logger)
			res, err := fetcher.Fetch(ctx, rng.Interval)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = export.Filename(rng.Selection)
			}
			if err := writeWorkbook(path, res.Observations); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(res.Observations), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.StartDate, "start-date", "", "first date, YYYY-MM-DD (without dates: the last two days)")
	cmd.Flags().StringVar(&in.EndDate, "end-date", "", "last date, YYYY-MM-DD (default: the start date)")
	cmd.Flags().StringVar(&in.StartTime, "start-time", "", "time of day on the first date, HH:MM[:SS] (default 00:00:00)")
	cmd.Flags().StringVar(&in.EndTime, "end-time", "", "time of day on the last date, HH:MM[:SS] (default 23:59:59)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default pH_report_<start>_<end>.xlsx)")
	return cmd
}

func writeWorkbook(path string, obs []types.Observation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return export.WriteXLSX(f, obs)
}
