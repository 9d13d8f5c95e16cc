// Package service turns a resolved interval into the series the dashboard
// draws: fetch everything in range, put it in order, shrink it when large.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/metrics"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/repository"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

const (
	DefaultDownsampleThreshold = 2000
	DefaultBucketWidth         = 5 * time.Minute
)

type Options struct {
	// DownsampleThreshold is the row count above which results are bucketed.
	DownsampleThreshold int
	BucketWidth         time.Duration
}

// Fetcher is safe for concurrent use; every Fetch opens its own session.
type Fetcher struct {
	factory repository.Factory
	opts    Options
	logger  *slog.Logger
}

func NewFetcher(factory repository.Factory, opts Options, logger *slog.Logger) *Fetcher {
	if opts.DownsampleThreshold <= 0 {
		opts.DownsampleThreshold = DefaultDownsampleThreshold
	}
	if opts.BucketWidth <= 0 {
		opts.BucketWidth = DefaultBucketWidth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{factory: factory, opts: opts, logger: logger}
}

// Fetch returns every observation in iv, ascending, reduced to bucket means
// when there are more than DownsampleThreshold of them. An empty result is
// not an error. The store session is closed before Fetch returns.
func (f *Fetcher) Fetch(ctx context.Context, iv types.Interval) (res types.Result, err error) {
	backend := f.factory.Backend()
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.FetchDuration.WithLabelValues(backend, outcome).Observe(time.Since(start).Seconds())
	}()

	repo, err := f.factory.Open(ctx)
	if err != nil {
		return types.Result{}, fmt.Errorf("open %s session: %w", backend, err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			f.logger.Warn("close store session", "backend", backend, "error", closeErr)
		}
	}()

	raw, err := repo.GetObservations(ctx, iv.Start, iv.End)
	if err != nil {
		return types.Result{}, fmt.Errorf("fetch %s..%s from %s: %w",
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339), backend, err)
	}

	obs := inInterval(raw, iv)
	res = types.Result{Interval: iv, Observations: obs, RawCount: len(obs)}
	if len(obs) > f.opts.DownsampleThreshold {
		res.Observations = Downsample(obs, f.opts.BucketWidth, iv.Start)
		res.Downsampled = true
		metrics.FetchDownsampled.WithLabelValues(backend).Inc()
	}

	f.logger.Debug("range fetched",
		"backend", backend,
		"start", iv.Start,
		"end", iv.End,
		"rows", res.RawCount,
		"points", len(res.Observations),
		"downsampled", res.Downsampled,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// inInterval keeps rows inside iv with UTC timestamps and restores ascending
// order if the store did not deliver it.
func inInterval(raw []types.Observation, iv types.Interval) []types.Observation {
	out := make([]types.Observation, 0, len(raw))
	for _, o := range raw {
		o.Timestamp = o.Timestamp.UTC()
		if iv.Contains(o.Timestamp) {
			out = append(out, o)
		}
	}
	if !slices.IsSortedFunc(out, byTimestamp) {
		slices.SortStableFunc(out, byTimestamp)
	}
	return out
}

func byTimestamp(a, b types.Observation) int {
	return a.Timestamp.Compare(b.Timestamp)
}
