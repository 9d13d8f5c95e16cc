package repository

import (
	"context"
	"fmt"

	"github.com/AndreyATC/ph-monitor/internal/metrics"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// PageFunc fetches at most limit rows starting at offset. It reports how many
// rows the store sent separately from the observations it kept, since rows
// without a usable value are dropped but still count toward the page.
type PageFunc func(ctx context.Context, offset, limit int) (obs []types.Observation, rows int, err error)

// FetchAllPages requests pages at offsets 0, P, 2P, ... and accumulates them
// until a page comes back empty or shorter than P. The first failing page
// aborts the whole fetch; nothing is retried.
func FetchAllPages(ctx context.Context, backend string, pageSize int, fetch PageFunc) ([]types.Observation, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	var all []types.Observation
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, rows, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}
		metrics.StorePages.WithLabelValues(backend).Inc()
		metrics.StoreRows.WithLabelValues(backend).Add(float64(rows))

		all = append(all, page...)
		if rows < pageSize {
			return all, nil
		}
	}
}
