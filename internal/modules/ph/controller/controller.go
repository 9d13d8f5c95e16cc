package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// SeriesFetcher is the part of service.Fetcher the handlers depend on.
type SeriesFetcher interface {
	Fetch(ctx context.Context, iv types.Interval) (types.Result, error)
}

type Options struct {
	// Location is the timezone form dates and times are interpreted in.
	Location    *time.Location
	Thresholds  types.Thresholds
	BucketWidth time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type PHController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type phControllerImpl struct {
	fetcher     SeriesFetcher
	loc         *time.Location
	thresholds  types.Thresholds
	bucketWidth time.Duration
	now         func() time.Time
}

func NewPHController(fetcher SeriesFetcher, opts Options) PHController {
	c := &phControllerImpl{
		fetcher:     fetcher,
		loc:         opts.Location,
		thresholds:  opts.Thresholds,
		bucketWidth: opts.BucketWidth,
		now:         opts.Now,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.thresholds == (types.Thresholds{}) {
		c.thresholds = types.DefaultThresholds
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *phControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /chart.png", c.handleChart)
	mux.HandleFunc("GET /export.xlsx", c.handleExport)
	mux.HandleFunc("GET /api/v1/readings", c.handleReadings)
}
