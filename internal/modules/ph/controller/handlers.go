package controller

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/chart"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/export"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/service"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/timerange"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/views"
	"github.com/AndreyATC/ph-monitor/internal/utils"
)

const noDataMessage = "no data found for the selected range; try widening the date or time range"

type readingsResponse struct {
	Start        time.Time           `json:"start"`
	End          time.Time           `json:"end"`
	RawCount     int                 `json:"rawCount"`
	Downsampled  bool                `json:"downsampled"`
	Summary      types.Summary       `json:"summary"`
	Observations []types.Observation `json:"observations"`
}

// load resolves the range query and fetches it. On failure the response has
// already been written and ok is false.
func (c *phControllerImpl) load(w http.ResponseWriter, r *http.Request, op string) (rng timerange.Range, res types.Result, ok bool) {
	rng, err := parseRangeQuery(r).Resolve(c.now(), c.loc)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return timerange.Range{}, types.Result{}, false
	}
	res, err = c.fetcher.Fetch(r.Context(), rng.Interval)
	if err != nil {
		slog.Error(op+": fetch failed",
			"start", rng.Interval.Start,
			"end", rng.Interval.End,
			"error", err,
		)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return timerange.Range{}, types.Result{}, false
	}
	return rng, res, true
}

func (c *phControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, res, ok := c.load(w, r, "dashboard")
	if !ok {
		return
	}

	data := &views.DashboardData{
		StartDate:   rng.Selection.StartDate.String(),
		EndDate:     rng.Selection.EndDate.String(),
		StartTime:   rng.StartTime.String(),
		EndTime:     rng.EndTime.String(),
		Timezone:    c.loc.String(),
		Summary:     service.Summarize(res.Observations),
		RawCount:    res.RawCount,
		Downsampled: res.Downsampled,
		BucketWidth: c.bucketWidth.String(),
		Thresholds:  c.thresholds,
		Query:       template.URL(encodeRange(rng)),
	}
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (c *phControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	width, height, err := parseChartSize(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, res, ok := c.load(w, r, "chart")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, res.Observations, c.thresholds, width, height); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			utils.WriteError(w, http.StatusNotFound, noDataMessage)
			return
		}
		slog.Error("chart render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteBody(w, "image/png", buf.Bytes())
}

func (c *phControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	rng, res, ok := c.load(w, r, "export")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, res.Observations); err != nil {
		slog.Error("export: write workbook failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	utils.WriteAttachment(w, export.ContentType, export.Filename(rng.Selection), buf.Bytes())
}

func (c *phControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	rng, res, ok := c.load(w, r, "readings")
	if !ok {
		return
	}

	obs := res.Observations
	if obs == nil {
		obs = []types.Observation{}
	}
	utils.WriteJSON(w, http.StatusOK, readingsResponse{
		Start:        rng.Interval.Start,
		End:          rng.Interval.End,
		RawCount:     res.RawCount,
		Downsampled:  res.Downsampled,
		Summary:      service.Summarize(res.Observations),
		Observations: obs,
	})
}
