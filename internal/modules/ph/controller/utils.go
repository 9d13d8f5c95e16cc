package controller

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/timerange"
)

func parseRangeQuery(r *http.Request) timerange.Input {
	q := r.URL.Query()
	return timerange.Input{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		StartTime: q.Get("start_time"),
		EndTime:   q.Get("end_time"),
	}
}

// encodeRange pins a resolved range into a query string, so the chart and
// export links show the same window as the page that links to them even when
// the dates were defaulted from the current day.
func encodeRange(rng timerange.Range) string {
	return url.Values{
		"start_date": {rng.Selection.StartDate.String()},
		"end_date":   {rng.Selection.EndDate.String()},
		"start_time": {rng.StartTime.String()},
		"end_time":   {rng.EndTime.String()},
	}.Encode()
}

// parseChartSize reads the optional width and height parameters. Zero means
// default; out-of-range values are clamped by the renderer.
func parseChartSize(r *http.Request) (width, height int, err error) {
	q := r.URL.Query()
	if s := q.Get("width"); s != "" {
		width, err = strconv.Atoi(s)
		if err != nil || width <= 0 {
			return 0, 0, errors.New("invalid 'width' (expected positive integer)")
		}
	}
	if s := q.Get("height"); s != "" {
		height, err = strconv.Atoi(s)
		if err != nil || height <= 0 {
			return 0, 0, errors.New("invalid 'height' (expected positive integer)")
		}
	}
	return width, height, nil
}
