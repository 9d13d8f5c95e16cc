// Package chart renders the pH time series as a PNG with the reference
// thresholds and the optimal band drawn in.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no observations to chart")

const (
	DefaultWidth  = 1024
	DefaultHeight = 420

	minWidth  = 200
	minHeight = 120
	maxWidth  = 4096
	maxHeight = 2160
)

var (
	lineColor      = drawing.ColorFromHex("007acc")
	thresholdColor = drawing.ColorFromHex("d62728")
	bandColor      = drawing.ColorFromHex("2ca02c").WithAlpha(48)
)

// Size clamps a requested size into the supported range, using the defaults
// for zero values.
func Size(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return min(max(width, minWidth), maxWidth), min(max(height, minHeight), maxHeight)
}

// RenderPNG draws obs with th applied. obs must be ascending.
func RenderPNG(w io.Writer, obs []types.Observation, th types.Thresholds, width, height int) error {
	if len(obs) == 0 {
		return ErrNoData
	}
	width, height = Size(width, height)

	xs := make([]time.Time, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = o.Timestamp
		ys[i] = o.PH
	}
	// go-chart rejects a zero-width x range
	if !xs[len(xs)-1].After(xs[0]) {
		xs = append(xs, xs[0].Add(time.Minute))
		ys = append(ys, ys[len(ys)-1])
	}
	first, last := xs[0], xs[len(xs)-1]

	series := []gochart.Series{
		// the band is a filled area up to OptimalHigh with the part below
		// OptimalLow painted over in the background color
		flatSeries("optimal", first, last, th.OptimalHigh, gochart.Style{
			StrokeColor: bandColor,
			StrokeWidth: 1,
			FillColor:   bandColor,
		}),
		flatSeries("", first, last, th.OptimalLow, gochart.Style{
			StrokeColor: bandColor,
			StrokeWidth: 1,
			FillColor:   drawing.ColorWhite,
		}),
		flatSeries("high", first, last, th.High, thresholdStyle()),
		flatSeries("low", first, last, th.Low, thresholdStyle()),
		gochart.TimeSeries{
			Name:    "pH",
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: lineColor,
				StrokeWidth: 2,
			},
		},
		gochart.AnnotationSeries{
			Annotations: []gochart.Value2{
				{XValue: gochart.TimeToFloat64(last), YValue: th.High, Label: fmt.Sprintf("High %.1f", th.High)},
				{XValue: gochart.TimeToFloat64(last), YValue: th.Low, Label: fmt.Sprintf("Low %.1f", th.Low)},
				{XValue: gochart.TimeToFloat64(first), YValue: th.OptimalHigh, Label: "Optimal"},
			},
		},
	}

	ch := gochart.Chart{
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 48, Bottom: 16}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat(xLabelLayout(first, last)),
		},
		YAxis: gochart.YAxis{
			Name:  "pH",
			Range: &gochart.ContinuousRange{Min: th.AxisMin, Max: th.AxisMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func flatSeries(name string, from, to time.Time, y float64, style gochart.Style) gochart.TimeSeries {
	return gochart.TimeSeries{
		Name:    name,
		XValues: []time.Time{from, to},
		YValues: []float64{y, y},
		Style:   style,
	}
}

func thresholdStyle() gochart.Style {
	return gochart.Style{
		StrokeColor:     thresholdColor,
		StrokeWidth:     1.5,
		StrokeDashArray: []float64{6, 4},
	}
}

// xLabelLayout shows dates only when the series spans more than a day.
func xLabelLayout(first, last time.Time) string {
	if last.Sub(first) > 24*time.Hour {
		return "01-02 15:04"
	}
	return "15:04"
}
