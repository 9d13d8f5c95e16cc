package types

import "time"

// Observation is one pH reading. Timestamp is always UTC.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	PH        float64   `json:"ph"`
}

// Interval is closed on both ends. Start after End is allowed and matches nothing.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.End)
}

// Result is the ordered, possibly reduced series produced for one Interval.
type Result struct {
	Interval     Interval
	Observations []Observation
	// RawCount is the number of rows the store returned before reduction.
	RawCount    int
	Downsampled bool
}

func (r Result) Empty() bool { return len(r.Observations) == 0 }

type Summary struct {
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Count int     `json:"count"`
}

// Thresholds are the fixed reference levels drawn on the chart.
type Thresholds struct {
	High        float64
	Low         float64
	OptimalLow  float64
	OptimalHigh float64
	AxisMin     float64
	AxisMax     float64
}

var DefaultThresholds = Thresholds{
	High:        8.3,
	Low:         7.8,
	OptimalLow:  7.9,
	OptimalHigh: 8.2,
	AxisMin:     7.6,
	AxisMax:     8.6,
}
