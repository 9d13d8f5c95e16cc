package service

import (
	"math"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// Summarize computes the dashboard metric cards over the plotted series.
func Summarize(obs []types.Observation) types.Summary {
	if len(obs) == 0 {
		return types.Summary{}
	}
	s := types.Summary{Max: math.Inf(-1), Min: math.Inf(1), Count: len(obs)}
	var sum float64
	for _, o := range obs {
		sum += o.PH
		s.Max = math.Max(s.Max, o.PH)
		s.Min = math.Min(s.Min, o.PH)
	}
	s.Mean = sum / float64(len(obs))
	return s
}
