package service

import (
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// Downsample averages pH per width-sized bucket aligned to the Unix epoch.
// obs must be ascending. Empty buckets produce nothing. Each point sits at its
// bucket start, except that a bucket starting before floor is pinned to floor
// so no point precedes the queried interval.
func Downsample(obs []types.Observation, width time.Duration, floor time.Time) []types.Observation {
	if len(obs) == 0 || width <= 0 {
		return obs
	}

	out := make([]types.Observation, 0, len(obs)/2+1)
	var (
		cur   time.Time
		sum   float64
		count int
	)
	flush := func() {
		if count == 0 {
			return
		}
		ts := cur
		if ts.Before(floor) {
			ts = floor
		}
		out = append(out, types.Observation{Timestamp: ts.UTC(), PH: sum / float64(count)})
	}

	for _, o := range obs {
		b := BucketStart(o.Timestamp, width)
		if count > 0 && !b.Equal(cur) {
			flush()
			sum, count = 0, 0
		}
		cur = b
		sum += o.PH
		count++
	}
	flush()
	return out
}

// BucketStart floors t to a multiple of width since the Unix epoch.
func BucketStart(t time.Time, width time.Duration) time.Time {
	ns := t.UnixNano()
	w := int64(width)
	rem := ns % w
	if rem < 0 {
		rem += w
	}
	return time.Unix(0, ns-rem).UTC()
}
