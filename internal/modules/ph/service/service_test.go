package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/repository"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// memFactory is an in-memory store. Rows are served as stored, without
// filtering, so the fetcher's own range and order handling is exercised.
type memFactory struct {
	rows    []types.Observation
	openErr error
	getErr  error

	mu     sync.Mutex
	opened int
	closed int
}

type memSession struct {
	f *memFactory
}

func (f *memFactory) Open(context.Context) (repository.ObservationRepository, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &memSession{f: f}, nil
}

func (f *memFactory) Ping(context.Context) error { return nil }
func (f *memFactory) Backend() string            { return "memory" }
func (f *memFactory) Close() error               { return nil }

func (s *memSession) GetObservations(_ context.Context, from, to time.Time) ([]types.Observation, error) {
	if s.f.getErr != nil {
		return nil, s.f.getErr
	}
	return append([]types.Observation(nil), s.f.rows...), nil
}

func (s *memSession) Close() error {
	s.f.mu.Lock()
	s.f.closed++
	s.f.mu.Unlock()
	return nil
}

func day(hh, mm, ss int) time.Time {
	return time.Date(2024, 1, 1, hh, mm, ss, 0, time.UTC)
}

func everyN(n int, start time.Time, step time.Duration) []types.Observation {
	out := make([]types.Observation, n)
	for i := range out {
		out[i] = types.Observation{Timestamp: start.Add(time.Duration(i) * step), PH: 7.9 + float64(i%5)/10}
	}
	return out
}

func newTestFetcher(f repository.Factory) *Fetcher {
	return NewFetcher(f, Options{DownsampleThreshold: 2000, BucketWidth: 5 * time.Minute}, nil)
}

func assertWellFormed(t *testing.T, res types.Result) {
	t.Helper()
	for i, o := range res.Observations {
		if !res.Interval.Contains(o.Timestamp) {
			t.Fatalf("point %d at %v outside %v..%v", i, o.Timestamp, res.Interval.Start, res.Interval.End)
		}
		if i > 0 && o.Timestamp.Before(res.Observations[i-1].Timestamp) {
			t.Fatalf("point %d at %v precedes %v", i, o.Timestamp, res.Observations[i-1].Timestamp)
		}
	}
}

func TestFetch_dayScenario(t *testing.T) {
	f := &memFactory{rows: []types.Observation{
		{Timestamp: day(8, 0, 0), PH: 8.0},
		{Timestamp: day(8, 1, 0), PH: 8.05},
		{Timestamp: day(8, 2, 0), PH: 7.95},
	}}
	iv := types.Interval{Start: day(0, 0, 0), End: day(23, 59, 0)}

	res, err := newTestFetcher(f).Fetch(context.Background(), iv)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Observations) != 3 || res.Downsampled {
		t.Fatalf("got %d points (downsampled=%v), want 3 raw", len(res.Observations), res.Downsampled)
	}
	assertWellFormed(t, res)
	if mean := Summarize(res.Observations).Mean; math.Abs(mean-8.0) > 1e-9 {
		t.Errorf("mean = %v, want 8.0", mean)
	}
}

func TestFetch_reductionTrigger(t *testing.T) {
	iv := types.Interval{Start: day(0, 0, 0), End: day(23, 59, 59)}

	t.Run("2001 rows are bucketed", func(t *testing.T) {
		f := &memFactory{rows: everyN(2001, day(0, 0, 0), 30*time.Second)}
		res, err := newTestFetcher(f).Fetch(context.Background(), iv)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !res.Downsampled || res.RawCount != 2001 {
			t.Fatalf("Downsampled, RawCount = %v, %d; want true, 2001", res.Downsampled, res.RawCount)
		}
		if len(res.Observations) >= 2001 {
			t.Fatalf("got %d points, want fewer than 2001", len(res.Observations))
		}
		for _, o := range res.Observations {
			if o.Timestamp.UnixNano()%int64(5*time.Minute) != 0 {
				t.Fatalf("point at %v not on a 5 minute boundary", o.Timestamp)
			}
		}
		assertWellFormed(t, res)
	})

	t.Run("1999 rows are returned unchanged", func(t *testing.T) {
		rows := everyN(1999, day(0, 0, 0), 30*time.Second)
		f := &memFactory{rows: rows}
		res, err := newTestFetcher(f).Fetch(context.Background(), iv)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if res.Downsampled {
			t.Fatal("Downsampled = true, want false")
		}
		if !reflect.DeepEqual(res.Observations, rows) {
			t.Error("observations differ from the stored rows")
		}
	})
}

func TestFetch_startEqualsEnd(t *testing.T) {
	f := &memFactory{rows: []types.Observation{
		{Timestamp: day(8, 0, 0), PH: 8.0},
		{Timestamp: day(8, 0, 1), PH: 8.1},
	}}
	fetcher := newTestFetcher(f)

	res, err := fetcher.Fetch(context.Background(), types.Interval{Start: day(8, 0, 0), End: day(8, 0, 0)})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Observations) != 1 || !res.Observations[0].Timestamp.Equal(day(8, 0, 0)) {
		t.Errorf("got %+v, want only the 08:00:00 row", res.Observations)
	}

	res, err = fetcher.Fetch(context.Background(), types.Interval{Start: day(9, 0, 0), End: day(9, 0, 0)})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !res.Empty() {
		t.Errorf("got %d points, want empty", len(res.Observations))
	}
}

func TestFetch_disorderedStoreAndStrayRows(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	f := &memFactory{rows: []types.Observation{
		{Timestamp: day(8, 2, 0), PH: 7.95},
		{Timestamp: day(7, 0, 0), PH: 9.9}, // before the interval
		{Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, cet), PH: 8.0},
		{Timestamp: day(8, 1, 0), PH: 8.05},
		{Timestamp: day(12, 0, 0), PH: 9.9}, // after the interval
	}}
	iv := types.Interval{Start: day(8, 0, 0), End: day(8, 30, 0)}

	res, err := newTestFetcher(f).Fetch(context.Background(), iv)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(res.Observations) != 3 {
		t.Fatalf("got %d points, want 3", len(res.Observations))
	}
	assertWellFormed(t, res)
	for _, o := range res.Observations {
		if o.Timestamp.Location() != time.UTC {
			t.Errorf("timestamp %v not in UTC", o.Timestamp)
		}
	}
}

func TestFetch_invertedIntervalIsEmpty(t *testing.T) {
	f := &memFactory{rows: everyN(10, day(8, 0, 0), time.Minute)}
	res, err := newTestFetcher(f).Fetch(context.Background(), types.Interval{Start: day(9, 0, 0), End: day(8, 0, 0)})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !res.Empty() {
		t.Errorf("got %d points, want empty", len(res.Observations))
	}
}

func TestFetch_idempotent(t *testing.T) {
	f := &memFactory{rows: everyN(2500, day(0, 0, 0), 20*time.Second)}
	iv := types.Interval{Start: day(0, 3, 0), End: day(13, 0, 0)}
	fetcher := newTestFetcher(f)

	first, err := fetcher.Fetch(context.Background(), iv)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	second, err := fetcher.Fetch(context.Background(), iv)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Fetch returned a different result")
	}
}

func TestFetch_sessionLifecycle(t *testing.T) {
	iv := types.Interval{Start: day(0, 0, 0), End: day(23, 0, 0)}

	t.Run("closed on success", func(t *testing.T) {
		f := &memFactory{}
		if _, err := newTestFetcher(f).Fetch(context.Background(), iv); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if f.opened != 1 || f.closed != 1 {
			t.Errorf("opened, closed = %d, %d; want 1, 1", f.opened, f.closed)
		}
	})

	t.Run("closed on query error", func(t *testing.T) {
		boom := errors.New("timeout")
		f := &memFactory{getErr: boom}
		_, err := newTestFetcher(f).Fetch(context.Background(), iv)
		if !errors.Is(err, boom) {
			t.Fatalf("Fetch() error = %v, want %v", err, boom)
		}
		if f.opened != 1 || f.closed != 1 {
			t.Errorf("opened, closed = %d, %d; want 1, 1", f.opened, f.closed)
		}
	})

	t.Run("open error propagates", func(t *testing.T) {
		boom := errors.New("pool exhausted")
		f := &memFactory{openErr: boom}
		if _, err := newTestFetcher(f).Fetch(context.Background(), iv); !errors.Is(err, boom) {
			t.Fatalf("Fetch() error = %v, want %v", err, boom)
		}
	})
}

func TestNewFetcher_defaults(t *testing.T) {
	f := NewFetcher(&memFactory{}, Options{}, nil)
	if f.opts.DownsampleThreshold != DefaultDownsampleThreshold || f.opts.BucketWidth != DefaultBucketWidth {
		t.Errorf("opts = %+v, want defaults", f.opts)
	}
}
