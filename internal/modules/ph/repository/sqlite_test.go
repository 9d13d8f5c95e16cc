package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

func setupTestFactory(t *testing.T) *SQLiteFactory {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	f := NewSQLiteFactory(db, nil)
	if err := f.Migrate(context.Background()); err != nil {
		_ = db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if err := f.Close(); err != nil {
			t.Errorf("close factory: %v", err)
		}
	})
	return f
}

func at(hh, mm int) time.Time {
	return time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC)
}

func fetchRange(t *testing.T, f Factory, from, to time.Time) []types.Observation {
	t.Helper()
	ctx := context.Background()
	repo, err := f.Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close session: %v", err)
		}
	}()
	got, err := repo.GetObservations(ctx, from, to)
	if err != nil {
		t.Fatalf("GetObservations: %v", err)
	}
	return got
}

var _ Factory = (*SQLiteFactory)(nil)

func TestSQLiteFactory_backendAndPing(t *testing.T) {
	f := setupTestFactory(t)
	if f.Backend() != "sqlite" {
		t.Errorf("Backend() = %q, want sqlite", f.Backend())
	}
	if err := f.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSQLiteFactory_Close(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	f := NewSQLiteFactory(db, nil)
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close() error = nil, want closed database error")
	}

	if err := (&SQLiteFactory{}).Close(); err != nil {
		t.Errorf("Close() without a database = %v, want nil", err)
	}
}

func TestSQLiteRepository_dayScenario(t *testing.T) {
	f := setupTestFactory(t)
	// inserted out of order on purpose
	seed := []types.Observation{
		{Timestamp: at(8, 2), PH: 7.95},
		{Timestamp: at(8, 0), PH: 8.0},
		{Timestamp: at(8, 1), PH: 8.05},
	}
	n, err := f.InsertObservations(context.Background(), seed)
	if err != nil {
		t.Fatalf("InsertObservations: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted %d rows, want 3", n)
	}

	got := fetchRange(t, f, at(0, 0), time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	wantPH := []float64{8.0, 8.05, 7.95}
	for i, o := range got {
		if !o.Timestamp.Equal(at(8, i)) {
			t.Errorf("row %d timestamp = %v, want %v", i, o.Timestamp, at(8, i))
		}
		if o.PH != wantPH[i] {
			t.Errorf("row %d ph = %v, want %v", i, o.PH, wantPH[i])
		}
	}
}

func TestSQLiteRepository_bounds(t *testing.T) {
	f := setupTestFactory(t)
	seed := []types.Observation{
		{Timestamp: at(7, 59), PH: 8.1},
		{Timestamp: at(8, 0), PH: 8.0},
		{Timestamp: at(8, 1), PH: 8.05},
	}
	if _, err := f.InsertObservations(context.Background(), seed); err != nil {
		t.Fatalf("InsertObservations: %v", err)
	}

	t.Run("start equals end returns exact match", func(t *testing.T) {
		got := fetchRange(t, f, at(8, 0), at(8, 0))
		if len(got) != 1 || !got[0].Timestamp.Equal(at(8, 0)) {
			t.Errorf("got %+v, want the 08:00 row only", got)
		}
	})

	t.Run("start equals end with no match is empty", func(t *testing.T) {
		if got := fetchRange(t, f, at(9, 0), at(9, 0)); len(got) != 0 {
			t.Errorf("got %d rows, want 0", len(got))
		}
	})

	t.Run("inverted interval is empty", func(t *testing.T) {
		if got := fetchRange(t, f, at(8, 1), at(7, 59)); len(got) != 0 {
			t.Errorf("got %d rows, want 0", len(got))
		}
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		if got := fetchRange(t, f, at(7, 59), at(8, 1)); len(got) != 3 {
			t.Errorf("got %d rows, want 3", len(got))
		}
	})
}

func TestSQLiteRepository_foreignRowFormats(t *testing.T) {
	f := setupTestFactory(t)
	if _, err := f.db.Exec(`INSERT INTO ph_logs (datetime, ph) VALUES
		('2024-01-01 07:59:59', 7.9),
		('2024-01-01T08:00:00', 8.0),
		('2024-01-01 08:00:00.500', 8.01),
		('2024-01-01T08:01:00Z', 8.02),
		('2024-01-01T09:30:00+02:00', 8.03),
		('2024-01-02T00:30:00+02:00', 8.04),
		('2024-01-01 23:59:59.000', 8.05),
		('2024-01-02 00:00:00', 8.06)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	end := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	got := fetchRange(t, f, at(8, 0), end)

	want := []time.Time{
		at(8, 0),
		at(8, 0).Add(500 * time.Millisecond),
		at(8, 1),
		at(22, 30), // +02:00 offset on the next calendar day
		end,        // fractional text exactly on the inclusive bound
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if !got[i].Timestamp.Equal(w) {
			t.Errorf("row %d timestamp = %v, want %v", i, got[i].Timestamp, w)
		}
		if got[i].Timestamp.Location() != time.UTC {
			t.Errorf("row %d location = %v, want UTC", i, got[i].Timestamp.Location())
		}
	}
}

func TestSQLiteRepository_unreadableTimestampOutsideRange(t *testing.T) {
	f := setupTestFactory(t)
	if _, err := f.db.Exec(`INSERT INTO ph_logs (datetime, ph) VALUES
		('2024-01-01 08:xx', 8.0),
		('2024-01-01 09:00:00', 8.1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got := fetchRange(t, f, at(0, 0), at(23, 0))
	if len(got) != 1 || !got[0].Timestamp.Equal(at(9, 0)) {
		t.Fatalf("got %+v, want only the 09:00 row", got)
	}
}
