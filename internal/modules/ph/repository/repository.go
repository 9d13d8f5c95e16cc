// Package repository implements the time-range observation store on three
// backends: a local SQLite file, a Supabase (PostgREST) table and a Postgres
// table reached directly. Remote backends page through results; SQLite
// answers in one query.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/db"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

// ErrUnsupported is returned for operations a backend does not offer.
var ErrUnsupported = errors.New("operation not supported by this store backend")

// ObservationRepository is one store session. It is not safe for concurrent
// use and must be closed by whoever opened it.
type ObservationRepository interface {
	// GetObservations returns every observation with from <= timestamp <= to,
	// ascending by timestamp.
	GetObservations(ctx context.Context, from, to time.Time) ([]types.Observation, error)
	Close() error
}

// Factory opens store sessions. Implementations are safe for concurrent use.
type Factory interface {
	Open(ctx context.Context) (ObservationRepository, error)
	Ping(ctx context.Context) error
	Backend() string
	Close() error
}

// Seeder is implemented by backends that accept writes from this process.
type Seeder interface {
	InsertObservations(ctx context.Context, obs []types.Observation) (int64, error)
}

// SchemaMigrator is implemented by backends whose schema this process owns.
type SchemaMigrator interface {
	Migrate(ctx context.Context) error
}

// New builds the factory selected by cfg.StoreBackend. The SQLite schema is
// migrated here since the file belongs to this process.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		conn, err := db.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		f := NewSQLiteFactory(conn, logger)
		if err := f.Migrate(ctx); err != nil {
			_ = f.Close()
			return nil, err
		}
		return f, nil
	case config.BackendSupabase:
		client := &http.Client{Timeout: cfg.SupabaseTimeout}
		return NewSupabaseFactory(client, SupabaseOptions{
			BaseURL:  cfg.SupabaseURL,
			APIKey:   cfg.SupabaseKey,
			Table:    cfg.SupabaseTable,
			PageSize: cfg.PageSize,
		}), nil
	case config.BackendPostgres:
		return NewPostgresFactory(ctx, cfg.PostgresDSN, cfg.PageSize)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
