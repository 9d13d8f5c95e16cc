package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

//go:embed sql/postgres-schema.sql
var postgresSchemaSQL string

//go:embed sql/postgres-get-observations-page.sql
var postgresGetObservationsPageSQL string

// PostgresFactory reads ph_logs from a Postgres database holding event_time
// as epoch milliseconds. A session is one connection acquired from the pool.
type PostgresFactory struct {
	pool     *pgxpool.Pool
	pageSize int
}

type postgresRepository struct {
	conn     *pgxpool.Conn
	pageSize int
}

var (
	_ Factory        = (*PostgresFactory)(nil)
	_ Seeder         = (*PostgresFactory)(nil)
	_ SchemaMigrator = (*PostgresFactory)(nil)
)

func NewPostgresFactory(ctx context.Context, dsn string, pageSize int) (*PostgresFactory, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &PostgresFactory{pool: pool, pageSize: pageSize}, nil
}

func (f *PostgresFactory) Backend() string { return config.BackendPostgres }

func (f *PostgresFactory) Open(ctx context.Context) (ObservationRepository, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres session: %w", err)
	}
	return &postgresRepository{conn: conn, pageSize: f.pageSize}, nil
}

func (f *PostgresFactory) Ping(ctx context.Context) error {
	if err := f.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// Migrate creates ph_logs if it does not exist. The table is normally owned
// by the ingestion side; this is for development databases.
func (f *PostgresFactory) Migrate(ctx context.Context) error {
	if _, err := f.pool.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (f *PostgresFactory) Close() error {
	f.pool.Close()
	return nil
}

func (f *PostgresFactory) InsertObservations(ctx context.Context, obs []types.Observation) (int64, error) {
	rows := make([][]any, len(obs))
	for i, o := range obs {
		rows[i] = []any{ToEpochMillis(o.Timestamp), o.PH}
	}
	n, err := f.pool.CopyFrom(ctx,
		pgx.Identifier{"ph_logs"},
		[]string{"event_time", "ph"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into ph_logs: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) GetObservations(ctx context.Context, from, to time.Time) ([]types.Observation, error) {
	fromMs, toMs := ToEpochMillis(from), ToEpochMillis(to)

	return FetchAllPages(ctx, config.BackendPostgres, r.pageSize,
		func(ctx context.Context, offset, limit int) ([]types.Observation, int, error) {
			rows, err := r.conn.Query(ctx, postgresGetObservationsPageSQL, fromMs, toMs, limit, offset)
			if err != nil {
				return nil, 0, err
			}
			page, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Observation, error) {
				var (
					ms int64
					ph float64
				)
				if err := row.Scan(&ms, &ph); err != nil {
					return types.Observation{}, err
				}
				return types.Observation{Timestamp: FromEpochMillis(ms), PH: ph}, nil
			})
			if err != nil {
				return nil, 0, fmt.Errorf("scan ph_logs: %w", err)
			}
			return page, len(page), nil
		})
}

func (r *postgresRepository) Close() error {
	r.conn.Release()
	return nil
}
