package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/db"
	"github.com/AndreyATC/ph-monitor/internal/migrate"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
)

//go:embed sql/sqlite-get-observations.sql
var sqliteGetObservationsSQL string

//go:embed sql/sqlite-insert-observation.sql
var sqliteInsertObservationSQL string

// SQLiteFactory serves sessions from a local database. Each session holds one
// dedicated connection from the pool.
type SQLiteFactory struct {
	db     *sql.DB
	logger *slog.Logger
}

type sqliteRepository struct {
	conn   *sql.Conn
	logger *slog.Logger
}

var (
	_ Factory        = (*SQLiteFactory)(nil)
	_ Seeder         = (*SQLiteFactory)(nil)
	_ SchemaMigrator = (*SQLiteFactory)(nil)
)

// NewSQLiteFactory takes ownership of db; Close closes it.
func NewSQLiteFactory(db *sql.DB, logger *slog.Logger) *SQLiteFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteFactory{db: db, logger: logger}
}

func (f *SQLiteFactory) Backend() string { return config.BackendSQLite }

func (f *SQLiteFactory) Open(ctx context.Context) (ObservationRepository, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite session: %w", err)
	}
	return &sqliteRepository{conn: conn, logger: f.logger}, nil
}

func (f *SQLiteFactory) Ping(ctx context.Context) error {
	var ok int
	if err := f.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

func (f *SQLiteFactory) Migrate(ctx context.Context) error {
	if _, err := migrate.Run(ctx, f.db, f.logger); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

func (f *SQLiteFactory) Close() error {
	return db.Close(f.db)
}

// InsertObservations writes obs in one transaction and returns the row count.
func (f *SQLiteFactory) InsertObservations(ctx context.Context, obs []types.Observation) (int64, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, sqliteInsertObservationSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			f.logger.Error("close insert statement", "error", err)
		}
	}()

	var n int64
	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, FormatSQLite(o.Timestamp), o.PH); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert observation at %s: %w", FormatSQLite(o.Timestamp), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return n, nil
}

// GetObservations issues a single range query; the local store has no page cap.
// Bounds are compared as instants, so any text SQLite reads as a datetime is
// matched by time. Text it cannot read is outside every range.
func (r *sqliteRepository) GetObservations(ctx context.Context, from, to time.Time) ([]types.Observation, error) {
	rows, err := r.conn.QueryContext(ctx, sqliteGetObservationsSQL, formatSQLiteBound(from), formatSQLiteBound(to))
	if err != nil {
		return nil, fmt.Errorf("query ph_logs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("close ph_logs rows", "error", err)
		}
	}()

	var out []types.Observation
	for rows.Next() {
		var (
			ts string
			ph sql.NullFloat64
		)
		if err := rows.Scan(&ts, &ph); err != nil {
			return nil, fmt.Errorf("scan ph_logs: %w", err)
		}
		if !ph.Valid {
			continue
		}
		t, err := ParseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Observation{Timestamp: t, PH: ph.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ph_logs: %w", err)
	}
	return out, nil
}

func (r *sqliteRepository) Close() error {
	return r.conn.Close()
}
