package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StoreBackend selects the observation store: sqlite, supabase or postgres.
	StoreBackend string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	SupabaseURL     string
	SupabaseKey     string
	SupabaseTable   string
	SupabaseTimeout time.Duration

	PostgresDSN string

	// PageSize is the row cap of one remote page.
	PageSize int
	// DownsampleThreshold is the row count above which results are bucketed.
	DownsampleThreshold int
	BucketWidth         time.Duration

	// DisplayLocation is the timezone wall-clock inputs are interpreted in.
	DisplayLocation *time.Location
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if backend == "" {
		backend = BackendSQLite
	}

	cfg := Config{
		AppEnv:       appEnv,
		LogLevel:     level,
		HTTPAddr:     httpAddr,
		StoreBackend: backend,
	}

	switch backend {
	case BackendSQLite:
		if err := loadSQLite(&cfg); err != nil {
			return Config{}, err
		}
	case BackendSupabase:
		if err := loadSupabase(&cfg); err != nil {
			return Config{}, err
		}
	case BackendPostgres:
		cfg.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required for STORE_BACKEND=%s", backend)
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q (allowed: sqlite, supabase, postgres)", backend)
	}

	cfg.PageSize, err = positiveIntEnv("PAGE_SIZE", 1000)
	if err != nil {
		return Config{}, err
	}
	cfg.DownsampleThreshold, err = positiveIntEnv("DOWNSAMPLE_THRESHOLD", 2000)
	if err != nil {
		return Config{}, err
	}

	bucketWidthStr := strings.TrimSpace(os.Getenv("BUCKET_WIDTH"))
	if bucketWidthStr == "" {
		bucketWidthStr = "5m"
	}
	cfg.BucketWidth, err = time.ParseDuration(bucketWidthStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BUCKET_WIDTH %q: %w", bucketWidthStr, err)
	}
	if cfg.BucketWidth <= 0 {
		return Config{}, fmt.Errorf("BUCKET_WIDTH must be positive, got %v", cfg.BucketWidth)
	}

	tz := strings.TrimSpace(os.Getenv("DISPLAY_TZ"))
	if tz == "" {
		tz = "UTC"
	}
	cfg.DisplayLocation, err = time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DISPLAY_TZ %q: %w", tz, err)
	}

	return cfg, nil
}

func loadSQLite(cfg *Config) error {
	driver := strings.TrimSpace(os.Getenv("SQLITE_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "data/ph.db"
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("SQLITE_PATH %q: %w", path, err)
		}
		path = abs
	}

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	cfg.SQLiteDriver = driver
	cfg.SQLiteDSN = strings.TrimSpace(os.Getenv("DB_DSN"))
	cfg.SQLitePath = path
	cfg.SQLiteMaxOpenConns = maxOpenConns
	cfg.SQLiteMaxIdleConns = maxIdleConns
	cfg.SQLiteConnMaxLifetime = connMaxLifetime
	return nil
}

func loadSupabase(cfg *Config) error {
	rawURL := strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/")
	if rawURL == "" {
		return fmt.Errorf("SUPABASE_URL is required for STORE_BACKEND=%s", BackendSupabase)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid SUPABASE_URL %q", rawURL)
	}

	key := strings.TrimSpace(os.Getenv("SUPABASE_KEY"))
	if key == "" {
		return fmt.Errorf("SUPABASE_KEY is required for STORE_BACKEND=%s", BackendSupabase)
	}

	table := strings.TrimSpace(os.Getenv("SUPABASE_TABLE"))
	if table == "" {
		table = "ph_logs"
	}

	timeoutStr := strings.TrimSpace(os.Getenv("SUPABASE_TIMEOUT"))
	if timeoutStr == "" {
		timeoutStr = "30s"
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid SUPABASE_TIMEOUT %q: %w", timeoutStr, err)
	}

	cfg.SupabaseURL = rawURL
	cfg.SupabaseKey = key
	cfg.SupabaseTable = table
	cfg.SupabaseTimeout = timeout
	return nil
}

func positiveIntEnv(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
