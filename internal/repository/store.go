package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	Driver           string // "postgres" or "sqlite"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Store owns the database handle shared by the repositories. The pool is
// nil when running on sqlite.
type Store struct {
	DB   *sql.DB
	pool *pgxpool.Pool
}

// Open creates a pgx pool and wraps it as database/sql.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "driver", cfg.Driver, "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "catalog-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return &Store{DB: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

// OpenSQLite opens a file-backed or in-memory sqlite database.
func OpenSQLite(dsn string, logger *slog.Logger) (*Store, error) {
	logger.Info("opening sqlite database", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	// sqlite serializes writes; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &Store{DB: db}, nil
}

// Close closes the database connections gracefully.
func (s *Store) Close(logger *slog.Logger) {
	logger.Info("closing database connections")
	if err := s.DB.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.DB.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// schema is written to the portable subset shared by postgres and sqlite:
// TEXT keys, INTEGER booleans, millisecond INTEGER durations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extraction_passes (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id),
		pass_number INTEGER NOT NULL,
		method TEXT NOT NULL,
		dpi INTEGER NOT NULL,
		min_confidence DOUBLE PRECISION NOT NULL,
		force_ocr INTEGER NOT NULL,
		status TEXT NOT NULL,
		items_extracted INTEGER NOT NULL DEFAULT 0,
		avg_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		processing_ms INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_passes_document ON extraction_passes(document_id)`,
	`CREATE TABLE IF NOT EXISTS extracted_items (
		id TEXT PRIMARY KEY,
		pass_id TEXT NOT NULL REFERENCES extraction_passes(id),
		brand_code TEXT NOT NULL DEFAULT '',
		part_number TEXT NOT NULL DEFAULT '',
		price_type TEXT NOT NULL DEFAULT '',
		price_value DOUBLE PRECISION,
		currency TEXT NOT NULL DEFAULT '',
		page INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		raw_text TEXT NOT NULL DEFAULT '',
		bbox_x INTEGER,
		bbox_y INTEGER,
		bbox_w INTEGER,
		bbox_h INTEGER,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_pass ON extracted_items(pass_id)`,
	`CREATE TABLE IF NOT EXISTS consolidated_items (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id),
		brand_code TEXT NOT NULL DEFAULT '',
		part_number TEXT NOT NULL DEFAULT '',
		price_type TEXT NOT NULL DEFAULT '',
		price_value DOUBLE PRECISION,
		currency TEXT NOT NULL DEFAULT '',
		page INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		avg_confidence DOUBLE PRECISION NOT NULL,
		source_count INTEGER NOT NULL,
		raw_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consolidated_document ON consolidated_items(document_id)`,
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context, logger *slog.Logger) error {
	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			logger.Error("migration statement failed", "error", err)
			return err
		}
	}
	logger.Info("database schema up to date")
	return nil
}
