package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/llm-dispatch/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// OpenDB creates a new database connection pool for the audit log
func OpenDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("audit database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{DB: db, logger: logger}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	db.logger.Info("closing audit database connection")
	return db.DB.Close()
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// PostgresRecorder implements Recorder on PostgreSQL
type PostgresRecorder struct {
	db     *DB
	logger *zap.Logger
}

// NewPostgresRecorder creates a Postgres-backed recorder
func NewPostgresRecorder(db *DB, logger *zap.Logger) *PostgresRecorder {
	return &PostgresRecorder{db: db, logger: logger}
}

// Record inserts a completion entry
func (r *PostgresRecorder) Record(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO completion_logs (
			id, provider, model, status, finish_reason, error_message, latency_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Provider,
		entry.Model,
		entry.Status,
		entry.FinishReason,
		entry.ErrorMessage,
		entry.LatencyMs,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert completion log: %w", err)
	}

	r.logger.Debug("completion log inserted",
		zap.String("id", entry.ID.String()),
		zap.String("provider", entry.Provider))
	return nil
}
