// Package store owns the PostgreSQL connection and schema for the trends
// service: resolved player identities and computed trend snapshots.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"
)

// Database wraps the PostgreSQL connection pool.
type Database struct {
	conn *sql.DB
	log  zerolog.Logger
}

// NewDatabase opens and pings a PostgreSQL connection.
func NewDatabase(dsn string, log zerolog.Logger) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Database{
		conn: db,
		log:  log.With().Str("component", "store").Logger(),
	}, nil
}

// Close closes the connection pool.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration is one schema step, applied at most once and tracked by version.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_players",
		sql: `
			CREATE TABLE IF NOT EXISTS players (
				player_id BIGINT PRIMARY KEY,
				full_name TEXT NOT NULL,
				normalized_name TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_create_trend_snapshots",
		sql: `
			CREATE TABLE IF NOT EXISTS trend_snapshots (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL,
				stat TEXT NOT NULL,
				opponent TEXT,
				line DOUBLE PRECISION,
				report JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "003_index_trend_snapshots",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_trend_snapshots_player
			ON trend_snapshots (player_id, stat, created_at DESC)
		`,
	},
}

// RunMigrations applies all pending schema migrations in order.
func (db *Database) RunMigrations() error {
	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("running migration %s: %w", m.version, err)
		}
	}

	db.log.Info().Int("count", len(migrations)).Msg("migrations up to date")
	return nil
}

func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	db.log.Info().Str("version", m.version).Msg("applied migration")
	return nil
}

// HealthCheck pings the database with a short deadline.
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
