package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"elite-trader/internal/logger"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// DefaultPath prefers the working directory so the DB is stable across
// go run / go build, falling back to the executable's directory.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "trader.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "trader.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Missing table on a fresh database leaves version at 0.
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS price_adjustments (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp    TEXT NOT NULL,
				station_id   INTEGER NOT NULL,
				commodity_id INTEGER NOT NULL,
				buy_price    INTEGER,
				sell_price   INTEGER,
				supply       INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_price_adj_ts ON price_adjustments(timestamp);

			CREATE TABLE IF NOT EXISTS time_adjustments (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp         TEXT NOT NULL,
				buy_station_id    INTEGER NOT NULL,
				sell_station_id   INTEGER NOT NULL,
				estimated_seconds REAL NOT NULL,
				jump_seconds      REAL NOT NULL,
				actual_seconds    REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_time_adj_ts ON time_adjustments(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS route_history (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id          TEXT NOT NULL UNIQUE,
				timestamp       TEXT NOT NULL,
				station_id      INTEGER NOT NULL,
				station_name    TEXT NOT NULL,
				count           INTEGER NOT NULL,
				best_profit     REAL NOT NULL,
				best_per_minute REAL NOT NULL,
				hops            INTEGER NOT NULL,
				duration_ms     INTEGER NOT NULL,
				params_json     TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_route_history_ts ON route_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2")
	}
	return nil
}

// SqlDB exposes the underlying handle.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
