package database

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type DB struct {
	*sqlx.DB
	driver string
}

// NewDB creates a new database connection and makes sure the schema exists
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	driver := cfg.ResolvedDriver()

	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "steamwrapped.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("database dsn is required for driver %s", driver)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)
	}

	dbWrapper := &DB{DB: db, driver: driver}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().With("driver", driver).Info("Database connection established and tables initialized")
	return dbWrapper, nil
}

func (db *DB) Driver() string {
	return db.driver
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	idColumn, timeType := "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	if db.driver == DriverPostgres {
		idColumn, timeType = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}

	usersTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS users (
		id %s,
		steam_id TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at %[2]s NOT NULL,
		last_updated %[2]s NOT NULL
	);`, idColumn, timeType)

	snapshotsTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS shared_snapshots (
		id TEXT PRIMARY KEY,
		token TEXT UNIQUE NOT NULL,
		steam_id TEXT UNIQUE NOT NULL,
		payload TEXT NOT NULL,
		created_at %[1]s NOT NULL,
		updated_at %[1]s NOT NULL
	);`, timeType)

	for _, query := range []string{usersTable, snapshotsTable} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
