// Package sqlite persists asset inventory records and alert definitions.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Options holds configuration for creating a new DB instance.
type Options struct {
	Path   string
	Logger *slog.Logger
}

// DB wraps the SQLite connection and the store's queries.
type DB struct {
	db  *sql.DB
	log *slog.Logger
}

// New opens the database, applies PRAGMA tuning, runs pending migrations,
// and returns a ready store.
func New(opts Options) (*DB, error) {
	log := opts.Logger.With("component", "sqlite")

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := setPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting pragmas: %w", err)
	}

	if err := runMigrations(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	log.Debug("sqlite initialized", "path", opts.Path)
	return &DB{db: db, log: log}, nil
}

// setPragmas applies the recommended PRAGMA settings for a WAL-mode
// single-writer workload.
func setPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("error setting pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// runMigrations applies the embedded migrations with golang-migrate.
func runMigrations(db *sql.DB, log *slog.Logger) error {
	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("error creating migrations filesystem: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("error creating migration source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("error creating sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	log.Debug("applying database migrations")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("migrations up to date")
			return nil
		}
		return fmt.Errorf("error applying migrations: %w", err)
	}
	log.Debug("database migrations completed")
	return nil
}

// Close shuts down the database connection.
func (db *DB) Close() error {
	db.log.Debug("closing database connection")
	return db.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
