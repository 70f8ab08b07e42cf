package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent SQL driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	kv  KV
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Pragmas such as foreign_keys are per connection, so pin the pool to
	// a single connection that keeps them.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	slog.Debug("store opened", "dsn", dsn)
	return &Store{db: db, drv: drv, kv: &sqlKV{drv: drv}}, nil
}

// Driver returns the underlying ent SQL driver.
func (s *Store) Driver() *entsql.Driver {
	return s.drv
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// KV returns the key-value table.
func (s *Store) KV() KV {
	return s.kv
}

// ProgressRepo returns the progress repository backed by this store.
func (s *Store) ProgressRepo() *ProgressRepo {
	return NewProgressRepo(s.kv)
}

// SettingsRepo returns the settings repository backed by this store.
func (s *Store) SettingsRepo() *SettingsRepo {
	return NewSettingsRepo(s.kv)
}

// QuestionRepo returns the AI question cache backed by this store.
func (s *Store) QuestionRepo() *QuestionRepo {
	return NewQuestionRepo(s.kv)
}

// EventRepo returns the LLM event log backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{drv: s.drv}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. INVESTIQ_DB environment variable
// 2. $XDG_DATA_HOME/investiq/investiq.db
// 3. ~/.local/share/investiq/investiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("INVESTIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "investiq", "investiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
