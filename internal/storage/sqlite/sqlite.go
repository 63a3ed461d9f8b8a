// Package sqlite provides SQLite-based storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixway/pixway/internal/storage/encryption"
	_ "modernc.org/sqlite"
)

// Storage implements the storage.Storage interface using SQLite
type Storage struct {
	db        *sql.DB
	encryptor *encryption.AES
	mu        sync.RWMutex
	closed    bool
}

// New creates a new SQLite storage instance
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	enc, err := encryption.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	storage := &Storage{
		db:        db,
		encryptor: enc,
	}

	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return storage, nil
}

// createSchema creates the database schema
func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id          TEXT PRIMARY KEY,
		provider    TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		api_key     TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS generation_logs (
		id            TEXT PRIMARY KEY,
		request_id    TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		mode          TEXT NOT NULL,
		prompt_tokens INTEGER DEFAULT 0,
		status_code   INTEGER,
		failure_kind  TEXT,
		error_message TEXT,
		duration_ms   INTEGER,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_logs_created ON generation_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_logs_provider ON generation_logs(provider);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// generateID creates a new unique ID with a prefix
func generateID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}
