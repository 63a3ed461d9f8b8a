// Package storage provides the storage interface and implementations.
package storage

import (
	"github.com/pixway/pixway/internal/storage/models"
	"github.com/pixway/pixway/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	Credential        = models.Credential
	CredentialPreview = models.CredentialPreview
	GenerationLog     = models.GenerationLog
	LogFilter         = models.LogFilter
)

// Re-export functions from models package
var MaskAPIKey = models.MaskAPIKey

// Re-export errors from sqlite package
var (
	ErrNotFound        = sqlite.ErrNotFound
	ErrInvalidInput    = sqlite.ErrInvalidInput
	ErrStorageClosed   = sqlite.ErrStorageClosed
	ErrEncryptionError = sqlite.ErrEncryptionError
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// Credential operations
	UpsertCredential(cred *models.Credential) error
	GetCredential(provider string) (*models.Credential, error)
	ListCredentials() ([]*models.CredentialPreview, error)
	DeleteCredential(provider string) error

	// Generation logging operations
	LogGeneration(log *models.GenerationLog) error
	GetGenerationLogs(filter models.LogFilter) ([]*models.GenerationLog, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
