// Package admin holds the credential and usage-log management endpoints.
package admin

import (
	"time"

	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/types"
)

// CredentialInvalidator drops a cached API key after a credential changes.
type CredentialInvalidator interface {
	Invalidate(provider types.Provider)
}

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Storage     storage.Storage
	StartTime   time.Time
	Invalidator CredentialInvalidator
}

// New creates a new instance of admin handlers.
func New(store storage.Storage, startTime time.Time, invalidator CredentialInvalidator) *Handlers {
	return &Handlers{
		Storage:     store,
		StartTime:   startTime,
		Invalidator: invalidator,
	}
}

func (h *Handlers) invalidateCredential(provider string) {
	if h.Invalidator != nil {
		h.Invalidator.Invalidate(types.Provider(provider))
	}
}
