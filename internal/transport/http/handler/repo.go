// Package handler composes the per-area handler groups into one repository
// consumed by the router.
package handler

import (
	"github.com/pixway/pixway/internal/transport/http/handler/admin"
	"github.com/pixway/pixway/internal/transport/http/handler/generate"
	"github.com/pixway/pixway/internal/transport/http/handler/infra"
)

// Repo holds the dependencies for HTTP handlers
type Repo struct {
	Generate *generate.Handlers
	Admin    *admin.Handlers
	Infra    *infra.Handlers
}

// NewRepo creates a new instance of the handler repository
func NewRepo(gen *generate.Handlers, adm *admin.Handlers, inf *infra.Handlers) *Repo {
	return &Repo{
		Generate: gen,
		Admin:    adm,
		Infra:    inf,
	}
}
