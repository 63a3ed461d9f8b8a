// Package app assembles the HTTP router and server.
package app

import (
	"log/slog"
	"net/http"

	"github.com/pixway/pixway/internal/transport/http/handler"
	"github.com/pixway/pixway/internal/transport/http/middleware"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router with all application
// routes. Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Infrastructure routes
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)

	// Generation API
	mux.HandleFunc("POST /v1/images/generations", repo.Generate.Generation)
	mux.HandleFunc("GET /v1/models", repo.Generate.ListModels)

	// Admin API
	mux.HandleFunc("PUT /api/admin/credentials", repo.Admin.UpsertCredential)
	mux.HandleFunc("GET /api/admin/credentials", repo.Admin.ListCredentials)
	mux.HandleFunc("DELETE /api/admin/credentials/{provider}", repo.Admin.DeleteCredential)
	mux.HandleFunc("GET /api/admin/logs", repo.Admin.GetGenerationLogs)

	// Root returns JSON status
	mux.HandleFunc("GET /", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	// Request logging (if logger provided)
	if opts != nil && opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	// Request ID (always applied)
	h = middleware.RequestID(h)

	// CORS (always applied for browser clients)
	h = middleware.CORS(h)

	return h
}
