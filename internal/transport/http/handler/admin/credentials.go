package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/transport/http/handler/shared"
)

// UpsertCredentialRequest is the body for PUT /api/admin/credentials.
// One credential per provider; an existing key is replaced.
type UpsertCredentialRequest struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
}

// UpsertCredential handles PUT /api/admin/credentials.
func (h *Handlers) UpsertCredential(w http.ResponseWriter, r *http.Request) {
	var req UpsertCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Provider == "" || req.APIKey == "" {
		shared.WriteJSONError(w, "provider and api_key are required", http.StatusBadRequest)
		return
	}

	cred := &storage.Credential{
		Provider: req.Provider,
		Name:     req.Name,
		APIKey:   req.APIKey,
	}

	if err := h.Storage.UpsertCredential(cred); err != nil {
		shared.WriteJSONError(w, "Failed to save credential: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.invalidateCredential(req.Provider)

	shared.WriteJSON(w, cred.ToPreview(), http.StatusOK)
}

// ListCredentials handles GET /api/admin/credentials. Keys are masked.
func (h *Handlers) ListCredentials(w http.ResponseWriter, r *http.Request) {
	previews, err := h.Storage.ListCredentials()
	if err != nil {
		shared.WriteJSONError(w, "Failed to list credentials: "+err.Error(), http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, map[string]any{"credentials": previews}, http.StatusOK)
}

// DeleteCredential handles DELETE /api/admin/credentials/{provider}.
func (h *Handlers) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if provider == "" {
		shared.WriteJSONError(w, "Provider is required", http.StatusBadRequest)
		return
	}

	if err := h.Storage.DeleteCredential(provider); errors.Is(err, storage.ErrNotFound) {
		shared.WriteJSONError(w, "Credential not found", http.StatusNotFound)
		return
	} else if err != nil {
		shared.WriteJSONError(w, "Failed to delete credential: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.invalidateCredential(provider)

	w.WriteHeader(http.StatusNoContent)
}
