package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/transport/http/handler/shared"
)

// GetGenerationLogs handles GET /api/admin/logs.
func (h *Handlers) GetGenerationLogs(w http.ResponseWriter, r *http.Request) {
	filter := parseLogFilter(r)

	logs, err := h.Storage.GetGenerationLogs(filter)
	if err != nil {
		shared.WriteJSONError(w, "Failed to get generation logs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, map[string]any{
		"logs":   logs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}, http.StatusOK)
}

// parseLogFilter creates a LogFilter from query parameters.
func parseLogFilter(r *http.Request) storage.LogFilter {
	filter := storage.LogFilter{
		Limit:  50, // default
		Offset: 0,
	}

	if v := r.URL.Query().Get("provider"); v != "" {
		filter.Provider = v
	}
	if v := r.URL.Query().Get("model"); v != "" {
		filter.Model = v
	}
	if v := r.URL.Query().Get("failure_kind"); v != "" {
		filter.FailureKind = v
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}

	return filter
}
