package generate

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pixway/pixway/internal/transport/http/handler/shared"
	"github.com/pixway/pixway/internal/types"
)

// geminiModelsURL is the upstream model catalog endpoint.
const geminiModelsURL = "https://generativelanguage.googleapis.com/v1beta/models"

// modelsCacheKey and modelsCacheTTL control the catalog cache. The catalog
// changes rarely; five minutes keeps the admin surface snappy without
// hammering the upstream.
const (
	modelsCacheKey = "gemini_model_catalog"
	modelsCacheTTL = 5 * time.Minute
)

// defaultModels is the fallback catalog when the upstream is unreachable.
var defaultModels = []string{"gemini-2.5-flash-image", "gemini-3-pro-image"}

// usableModels is the set of image-capable model names exposed to callers.
var usableModels = map[string]bool{
	"gemini-2.5-flash-image": true,
	"gemini-3-pro-image":     true,
}

// catalogEntry is one model in the upstream listing.
type catalogEntry struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// catalogResponse is the upstream model listing envelope.
type catalogResponse struct {
	Models []catalogEntry `json:"models"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ListModels handles GET /v1/models: the image-capable model catalog,
// cached, with hardcoded defaults when the upstream cannot be reached.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	if h.Cache != nil {
		if cached, found := h.Cache.Get(modelsCacheKey); found {
			if models, ok := cached.([]string); ok {
				w.Header().Set("X-Cache", "HIT")
				shared.WriteJSON(w, map[string]any{"models": models}, http.StatusOK)
				return
			}
		}
	}

	models, err := h.fetchCatalog(r)
	if err != nil {
		// Degrade to the defaults rather than failing the listing.
		shared.WriteJSON(w, map[string]any{"models": defaultModels}, http.StatusOK)
		return
	}

	if h.Cache != nil {
		h.Cache.SetWithTTL(modelsCacheKey, any(models), 1, modelsCacheTTL)
	}
	shared.WriteJSON(w, map[string]any{"models": models}, http.StatusOK)
}

// fetchCatalog lists upstream models and filters them to image-capable
// generateContent models, falling back to the defaults on an empty result.
func (h *Handlers) fetchCatalog(r *http.Request) ([]string, error) {
	apiKey, err := h.Credentials.APIKey(types.ProviderGemini)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.ModelsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", apiKey)

	client := h.CatalogClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed catalogResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewTransport("model listing failed").WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	models := filterCatalog(parsed.Models)
	if len(models) == 0 {
		models = defaultModels
	}
	return models, nil
}

func filterCatalog(entries []catalogEntry) []string {
	seen := make(map[string]bool)
	var models []string
	for _, entry := range entries {
		if !supportsGenerateContent(entry.SupportedGenerationMethods) {
			continue
		}
		name := strings.TrimPrefix(entry.Name, "models/")
		if name == "" || !usableModels[name] || seen[name] {
			continue
		}
		seen[name] = true
		models = append(models, name)
	}
	return models
}

func supportsGenerateContent(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}
