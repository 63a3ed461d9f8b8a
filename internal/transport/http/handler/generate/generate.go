// Package generate holds the image generation API handlers.
package generate

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"

	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/tokenizer"
	"github.com/pixway/pixway/internal/transport/http/middleware"
	"github.com/pixway/pixway/internal/types"
)

// maxUploadBytes caps multipart source image uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Dispatcher runs one normalized generation request to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error)
}

// Handlers holds the dependencies for the generation HTTP handlers.
type Handlers struct {
	Dispatcher  Dispatcher
	Storage     storage.Storage
	Tokenizer   tokenizer.Tokenizer
	Cache       *ristretto.Cache[string, any]
	Credentials types.Credentials

	// ModelsURL is the upstream model catalog endpoint; tests point it at
	// a local stub.
	ModelsURL string

	// CatalogClient issues the model catalog requests; shared across
	// fetches so connections are reused.
	CatalogClient *http.Client
}

// New creates a new instance of generation handlers.
func New(d Dispatcher, store storage.Storage, tok tokenizer.Tokenizer, cache *ristretto.Cache[string, any], creds types.Credentials) *Handlers {
	return &Handlers{
		Dispatcher:    d,
		Storage:       store,
		Tokenizer:     tok,
		Cache:         cache,
		Credentials:   creds,
		ModelsURL:     geminiModelsURL,
		CatalogClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// generationBody is the JSON request shape for POST /v1/images/generations.
type generationBody struct {
	Prompt   string            `json:"prompt"`
	Mode     string            `json:"mode"`
	Provider string            `json:"provider"`
	ImageURL string            `json:"image_url"`
	Options  map[string]string `json:"options"`
}

// generationResponse is the success envelope: the image as a data-URI plus
// any caption the provider returned, null when absent.
type generationResponse struct {
	Image string  `json:"image"`
	Text  *string `json:"text"`
}

// Generation handles POST /v1/images/generations. The body is either JSON
// or a multipart form carrying a source image file; both are normalized
// into the same request before dispatch.
func (h *Handlers) Generation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}
	startTime := time.Now()

	req, err := h.parseRequest(r)
	if err != nil {
		f := types.AsFailure(err)
		types.WriteFailure(w, f)
		go h.logGeneration(requestID, req, f, startTime)
		return
	}

	result, err := h.Dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		f := types.AsFailure(err)
		types.WriteFailure(w, f)
		go h.logGeneration(requestID, req, f, startTime)
		return
	}

	response := generationResponse{
		Image: imaging.EncodeDataURI(result.Image.Data, result.Image.MimeType),
	}
	if result.Caption != "" {
		caption := result.Caption
		response.Text = &caption
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)

	go h.logGeneration(requestID, req, nil, startTime)
}

// parseRequest normalizes either transport shape into a GenerationRequest.
func (h *Handlers) parseRequest(r *http.Request) (*types.GenerationRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		return h.parseMultipart(r)
	}
	return h.parseJSON(r)
}

func (h *Handlers) parseJSON(r *http.Request) (*types.GenerationRequest, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, types.NewValidation("failed to read request body")
	}
	r.Body.Close()

	var body generationBody
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil, types.NewValidation("invalid request format")
	}

	req := &types.GenerationRequest{
		Prompt:   strings.TrimSpace(body.Prompt),
		Mode:     parseMode(body.Mode),
		Provider: parseProvider(body.Provider),
		Options:  body.Options,
	}
	if body.ImageURL != "" {
		req.Source = &types.ImageSource{URL: strings.TrimSpace(body.ImageURL)}
	}
	return req, nil
}

func (h *Handlers) parseMultipart(r *http.Request) (*types.GenerationRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, types.NewValidation("invalid multipart form: %v", err)
	}

	req := &types.GenerationRequest{
		Prompt:   strings.TrimSpace(r.FormValue("prompt")),
		Mode:     parseMode(r.FormValue("mode")),
		Provider: parseProvider(r.FormValue("provider")),
		Options:  collectOptions(r.MultipartForm),
	}

	// An uploaded file wins over an image_url field when both are present.
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if readErr != nil {
			return nil, types.NewValidation("failed to read uploaded image")
		}
		req.Source = &types.ImageSource{
			Data:     data,
			MimeType: header.Header.Get("Content-Type"),
		}
	case r.FormValue("image_url") != "":
		req.Source = &types.ImageSource{URL: strings.TrimSpace(r.FormValue("image_url"))}
	}
	return req, nil
}

// reservedFields are multipart fields with dedicated meaning; everything
// else is passed through as a provider option.
var reservedFields = map[string]bool{
	"prompt":    true,
	"mode":      true,
	"provider":  true,
	"image_url": true,
	"image":     true,
}

func collectOptions(form *multipart.Form) map[string]string {
	if form == nil {
		return nil
	}
	options := make(map[string]string)
	for field, values := range form.Value {
		if reservedFields[field] || len(values) == 0 || values[0] == "" {
			continue
		}
		options[field] = values[0]
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

func parseMode(mode string) types.Mode {
	if mode == string(types.ModeImageToImage) {
		return types.ModeImageToImage
	}
	return types.ModeTextToImage
}

func parseProvider(provider string) types.Provider {
	if provider == "" {
		return types.ProviderGemini
	}
	return types.Provider(strings.ToLower(provider))
}

// logGeneration records one dispatch in storage. Failures here are dropped;
// logging must never affect the response path.
func (h *Handlers) logGeneration(requestID string, req *types.GenerationRequest, f *types.Failure, startTime time.Time) {
	if h.Storage == nil {
		return
	}

	entry := &storage.GenerationLog{
		ID:         uuid.New().String(),
		RequestID:  requestID,
		StatusCode: http.StatusOK,
		DurationMs: time.Since(startTime).Milliseconds(),
		CreatedAt:  time.Now(),
	}

	if req != nil {
		entry.Provider = string(req.Provider)
		entry.Mode = string(req.Mode)
		entry.Model = req.Options.String(types.OptModel, "")
		if h.Tokenizer != nil {
			if count, err := h.Tokenizer.CountTokens(req.Prompt, entry.Model); err == nil {
				entry.PromptTokens = count
			}
		}
	}

	if f != nil {
		entry.FailureKind = string(f.Kind)
		entry.ErrorMessage = f.Message
		entry.StatusCode = f.HTTPStatus
		if entry.StatusCode == 0 {
			entry.StatusCode = http.StatusBadGateway
		}
	}

	_ = h.Storage.LogGeneration(entry)
}
