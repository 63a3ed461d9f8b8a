// Package gemini implements the Gemini image generation adapter.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/types"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Adapter calls the Gemini generateContent endpoint. A single synchronous
// round trip per request; no polling.
//
// Recognized options: "model".
type Adapter struct {
	cfg     config.GeminiConfig
	creds   types.Credentials
	codec   *imaging.Codec
	client  *http.Client
	baseURL string
}

// New creates a Gemini adapter. A nil client gets a default with a timeout
// sized for image generation latency.
func New(cfg config.GeminiConfig, creds types.Credentials, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Adapter{
		cfg:     cfg,
		creds:   creds,
		codec:   imaging.New(client),
		client:  client,
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL overrides the upstream base URL (used by tests).
func (a *Adapter) WithBaseURL(u string) *Adapter {
	a.baseURL = u
	return a
}

// Name returns the provider identifier.
func (a *Adapter) Name() string { return string(types.ProviderGemini) }

// Request/response wire types. The response may spell inline image data as
// inline_data or inlineData; both must be accepted.
type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
	InlineAlt  *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type,omitempty"`
	MimeAlt  string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *upstreamError `json:"error,omitempty"`
}

type upstreamError struct {
	Message string `json:"message"`
}

// Generate performs one generateContent call and extracts the first inline
// image plus, independently, the first text part as the caption.
func (a *Adapter) Generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	apiKey, err := a.creds.APIKey(types.ProviderGemini)
	if err != nil || apiKey == "" {
		return nil, types.NewConfiguration("missing Gemini API key")
	}

	parts := []contentPart{{Text: req.Prompt}}

	if req.Mode == types.ModeImageToImage {
		img, err := a.codec.Resolve(ctx, req.Source)
		if err != nil {
			return nil, types.AsFailure(err)
		}
		parts = append(parts, contentPart{
			InlineData: &inlineData{
				MimeType: img.MimeType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []requestContent{{Parts: parts}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return nil, types.NewTransport("failed to encode request: %v", err)
	}

	model := req.Options.String(types.OptModel, a.cfg.Model)
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewTransport("failed to create request: %v", err)
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, types.NewTransport("gemini request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransport("failed to read response: %v", err)
	}

	var parsed generateResponse
	// A decode failure on an error status is fine; the payload is kept raw.
	_ = json.Unmarshal(payload, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "provider error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return nil, types.NewTransport("%s", message).WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	var outParts []contentPart
	if len(parsed.Candidates) > 0 {
		outParts = parsed.Candidates[0].Content.Parts
	}

	caption := firstText(outParts)
	image := firstInlineImage(outParts)
	if image == nil {
		// Typical shape of a safety-filtered refusal: text but no image.
		f := types.NewContent("no image returned from the API")
		if caption != "" {
			f = types.NewContent("no image returned from the API: %s", caption)
		}
		return nil, f.WithUpstream(payload)
	}

	data, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return nil, types.NewTransport("malformed image payload: %v", err).WithUpstream(payload)
	}

	mime := image.MimeType
	if mime == "" {
		mime = image.MimeAlt
	}
	if mime == "" {
		mime = imaging.DefaultMimeType
	}

	return &types.GenerationResult{
		Image:   types.InlineImage{Data: data, MimeType: mime},
		Caption: caption,
	}, nil
}

// firstInlineImage returns the first part carrying inline image data,
// accepting both key spellings.
func firstInlineImage(parts []contentPart) *inlineData {
	for _, part := range parts {
		inline := part.InlineData
		if inline == nil || inline.Data == "" {
			inline = part.InlineAlt
		}
		if inline != nil && inline.Data != "" {
			return inline
		}
	}
	return nil
}

// firstText returns the first non-empty text part.
func firstText(parts []contentPart) string {
	for _, part := range parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
