// Package openai implements the OpenAI image generation adapter.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/types"
)

// Adapter calls the OpenAI images API: a JSON generations call for
// text-to-image and a multipart edits call for image-to-image. This
// provider never returns a caption.
//
// Recognized options: "model", "moderation" ("auto" default, "low").
type Adapter struct {
	cfg    config.OpenAIConfig
	creds  types.Credentials
	codec  *imaging.Codec
	client *http.Client
}

// New creates an OpenAI adapter.
func New(cfg config.OpenAIConfig, creds types.Credentials, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Adapter{
		cfg:    cfg,
		creds:  creds,
		codec:  imaging.New(client),
		client: client,
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() string { return string(types.ProviderOpenAI) }

type generateRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Moderation string `json:"moderation,omitempty"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate dispatches to the generations or edits endpoint by mode.
func (a *Adapter) Generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	apiKey, err := a.creds.APIKey(types.ProviderOpenAI)
	if err != nil || apiKey == "" {
		return nil, types.NewConfiguration("missing OpenAI API key")
	}

	var httpReq *http.Request
	if req.Mode == types.ModeImageToImage {
		httpReq, err = a.buildEditRequest(ctx, req)
	} else {
		httpReq, err = a.buildGenerateRequest(ctx, req)
	}
	if err != nil {
		return nil, types.AsFailure(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, types.NewTransport("openai request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransport("failed to read response: %v", err)
	}

	var parsed imagesResponse
	_ = json.Unmarshal(payload, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "provider error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return nil, types.NewTransport("%s", message).WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, types.NewContent("no image returned from the API").WithUpstream(payload)
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, types.NewTransport("malformed image payload: %v", err).WithUpstream(payload)
	}

	return &types.GenerationResult{
		Image: types.InlineImage{Data: data, MimeType: imaging.DefaultMimeType},
	}, nil
}

// buildGenerateRequest builds the JSON text-to-image call.
func (a *Adapter) buildGenerateRequest(ctx context.Context, req *types.GenerationRequest) (*http.Request, error) {
	body, err := json.Marshal(generateRequest{
		Model:      req.Options.String(types.OptModel, a.cfg.Model),
		Prompt:     req.Prompt,
		Moderation: req.Options.String(types.OptModeration, "auto"),
	})
	if err != nil {
		return nil, types.NewTransport("failed to encode request: %v", err)
	}

	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/v1/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewTransport("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// buildEditRequest builds the multipart image-to-image call, carrying the
// resolved source image bytes under the image file field.
func (a *Adapter) buildEditRequest(ctx context.Context, req *types.GenerationRequest) (*http.Request, error) {
	img, err := a.codec.Resolve(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("model", req.Options.String(types.OptModel, a.cfg.Model)); err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}
	if err := writer.WriteField("prompt", req.Prompt); err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}
	if err := writer.WriteField("moderation", req.Options.String(types.OptModeration, "auto")); err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}

	part, err := writer.CreateFormFile("image", fileNameFor(img.MimeType))
	if err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, types.NewTransport("failed to build form: %v", err)
	}

	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/v1/images/edits"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, types.NewTransport("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	return httpReq, nil
}

// fileNameFor picks a form file name matching the image MIME type.
func fileNameFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "source.jpg"
	case "image/webp":
		return "source.webp"
	default:
		return "source.png"
	}
}
