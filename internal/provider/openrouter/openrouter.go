// Package openrouter implements the OpenRouter image generation adapter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/types"
)

// Adapter calls the OpenRouter chat completions endpoint with the image
// output modality. Source images are always normalized to data-URIs before
// this point; bare remote URLs are never sent upstream. This provider never
// returns a caption.
//
// Recognized options: "model", "aspect_ratio", "image_size".
type Adapter struct {
	cfg    config.OpenRouterConfig
	creds  types.Credentials
	codec  *imaging.Codec
	client *http.Client
}

// New creates an OpenRouter adapter.
func New(cfg config.OpenRouterConfig, creds types.Credentials, client *http.Client) *Adapter {
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
func (a *Adapter) Name() string { return string(types.ProviderOpenRouter) }

type chatRequest struct {
	Model       string       `json:"model"`
	Messages    []chatMsg    `json:"messages"`
	Modalities  []string     `json:"modalities"`
	ImageConfig *imageConfig `json:"image_config,omitempty"`
}

type chatMsg struct {
	Role    string       `json:"role"`
	Content []requestSeg `json:"content"`
}

type requestSeg struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// imageConfig is only attached for gemini-family models; other model
// families reject it.
type imageConfig struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
	ImageSize   string `json:"image_size,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate performs one chat completion call and extracts the image from
// whichever of the known response shapes it arrived in.
func (a *Adapter) Generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	apiKey, err := a.creds.APIKey(types.ProviderOpenRouter)
	if err != nil || apiKey == "" {
		return nil, types.NewConfiguration("missing OpenRouter API key")
	}

	model := req.Options.String(types.OptModel, a.cfg.Model)

	content := []requestSeg{{Type: "text", Text: req.Prompt}}
	if req.Mode == types.ModeImageToImage {
		img, err := a.codec.Resolve(ctx, req.Source)
		if err != nil {
			return nil, types.AsFailure(err)
		}
		content = append(content, requestSeg{
			Type:     "image_url",
			ImageURL: &imageURL{URL: imaging.EncodeDataURI(img.Data, img.MimeType)},
		})
	}

	chatReq := chatRequest{
		Model:      model,
		Messages:   []chatMsg{{Role: "user", Content: content}},
		Modalities: []string{"image", "text"},
	}

	// Aspect ratio and output size ride in a gemini-only config object.
	if strings.Contains(model, "gemini") {
		if req.Options.Has(types.OptAspectRatio) || req.Options.Has(types.OptImageSize) {
			chatReq.ImageConfig = &imageConfig{
				AspectRatio: req.Options.String(types.OptAspectRatio, ""),
				ImageSize:   req.Options.String(types.OptImageSize, ""),
			}
		}
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, types.NewTransport("failed to encode request: %v", err)
	}

	endpoint := strings.TrimRight(a.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewTransport("failed to create request: %v", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://github.com/pixway/pixway")
	httpReq.Header.Set("X-Title", "Pixway")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, types.NewTransport("openrouter request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransport("failed to read response: %v", err)
	}

	var parsed chatResponse
	_ = json.Unmarshal(payload, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "provider error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return nil, types.NewTransport("%s", message).WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	if len(parsed.Choices) == 0 {
		return nil, types.NewContent("no image returned from the API").WithUpstream(payload)
	}

	ref := extractImageRef(&parsed.Choices[0].Message)
	if ref == "" {
		// This provider's failures are hard to summarize from one field;
		// keep the whole payload for diagnostics.
		return nil, types.NewContent("no image returned from the API").WithUpstream(payload)
	}

	return a.materialize(ctx, ref, payload)
}

// materialize turns an extracted image reference into inline bytes. A value
// that is neither a data-URI nor an absolute URL is assumed to be a bare
// base64 payload.
func (a *Adapter) materialize(ctx context.Context, ref string, payload []byte) (*types.GenerationResult, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		img, err := a.codec.Resolve(ctx, &types.ImageSource{URL: ref})
		if err != nil {
			return nil, types.AsFailure(err)
		}
		return &types.GenerationResult{Image: *img}, nil
	}

	uri := imaging.NormalizeDataURI(ref, imaging.DefaultMimeType)
	data, mime, err := imaging.DecodeDataURI(uri)
	if err != nil {
		return nil, types.NewTransport("malformed image payload: %v", err).WithUpstream(payload)
	}
	return &types.GenerationResult{Image: types.InlineImage{Data: data, MimeType: mime}}, nil
}
