package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/types"
)

type staticCreds map[types.Provider]string

func (c staticCreds) APIKey(p types.Provider) (string, error) {
	if key := c[p]; key != "" {
		return key, nil
	}
	return "", errors.New("no key")
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*Adapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter := New(
		config.GeminiConfig{Model: "gemini-2.5-flash-image"},
		staticCreds{types.ProviderGemini: "test-key"},
		server.Client(),
	).WithBaseURL(server.URL)
	return adapter, server
}

func TestGenerate_TextToImage(t *testing.T) {
	imageBytes := []byte("png-bytes")
	var gotPath, gotKey string
	var gotBody map[string]any

	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"inline_data": map[string]string{
							"mime_type": "image/png",
							"data":      base64.StdEncoding.EncodeToString(imageBytes),
						}},
						{"text": "done"},
					},
				},
			}},
		})
	})

	result, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "a red bicycle",
		Mode:   types.ModeTextToImage,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, imageBytes, result.Image.Data)
	assert.Equal(t, "image/png", result.Image.MimeType)
	assert.Equal(t, "done", result.Caption)

	// Text mode sends exactly one text part, no inline image.
	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Len(t, parts, 1)
}

func TestGenerate_AcceptsAlternateInlineSpelling(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]string{
							"mimeType": "image/webp",
							"data":     base64.StdEncoding.EncodeToString([]byte("webp")),
						}},
					},
				},
			}},
		})
	})

	result, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "x",
		Mode:   types.ModeTextToImage,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("webp"), result.Image.Data)
	assert.Equal(t, "image/webp", result.Image.MimeType)
}

func TestGenerate_ImageModeSendsInlinePart(t *testing.T) {
	var gotBody struct {
		Contents []struct {
			Parts []map[string]any `json:"parts"`
		} `json:"contents"`
	}

	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"inline_data": map[string]string{"data": base64.StdEncoding.EncodeToString([]byte("out"))}},
					},
				},
			}},
		})
	})

	_, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "make it blue",
		Mode:   types.ModeImageToImage,
		Source: &types.ImageSource{Data: []byte("src"), MimeType: "image/jpeg"},
	})
	require.NoError(t, err)

	require.Len(t, gotBody.Contents[0].Parts, 2)
	inline := gotBody.Contents[0].Parts[1]["inline_data"].(map[string]any)
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("src")), inline["data"])
}

func TestGenerate_MissingKeyFailsBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	adapter := New(config.GeminiConfig{Model: "m"}, staticCreds{}, server.Client()).WithBaseURL(server.URL)

	_, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "x",
		Mode:   types.ModeTextToImage,
	})

	f := types.AsFailure(err)
	assert.Equal(t, types.FailureConfiguration, f.Kind)
	assert.False(t, called, "no network call expected without a credential")
}

func TestGenerate_UpstreamErrorMessage(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "quota exceeded"},
		})
	})

	_, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "x",
		Mode:   types.ModeTextToImage,
	})

	f := types.AsFailure(err)
	assert.Equal(t, types.FailureTransport, f.Kind)
	assert.Equal(t, "quota exceeded", f.Message)
	assert.Equal(t, http.StatusTooManyRequests, f.HTTPStatus)
	assert.NotEmpty(t, f.Upstream)
}

func TestGenerate_UpstreamErrorWithoutMessage(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json"))
	})

	_, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "x",
		Mode:   types.ModeTextToImage,
	})

	f := types.AsFailure(err)
	assert.Equal(t, types.FailureTransport, f.Kind)
	assert.Equal(t, "provider error", f.Message)
}

func TestGenerate_NoImageIsContentFailure(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "I can't create that image."}},
				},
			}},
		})
	})

	_, err := adapter.Generate(context.Background(), &types.GenerationRequest{
		Prompt: "x",
		Mode:   types.ModeTextToImage,
	})

	f := types.AsFailure(err)
	assert.Equal(t, types.FailureContent, f.Kind)
	// The refusal text rides along as diagnostic detail.
	assert.Contains(t, f.Message, "I can't create that image.")
	assert.NotEmpty(t, f.Upstream)
}
