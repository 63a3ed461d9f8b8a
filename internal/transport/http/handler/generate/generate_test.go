package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixway/pixway/internal/types"
)

// mockDispatcher records the last request and returns a canned outcome.
type mockDispatcher struct {
	lastReq *types.GenerationRequest
	result  *types.GenerationResult
	err     error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func newTestHandlers(d Dispatcher) *Handlers {
	return New(d, nil, nil, nil, nil)
}

func TestGeneration_JSONSuccess(t *testing.T) {
	mock := &mockDispatcher{result: &types.GenerationResult{
		Image:   types.InlineImage{Data: []byte("img"), MimeType: "image/png"},
		Caption: "done",
	}}
	h := newTestHandlers(mock)

	body := `{"prompt": "a red bicycle", "mode": "text", "provider": "gemini", "options": {"model": "gemini-3-pro-image"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "data:image/png;base64,aW1n", resp.Image)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "done", *resp.Text)

	require.NotNil(t, mock.lastReq)
	assert.Equal(t, "a red bicycle", mock.lastReq.Prompt)
	assert.Equal(t, types.ModeTextToImage, mock.lastReq.Mode)
	assert.Equal(t, types.ProviderGemini, mock.lastReq.Provider)
	assert.Equal(t, "gemini-3-pro-image", mock.lastReq.Options.String(types.OptModel, ""))
}

func TestGeneration_NoCaptionIsNull(t *testing.T) {
	mock := &mockDispatcher{result: &types.GenerationResult{
		Image: types.InlineImage{Data: []byte("img"), MimeType: "image/png"},
	}}
	h := newTestHandlers(mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{"prompt": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generation(rec, req)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["text"]))
}

func TestGeneration_JSONImageURL(t *testing.T) {
	mock := &mockDispatcher{result: &types.GenerationResult{Image: types.InlineImage{Data: []byte("x")}}}
	h := newTestHandlers(mock)

	body := `{"prompt": "restyle", "mode": "image", "provider": "openrouter", "image_url": "https://ex/a.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	h.Generation(httptest.NewRecorder(), req)

	require.NotNil(t, mock.lastReq.Source)
	assert.Equal(t, "https://ex/a.jpg", mock.lastReq.Source.URL)
	assert.Empty(t, mock.lastReq.Source.Data)
}

func TestGeneration_MultipartUpload(t *testing.T) {
	mock := &mockDispatcher{result: &types.GenerationResult{Image: types.InlineImage{Data: []byte("x")}}}
	h := newTestHandlers(mock)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("prompt", "make it night"))
	require.NoError(t, writer.WriteField("mode", "image"))
	require.NoError(t, writer.WriteField("provider", "openai"))
	require.NoError(t, writer.WriteField("moderation", "low"))
	part, err := writer.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	h.Generation(httptest.NewRecorder(), req)

	require.NotNil(t, mock.lastReq)
	assert.Equal(t, types.ModeImageToImage, mock.lastReq.Mode)
	assert.Equal(t, types.ProviderOpenAI, mock.lastReq.Provider)
	require.NotNil(t, mock.lastReq.Source)
	assert.Equal(t, []byte("jpeg-bytes"), mock.lastReq.Source.Data)

	// Unreserved form fields ride along as provider options.
	assert.Equal(t, "low", mock.lastReq.Options.String(types.OptModeration, ""))
}

func TestGeneration_ValidationFailureMapsTo400(t *testing.T) {
	mock := &mockDispatcher{err: types.NewValidation("prompt must not be empty")}
	h := newTestHandlers(mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{"prompt": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request_error")
}

func TestGeneration_TimeoutFailureMapsTo504(t *testing.T) {
	mock := &mockDispatcher{err: types.NewTimeout("job did not complete")}
	h := newTestHandlers(mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{"prompt": "x", "provider": "localqueue"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generation(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGeneration_MalformedJSON(t *testing.T) {
	h := newTestHandlers(&mockDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Generation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneration_ProviderDefaultsToGemini(t *testing.T) {
	mock := &mockDispatcher{result: &types.GenerationResult{Image: types.InlineImage{Data: []byte("x")}}}
	h := newTestHandlers(mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generations", strings.NewReader(`{"prompt": "x"}`))
	req.Header.Set("Content-Type", "application/json")

	h.Generation(httptest.NewRecorder(), req)

	assert.Equal(t, types.ProviderGemini, mock.lastReq.Provider)
}

type staticCreds map[types.Provider]string

func (c staticCreds) APIKey(p types.Provider) (string, error) {
	if key := c[p]; key != "" {
		return key, nil
	}
	return "", errors.New("no key")
}

func TestListModels_FiltersUpstreamCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.5-flash-image", "supportedGenerationMethods": []string{"generateContent"}},
				{"name": "models/gemini-embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
				{"name": "models/gemini-3-pro-image", "supportedGenerationMethods": []string{"generateContent"}},
				{"name": "models/gemini-2.5-flash-image", "supportedGenerationMethods": []string{"generateContent"}},
			},
		})
	}))
	defer server.Close()

	h := newTestHandlers(&mockDispatcher{})
	h.Credentials = staticCreds{types.ProviderGemini: "test-key"}
	h.ModelsURL = server.URL
	h.CatalogClient = server.Client()

	rec := httptest.NewRecorder()
	h.ListModels(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"gemini-2.5-flash-image", "gemini-3-pro-image"}, resp.Models)
}

func TestNew_SetsCatalogClient(t *testing.T) {
	h := newTestHandlers(&mockDispatcher{})
	require.NotNil(t, h.CatalogClient)
	assert.NotZero(t, h.CatalogClient.Timeout)
}

func TestListModels_FallsBackToDefaults(t *testing.T) {
	h := newTestHandlers(&mockDispatcher{})
	h.Credentials = staticCreds{} // no key configured

	rec := httptest.NewRecorder()
	h.ListModels(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, defaultModels, resp.Models)
}
