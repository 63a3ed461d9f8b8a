package imaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixway/pixway/internal/types"
)

func TestResolve_InlineBytesPassThrough(t *testing.T) {
	codec := New(nil)

	img, err := codec.Resolve(context.Background(), &types.ImageSource{
		Data:     []byte("raw-bytes"),
		MimeType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.MimeType)
}

func TestResolve_InlineBytesDefaultMime(t *testing.T) {
	codec := New(nil)

	img, err := codec.Resolve(context.Background(), &types.ImageSource{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, img.MimeType)
}

func TestResolve_RemoteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	defer server.Close()

	codec := New(server.Client())
	img, err := codec.Resolve(context.Background(), &types.ImageSource{URL: server.URL + "/a.webp"})
	require.NoError(t, err)
	assert.Equal(t, []byte("webp-bytes"), img.Data)
	assert.Equal(t, "image/webp", img.MimeType)
}

func TestResolve_RemoteURLMissingContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress the content-type header entirely.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x89, 0x50})
	}))
	defer server.Close()

	codec := New(server.Client())
	img, err := codec.Resolve(context.Background(), &types.ImageSource{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, img.MimeType)
}

func TestResolve_RemoteURLNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	codec := New(server.Client())
	_, err := codec.Resolve(context.Background(), &types.ImageSource{URL: server.URL})
	require.Error(t, err)

	f := types.AsFailure(err)
	assert.Equal(t, types.FailureTransport, f.Kind)
	assert.Equal(t, http.StatusNotFound, f.HTTPStatus)
}

func TestResolve_NilSource(t *testing.T) {
	codec := New(nil)
	_, err := codec.Resolve(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, types.FailureValidation, types.AsFailure(err).Kind)
}

func TestDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI([]byte("hello"), "image/jpeg")
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", uri)

	data, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/jpeg", mime)
}

func TestDecodeDataURI_Malformed(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"not a data uri", "https://example.com/a.png"},
		{"no comma", "data:image/png;base64"},
		{"bad payload", "data:image/png;base64,%%%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURI(tt.uri)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeDataURI_Idempotent(t *testing.T) {
	wrapped := NormalizeDataURI("aGVsbG8=", "image/png")
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", wrapped)

	// Applying it to its own output returns the same string unchanged.
	assert.Equal(t, wrapped, NormalizeDataURI(wrapped, "image/png"))
	assert.Equal(t, wrapped, NormalizeDataURI(wrapped, "image/jpeg"))
}

func TestNormalizeDataURI_DefaultMime(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,eA==", NormalizeDataURI("eA==", ""))
}
