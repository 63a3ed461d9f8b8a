// Package imaging converts image material between raw bytes, base64
// payloads, data-URIs, and remote URL references. All adapters funnel source
// images through this codec so that file uploads and URLs are
// indistinguishable past this point.
package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pixway/pixway/internal/types"
)

// DefaultMimeType is assumed whenever an image arrives without one.
const DefaultMimeType = "image/png"

// maxFetchBytes caps remote image downloads at 32 MiB.
const maxFetchBytes = 32 << 20

// Codec resolves image sources. Safe for concurrent use.
type Codec struct {
	client *http.Client
}

// New creates a Codec. A nil client gets a default with a 30s timeout.
func New(client *http.Client) *Codec {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Codec{client: client}
}

// Resolve turns an ImageSource into inline bytes. Remote URLs are fetched
// with a GET; inline bytes pass through unchanged. The MIME type comes from
// the response content-type (or the caller), defaulting to image/png.
func (c *Codec) Resolve(ctx context.Context, src *types.ImageSource) (*types.InlineImage, error) {
	if src == nil {
		return nil, types.NewValidation("no image source supplied")
	}

	if len(src.Data) > 0 {
		mime := src.MimeType
		if mime == "" {
			mime = DefaultMimeType
		}
		return &types.InlineImage{Data: src.Data, MimeType: mime}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, types.NewTransport("invalid image URL: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewTransport("failed to fetch image URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewTransport("failed to fetch image URL").WithStatus(resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, types.NewTransport("failed to read image body: %v", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = DefaultMimeType
	}
	return &types.InlineImage{Data: data, MimeType: mime}, nil
}

// EncodeDataURI encodes bytes as a data-URI with the given MIME type.
func EncodeDataURI(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI is the inverse of EncodeDataURI. It returns the decoded
// bytes and MIME type of a data:<mime>;base64,<payload> string.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data-URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data-URI")
	}

	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = DefaultMimeType
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("malformed data-URI payload: %w", err)
	}
	return data, mime, nil
}

// NormalizeDataURI wraps a bare base64 payload into a data-URI. Values
// already in data-URI form are returned unchanged, so the function is
// idempotent.
func NormalizeDataURI(value, mimeType string) string {
	if strings.HasPrefix(value, "data:") {
		return value
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, value)
}
