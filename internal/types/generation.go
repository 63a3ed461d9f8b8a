// Package types contains the normalized request/result model shared by the
// dispatcher, the provider adapters, and the HTTP transport.
package types

// Provider identifies an upstream image generation backend.
type Provider string

// Known provider discriminators. The dispatcher matches these exhaustively;
// anything else is rejected at validation time.
const (
	ProviderGemini     Provider = "gemini"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderLocalQueue Provider = "localqueue"
)

// Mode selects between pure text-to-image generation and transforming a
// supplied source image.
type Mode string

const (
	ModeTextToImage  Mode = "text"
	ModeImageToImage Mode = "image"
)

// ImageSource is the caller-supplied source image for image-to-image
// requests: either a remote URL or inline bytes, never both.
type ImageSource struct {
	// URL references a remote image to fetch.
	URL string

	// Data holds inline image bytes (e.g., from a file upload).
	Data []byte

	// MimeType describes Data. Empty means image/png.
	MimeType string
}

// InlineImage is image bytes plus their MIME type.
type InlineImage struct {
	Data     []byte
	MimeType string
}

// Options is the open, provider-specific configuration bag. Adapters read
// only the keys they recognize; unknown keys are never an error.
type Options map[string]string

// String returns the value for key, or def when the key is absent or empty.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok && v != "" {
		return v
	}
	return def
}

// Has reports whether key is present with a non-empty value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != ""
}

// GenerationRequest is the normalized inbound request. It is immutable once
// constructed; the dispatcher owns its lifecycle.
type GenerationRequest struct {
	Prompt   string
	Mode     Mode
	Source   *ImageSource // required iff Mode == ModeImageToImage
	Provider Provider
	Options  Options
}

// GenerationResult is the normalized outcome of a successful generation:
// exactly one image, plus any caption text the provider returned with it.
type GenerationResult struct {
	Image   InlineImage
	Caption string
}
