package types

import "context"

// Adapter translates between the normalized request/result model and one
// upstream provider's wire format. Implementations return *Failure for
// every error path, never bare errors.
type Adapter interface {
	// Name returns the provider identifier.
	Name() string

	// Generate performs the upstream call (or calls) for one request and
	// returns exactly one image, with an optional caption.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

// Credentials resolves the API key for a provider. Resolution is lazy: a
// missing key is only an error once that provider is actually selected.
type Credentials interface {
	APIKey(provider Provider) (string, error)
}

// Option keys recognized across adapters. Each adapter documents the subset
// it reads; unknown keys are ignored.
const (
	OptModel          = "model"
	OptModeration     = "moderation"
	OptAspectRatio    = "aspect_ratio"
	OptImageSize      = "image_size"
	OptNegativePrompt = "negative_prompt"
	OptCheckpoint     = "checkpoint"
	OptLora           = "lora"
	OptDenoise        = "denoise"
)
