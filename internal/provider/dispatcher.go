package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pixway/pixway/internal/types"
)

// Dispatcher validates normalized requests and routes them to the adapter
// matching the request's provider discriminator. It performs no retries;
// retry policy belongs to the caller, not here.
type Dispatcher struct {
	adapters map[types.Provider]types.Adapter
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given adapter set.
func NewDispatcher(adapters map[types.Provider]types.Adapter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{adapters: adapters, logger: logger}
}

// Dispatch runs one generation request to completion. All invariant checks
// happen here, before any network resource is touched; adapters can assume
// a well-formed request. Errors are always *types.Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	adapter, ok := d.adapters[req.Provider]
	if !ok {
		return nil, types.NewValidation("unknown provider %q", req.Provider)
	}

	start := time.Now()
	result, err := adapter.Generate(ctx, req)
	if err != nil {
		f := types.AsFailure(err)
		d.logger.Warn("generation failed",
			"provider", adapter.Name(),
			"mode", string(req.Mode),
			"kind", string(f.Kind),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", f.Message)
		return nil, f
	}

	d.logger.Info("generation completed",
		"provider", adapter.Name(),
		"mode", string(req.Mode),
		"mime_type", result.Image.MimeType,
		"has_caption", result.Caption != "",
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// validate enforces the request invariants. An image-mode request carries
// exactly one source, URL or inline bytes, never both and never neither.
func validate(req *types.GenerationRequest) error {
	if req == nil {
		return types.NewValidation("request is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return types.NewValidation("prompt must not be empty")
	}
	switch req.Mode {
	case types.ModeTextToImage:
		// Source is ignored in text mode rather than rejected; callers may
		// reuse one form for both modes.
	case types.ModeImageToImage:
		if req.Source == nil {
			return types.NewValidation("image mode requires a source image")
		}
		hasURL := req.Source.URL != ""
		hasData := len(req.Source.Data) > 0
		if hasURL == hasData {
			if hasURL {
				return types.NewValidation("source image must be a URL or inline bytes, not both")
			}
			return types.NewValidation("image mode requires a source image")
		}
	default:
		return types.NewValidation("unknown mode %q", req.Mode)
	}
	return nil
}
