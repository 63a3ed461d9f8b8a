package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FailureKind classifies a generation failure.
type FailureKind string

const (
	// FailureValidation: malformed or incomplete GenerationRequest,
	// detected before any network call.
	FailureValidation FailureKind = "validation"

	// FailureConfiguration: a required credential or path is missing.
	FailureConfiguration FailureKind = "configuration"

	// FailureTransport: non-2xx upstream response, network error, or a
	// malformed upstream envelope.
	FailureTransport FailureKind = "transport"

	// FailureContent: the upstream call succeeded but no usable image
	// could be extracted (typically a safety refusal).
	FailureContent FailureKind = "content"

	// FailureTimeout: a local-queue job did not complete within the
	// deadline. The job may still finish on the backend out-of-band.
	FailureTimeout FailureKind = "timeout"
)

// Failure is the typed error every adapter and the dispatcher return.
// Adapters never surface bare errors to callers.
type Failure struct {
	Kind    FailureKind
	Message string

	// HTTPStatus is the upstream status code, when one was received.
	HTTPStatus int

	// Upstream optionally retains the raw upstream payload for
	// diagnostics. Never required for correct behavior.
	Upstream json.RawMessage
}

func (f *Failure) Error() string {
	if f.HTTPStatus > 0 {
		return fmt.Sprintf("%s: %s (upstream status %d)", f.Kind, f.Message, f.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NewValidation creates a validation failure.
func NewValidation(format string, args ...any) *Failure {
	return &Failure{Kind: FailureValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConfiguration creates a configuration failure.
func NewConfiguration(format string, args ...any) *Failure {
	return &Failure{Kind: FailureConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NewTransport creates a transport failure.
func NewTransport(format string, args ...any) *Failure {
	return &Failure{Kind: FailureTransport, Message: fmt.Sprintf(format, args...)}
}

// NewContent creates a content failure.
func NewContent(format string, args ...any) *Failure {
	return &Failure{Kind: FailureContent, Message: fmt.Sprintf(format, args...)}
}

// NewTimeout creates a timeout failure.
func NewTimeout(format string, args ...any) *Failure {
	return &Failure{Kind: FailureTimeout, Message: fmt.Sprintf(format, args...)}
}

// WithStatus attaches the upstream HTTP status code.
func (f *Failure) WithStatus(status int) *Failure {
	f.HTTPStatus = status
	return f
}

// WithUpstream attaches the raw upstream payload as diagnostic detail.
func (f *Failure) WithUpstream(payload []byte) *Failure {
	f.Upstream = json.RawMessage(payload)
	return f
}

// AsFailure extracts a *Failure from err. Unknown errors are wrapped as
// transport failures so callers always see a kind.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewTransport("%v", err)
}
