package types

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureError(t *testing.T) {
	f := NewTransport("upstream said no").WithStatus(503)
	assert.Equal(t, "transport: upstream said no (upstream status 503)", f.Error())

	v := NewValidation("prompt must not be empty")
	assert.Equal(t, "validation: prompt must not be empty", v.Error())
}

func TestAsFailure(t *testing.T) {
	f := NewContent("refused")
	assert.Same(t, f, AsFailure(f))

	// Wrapped failures are still recovered.
	wrapped := fmt.Errorf("dispatch: %w", f)
	assert.Same(t, f, AsFailure(wrapped))

	// Unknown errors become transport failures.
	plain := AsFailure(errors.New("connection reset"))
	assert.Equal(t, FailureTransport, plain.Kind)
	assert.Equal(t, "connection reset", plain.Message)
}

func TestWriteFailureStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		failure    *Failure
		wantStatus int
		wantType   string
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest, ErrorTypeInvalidRequest},
		{"configuration", NewConfiguration("no key"), http.StatusInternalServerError, ErrorTypeConfiguration},
		{"content", NewContent("refused"), http.StatusBadGateway, ErrorTypeContent},
		{"timeout", NewTimeout("deadline"), http.StatusGatewayTimeout, ErrorTypeTimeout},
		{"transport with upstream status", NewTransport("nope").WithStatus(429), 429, ErrorTypeUpstream},
		{"transport without status", NewTransport("nope"), http.StatusBadGateway, ErrorTypeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteFailure(rec, tt.failure)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantType)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
