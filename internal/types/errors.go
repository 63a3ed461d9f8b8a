package types

import (
	"encoding/json"
	"net/http"
)

// APIError represents the JSON error envelope returned to HTTP callers.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Detail  json.RawMessage `json:"detail,omitempty"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeConfiguration  = "configuration_error"
	ErrorTypeUpstream       = "upstream_error"
	ErrorTypeContent        = "content_error"
	ErrorTypeTimeout        = "timeout_error"
	ErrorTypeServer         = "server_error"
)

// NewAPIError creates a new API error.
func NewAPIError(message, errType string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	}
}

// WriteError writes an API error to the response writer.
func WriteError(w http.ResponseWriter, statusCode int, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(err)
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, ErrorTypeInvalidRequest)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(message, ErrorTypeServer)
}

// WriteFailure maps a core Failure onto the HTTP error envelope.
func WriteFailure(w http.ResponseWriter, f *Failure) {
	var (
		status  int
		errType string
	)
	switch f.Kind {
	case FailureValidation:
		status, errType = http.StatusBadRequest, ErrorTypeInvalidRequest
	case FailureConfiguration:
		status, errType = http.StatusInternalServerError, ErrorTypeConfiguration
	case FailureContent:
		status, errType = http.StatusBadGateway, ErrorTypeContent
	case FailureTimeout:
		status, errType = http.StatusGatewayTimeout, ErrorTypeTimeout
	case FailureTransport:
		status, errType = http.StatusBadGateway, ErrorTypeUpstream
		if f.HTTPStatus >= 400 {
			status = f.HTTPStatus
		}
	default:
		status, errType = http.StatusInternalServerError, ErrorTypeServer
	}

	apiErr := NewAPIError(f.Message, errType)
	apiErr.Error.Detail = f.Upstream
	WriteError(w, status, apiErr)
}
