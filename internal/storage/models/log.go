package models

import "time"

// GenerationLog represents one logged generation request. Only request
// metadata is stored; generated image bytes are never persisted.
type GenerationLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Mode         string    `json:"mode"` // text or image
	PromptTokens int       `json:"prompt_tokens"`
	StatusCode   int       `json:"status_code"`
	FailureKind  string    `json:"failure_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogFilter contains parameters for filtering generation logs.
type LogFilter struct {
	Provider    string
	Model       string
	FailureKind string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}
