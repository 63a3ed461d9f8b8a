// Package provider wires the adapter set together: credential resolution,
// the adapter registry, and the dispatcher that routes normalized requests
// to one upstream backend. The adapter contract itself lives in
// internal/types so the per-provider subpackages can implement it without
// importing this package.
package provider

import "errors"

// ErrNoAPIKey is returned when no API key is configured for a provider.
var ErrNoAPIKey = errors.New("no API key configured")
