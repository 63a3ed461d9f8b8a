// Package version holds the application version string.
package version

// Version is the current pixway release. Overridden at build time via
// -ldflags "-X github.com/pixway/pixway/internal/version.Version=...".
var Version = "0.3.0"
