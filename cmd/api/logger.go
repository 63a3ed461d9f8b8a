package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/version"
)

func setupLogger() *slog.Logger {
	// Use sensible defaults: info level, text format
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Pixway %s - Image Generation Gateway\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "API:    http://localhost%s/v1/images/generations\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Admin:  http://localhost%s/api/admin/\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Data:   %s\n", config.DataDir())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
