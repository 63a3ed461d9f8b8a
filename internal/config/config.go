// Package config loads application configuration.
// Priority: Env vars → config.toml → defaults
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment and file.
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	LocalQueue LocalQueueConfig
}

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig configures the OpenAI adapter.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenRouterConfig configures the OpenRouter adapter.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LocalQueueConfig configures the local job-queue backend.
type LocalQueueConfig struct {
	BaseURL           string
	TextTemplatePath  string
	ImageTemplatePath string

	// Checkpoint and Lora are the default weight file names substituted
	// into workflow templates.
	Checkpoint string
	Lora       string
	Denoise    float64

	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	return &Config{
		ServerPort: getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8080"),
		Gemini: GeminiConfig{
			APIKey: getEnvOrFile("GEMINI_API_KEY", fileConfig.Gemini.APIKey, ""),
			Model:  getEnvOrFile("GEMINI_IMAGE_MODEL", fileConfig.Gemini.Model, "gemini-2.5-flash-image"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnvOrFile("OPENAI_API_KEY", fileConfig.OpenAI.APIKey, ""),
			BaseURL: getEnvOrFile("OPENAI_BASE_URL", fileConfig.OpenAI.BaseURL, "https://api.openai.com"),
			Model:   getEnvOrFile("OPENAI_IMAGE_MODEL", fileConfig.OpenAI.Model, "gpt-image-1"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnvOrFile("OPENROUTER_API_KEY", fileConfig.OpenRouter.APIKey, ""),
			BaseURL: getEnvOrFile("OPENROUTER_BASE_URL", fileConfig.OpenRouter.BaseURL, "https://openrouter.ai/api"),
			Model:   getEnvOrFile("OPENROUTER_IMAGE_MODEL", fileConfig.OpenRouter.Model, "google/gemini-2.5-flash-image"),
		},
		LocalQueue: LocalQueueConfig{
			BaseURL:           getEnvOrFile("LOCALQUEUE_BASE_URL", fileConfig.LocalQueue.BaseURL, "http://127.0.0.1:8188"),
			TextTemplatePath:  getEnvOrFile("LOCALQUEUE_TEXT_TEMPLATE", fileConfig.LocalQueue.TextTemplatePath, "templates/text_to_image.json"),
			ImageTemplatePath: getEnvOrFile("LOCALQUEUE_IMAGE_TEMPLATE", fileConfig.LocalQueue.ImageTemplatePath, "templates/image_to_image.json"),
			Checkpoint:        getEnvOrFile("LOCALQUEUE_CHECKPOINT", fileConfig.LocalQueue.Checkpoint, "sd_xl_base_1.0.safetensors"),
			Lora:              getEnvOrFile("LOCALQUEUE_LORA", fileConfig.LocalQueue.Lora, ""),
			Denoise:           getEnvFloatOrFile("LOCALQUEUE_DENOISE", fileConfig.LocalQueue.Denoise, 0.75),
			PollInterval:      getEnvDurationOrFile("LOCALQUEUE_POLL_INTERVAL_SECS", fileConfig.LocalQueue.PollIntervalSecs, 1*time.Second),
			PollTimeout:       getEnvDurationOrFile("LOCALQUEUE_POLL_TIMEOUT_SECS", fileConfig.LocalQueue.PollTimeoutSecs, 120*time.Second),
		},
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvFloatOrFile returns env float, file float, or default (in priority order)
func getEnvFloatOrFile(key string, fileValue, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	if fileValue != 0 {
		return fileValue
	}
	return defaultValue
}

// getEnvDurationOrFile returns a duration from whole seconds (env, file, default).
func getEnvDurationOrFile(key string, fileSecs int, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	if fileSecs > 0 {
		return time.Duration(fileSecs) * time.Second
	}
	return defaultValue
}
