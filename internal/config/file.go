package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort string `toml:"server_port"`

	Gemini     ProviderFile   `toml:"gemini"`
	OpenAI     ProviderFile   `toml:"openai"`
	OpenRouter ProviderFile   `toml:"openrouter"`
	LocalQueue LocalQueueFile `toml:"localqueue"`
}

// ProviderFile holds per-provider file settings. API keys are usually set
// via env or the credential store; the file value is a fallback.
type ProviderFile struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// LocalQueueFile holds local-queue backend file settings.
type LocalQueueFile struct {
	BaseURL           string  `toml:"base_url"`
	TextTemplatePath  string  `toml:"text_template_path"`
	ImageTemplatePath string  `toml:"image_template_path"`
	Checkpoint        string  `toml:"checkpoint"`
	Lora              string  `toml:"lora"`
	Denoise           float64 `toml:"denoise"`
	PollIntervalSecs  int     `toml:"poll_interval_secs"`
	PollTimeoutSecs   int     `toml:"poll_timeout_secs"`
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// Ensure directory exists
	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# Pixway Configuration
# server_port = ":8080"

# [gemini]
# api_key = ""                      # or GEMINI_API_KEY
# model = "gemini-2.5-flash-image"

# [openai]
# api_key = ""                      # or OPENAI_API_KEY
# base_url = "https://api.openai.com"
# model = "gpt-image-1"

# [openrouter]
# api_key = ""                      # or OPENROUTER_API_KEY
# base_url = "https://openrouter.ai/api"
# model = "google/gemini-2.5-flash-image"

# [localqueue]
# base_url = "http://127.0.0.1:8188"
# text_template_path = "templates/text_to_image.json"
# image_template_path = "templates/image_to_image.json"
# checkpoint = "sd_xl_base_1.0.safetensors"
# lora = ""
# denoise = 0.75
# poll_interval_secs = 1
# poll_timeout_secs = 120
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
