package provider

import (
	"net/http"

	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/provider/gemini"
	"github.com/pixway/pixway/internal/provider/localqueue"
	"github.com/pixway/pixway/internal/provider/openai"
	"github.com/pixway/pixway/internal/provider/openrouter"
	"github.com/pixway/pixway/internal/types"
)

// NewAdapters returns a map of all available generation adapters.
// The map key is the provider identifier carried by incoming requests.
// A single http.Client is shared across the hosted providers; the local
// queue backend gets its own since its timeout profile differs.
func NewAdapters(cfg *config.Config, creds types.Credentials, client *http.Client) map[types.Provider]types.Adapter {
	return map[types.Provider]types.Adapter{
		types.ProviderGemini:     gemini.New(cfg.Gemini, creds, client),
		types.ProviderOpenAI:     openai.New(cfg.OpenAI, creds, client),
		types.ProviderOpenRouter: openrouter.New(cfg.OpenRouter, creds, client),
		types.ProviderLocalQueue: localqueue.New(cfg.LocalQueue, nil),
	}
}
