package main

import (
	"log"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/pixway/pixway/internal/app"
	"github.com/pixway/pixway/internal/config"
	"github.com/pixway/pixway/internal/provider"
	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/tokenizer"
	"github.com/pixway/pixway/internal/transport/http/handler"
	"github.com/pixway/pixway/internal/transport/http/handler/admin"
	"github.com/pixway/pixway/internal/transport/http/handler/generate"
	"github.com/pixway/pixway/internal/transport/http/handler/infra"
	"github.com/pixway/pixway/internal/types"
)

func main() {
	startTime := time.Now()
	logger := setupLogger()

	// Data directory and config file (created on first run)
	if err := config.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := config.EnsureConfigFile(); err != nil {
		log.Fatalf("Failed to create config file: %v", err)
	}
	cfg := config.Load()

	// Storage (usage logs + encrypted credentials)
	store, err := storage.NewSQLiteStorage(config.DBPath())
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Model catalog cache
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	// Credential resolution: env/config first, then the encrypted store
	creds := provider.NewCredentialChain(map[types.Provider]string{
		types.ProviderGemini:     cfg.Gemini.APIKey,
		types.ProviderOpenAI:     cfg.OpenAI.APIKey,
		types.ProviderOpenRouter: cfg.OpenRouter.APIKey,
	}, store, 5*time.Minute)

	// Adapters and dispatcher
	client := &http.Client{Timeout: 120 * time.Second}
	adapters := provider.NewAdapters(cfg, creds, client)
	dispatcher := provider.NewDispatcher(adapters, logger)

	// Handlers
	repo := handler.NewRepo(
		generate.New(dispatcher, store, tokenizer.New(), cache, creds),
		admin.New(store, startTime, creds),
		infra.New(startTime),
	)

	// Router and server
	router := app.NewRouter(repo, &app.RouterOptions{Logger: logger})
	server := app.NewServer(cfg, router)

	printStartupBanner(cfg)
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
