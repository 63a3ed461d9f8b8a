package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/types"
)

// fakeStore implements storage.Storage with an in-memory credential map.
type fakeStore struct {
	creds map[string]string
	gets  int
}

func (f *fakeStore) UpsertCredential(cred *storage.Credential) error { return nil }

func (f *fakeStore) GetCredential(provider string) (*storage.Credential, error) {
	f.gets++
	key, ok := f.creds[provider]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Credential{Provider: provider, APIKey: key}, nil
}

func (f *fakeStore) ListCredentials() ([]*storage.CredentialPreview, error) { return nil, nil }
func (f *fakeStore) DeleteCredential(provider string) error                 { return nil }
func (f *fakeStore) LogGeneration(log *storage.GenerationLog) error         { return nil }
func (f *fakeStore) GetGenerationLogs(filter storage.LogFilter) ([]*storage.GenerationLog, error) {
	return nil, nil
}
func (f *fakeStore) Close() error { return nil }

func TestCredentialChain_StaticWins(t *testing.T) {
	store := &fakeStore{creds: map[string]string{"gemini": "store-key"}}
	chain := NewCredentialChain(map[types.Provider]string{types.ProviderGemini: "env-key"}, store, time.Minute)

	key, err := chain.APIKey(types.ProviderGemini)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-key" {
		t.Errorf("expected env key to win, got %q", key)
	}
	if store.gets != 0 {
		t.Errorf("expected no store lookup, got %d", store.gets)
	}
}

func TestCredentialChain_StoreFallbackAndCache(t *testing.T) {
	store := &fakeStore{creds: map[string]string{"openai": "store-key"}}
	chain := NewCredentialChain(nil, store, time.Minute)

	for i := 0; i < 3; i++ {
		key, err := chain.APIKey(types.ProviderOpenAI)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "store-key" {
			t.Errorf("expected store key, got %q", key)
		}
	}
	if store.gets != 1 {
		t.Errorf("expected a single store lookup (cached afterwards), got %d", store.gets)
	}
}

func TestCredentialChain_Invalidate(t *testing.T) {
	store := &fakeStore{creds: map[string]string{"openai": "store-key"}}
	chain := NewCredentialChain(nil, store, time.Minute)

	if _, err := chain.APIKey(types.ProviderOpenAI); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chain.Invalidate(types.ProviderOpenAI)
	if _, err := chain.APIKey(types.ProviderOpenAI); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gets != 2 {
		t.Errorf("expected lookup after invalidation, got %d lookups", store.gets)
	}
}

func TestCredentialChain_Missing(t *testing.T) {
	chain := NewCredentialChain(nil, &fakeStore{creds: map[string]string{}}, time.Minute)

	_, err := chain.APIKey(types.ProviderOpenRouter)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestCredentialChain_NilStore(t *testing.T) {
	chain := NewCredentialChain(nil, nil, time.Minute)

	_, err := chain.APIKey(types.ProviderGemini)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
