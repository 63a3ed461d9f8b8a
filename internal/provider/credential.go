package provider

import (
	"errors"
	"sync"
	"time"

	"github.com/pixway/pixway/internal/storage"
	"github.com/pixway/pixway/internal/types"
)

// CredentialChain resolves API keys with env/config values taking priority
// over the encrypted credential store. Store lookups are cached with a TTL
// so a hot provider does not hit SQLite on every request.
type CredentialChain struct {
	static  map[types.Provider]string
	storage storage.Storage
	cache   map[types.Provider]cachedKey
	mu      sync.RWMutex
	ttl     time.Duration
}

type cachedKey struct {
	key       string
	expiresAt time.Time
}

// NewCredentialChain creates a chain over static (env/file) keys and an
// optional credential store. store may be nil.
func NewCredentialChain(static map[types.Provider]string, store storage.Storage, ttl time.Duration) *CredentialChain {
	return &CredentialChain{
		static:  static,
		storage: store,
		cache:   make(map[types.Provider]cachedKey),
		ttl:     ttl,
	}
}

// APIKey returns the key for a provider, or ErrNoAPIKey when none is
// configured anywhere.
func (c *CredentialChain) APIKey(provider types.Provider) (string, error) {
	if key := c.static[provider]; key != "" {
		return key, nil
	}

	if c.storage == nil {
		return "", ErrNoAPIKey
	}

	c.mu.RLock()
	if cached, ok := c.cache[provider]; ok && time.Now().Before(cached.expiresAt) {
		c.mu.RUnlock()
		return cached.key, nil
	}
	c.mu.RUnlock()

	cred, err := c.storage.GetCredential(string(provider))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoAPIKey
		}
		return "", err
	}

	c.mu.Lock()
	c.cache[provider] = cachedKey{key: cred.APIKey, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return cred.APIKey, nil
}

// Invalidate removes a cached key (call after credential update).
func (c *CredentialChain) Invalidate(provider types.Provider) {
	c.mu.Lock()
	delete(c.cache, provider)
	c.mu.Unlock()
}
