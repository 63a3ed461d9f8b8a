package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pixway/pixway/internal/storage/models"
)

// UpsertCredential stores or replaces the credential for a provider.
// One credential per provider; the API key is encrypted at rest.
func (s *Storage) UpsertCredential(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if cred.Provider == "" || cred.APIKey == "" {
		return ErrInvalidInput
	}

	if cred.ID == "" {
		cred.ID = generateID("cred")
	}
	if cred.Name == "" {
		cred.Name = cred.Provider
	}

	encryptedKey, err := s.encryptor.Encrypt(cred.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}

	now := time.Now().UTC()
	cred.UpdatedAt = now
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}

	_, err = s.db.Exec(`
		INSERT INTO credentials (id, provider, name, api_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			name = excluded.name,
			api_key = excluded.api_key,
			updated_at = excluded.updated_at
	`, cred.ID, cred.Provider, cred.Name, encryptedKey, cred.CreatedAt, cred.UpdatedAt)

	return err
}

// GetCredential retrieves the credential for a provider, decrypted.
func (s *Storage) GetCredential(provider string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var cred models.Credential
	var encryptedKey string

	err := s.db.QueryRow(`
		SELECT id, provider, name, api_key, created_at, updated_at
		FROM credentials WHERE provider = ?
	`, provider).Scan(&cred.ID, &cred.Provider, &cred.Name, &encryptedKey, &cred.CreatedAt, &cred.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	decryptedKey, err := s.encryptor.Decrypt(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}
	cred.APIKey = decryptedKey

	return &cred, nil
}

// ListCredentials returns previews of all stored credentials (keys masked).
func (s *Storage) ListCredentials() ([]*models.CredentialPreview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT id, provider, name, api_key, created_at, updated_at
		FROM credentials ORDER BY provider
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []*models.CredentialPreview
	for rows.Next() {
		var cred models.Credential
		var encryptedKey string
		if err := rows.Scan(&cred.ID, &cred.Provider, &cred.Name, &encryptedKey, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
			return nil, err
		}
		decryptedKey, err := s.encryptor.Decrypt(encryptedKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncryptionError, err)
		}
		cred.APIKey = decryptedKey
		previews = append(previews, cred.ToPreview())
	}
	return previews, rows.Err()
}

// DeleteCredential removes the credential for a provider.
func (s *Storage) DeleteCredential(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	result, err := s.db.Exec("DELETE FROM credentials WHERE provider = ?", provider)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
