package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewWithKey(testKey(0x41))
	require.NoError(t, err)

	plaintexts := []string{"sk-or-v1-abcdef", "", "multi\nline\nsecret", "unicode ✓ value"}
	for _, plaintext := range plaintexts {
		ciphertext, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := enc.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesUniqueNonces(t *testing.T) {
	enc, err := NewWithKey(testKey(0x41))
	require.NoError(t, err)

	a, err := enc.Encrypt("same-value")
	require.NoError(t, err)
	b, err := enc.Encrypt("same-value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each encryption uses a fresh nonce")
}

func TestDecryptWithWrongKey(t *testing.T) {
	enc1, err := NewWithKey(testKey(0x41))
	require.NoError(t, err)
	enc2, err := NewWithKey(testKey(0x42))
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt("secret")
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestDecryptMalformedInput(t *testing.T) {
	enc, err := NewWithKey(testKey(0x41))
	require.NoError(t, err)

	_, err = enc.Decrypt("not-base64 %%%")
	assert.Error(t, err)

	_, err = enc.Decrypt("dG9vc2hvcnQ=")
	assert.Error(t, err)
}

func TestNewWithKeyRejectsBadLength(t *testing.T) {
	_, err := NewWithKey([]byte("short"))
	assert.Error(t, err)
}

func TestNewUsesEnvKeyMaterial(t *testing.T) {
	t.Setenv("PIXWAY_ENCRYPTION_KEY", "operator-supplied-material")

	enc, err := New()
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("value")
	require.NoError(t, err)

	// The same key material derives the same key.
	enc2, err := New()
	require.NoError(t, err)
	decrypted, err := enc2.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "value", decrypted)
}
