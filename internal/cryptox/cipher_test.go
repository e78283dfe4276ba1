package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T, userID string) DerivedKey {
	t.Helper()
	key, err := DeriveKey(userID)
	require.NoError(t, err)
	return key
}

func TestCipher_RoundTrip(t *testing.T) {
	c := NewCipher()

	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 33, 10_000, 65_537} {
		for _, user := range []string{"u-42", "another-user", "ü-ñ"} {
			plaintext := bytes.Repeat([]byte{0xA5}, size)
			for i := range plaintext {
				plaintext[i] ^= byte(i)
			}
			key := mustKey(t, user)

			blob, err := c.Encrypt(plaintext, key)
			require.NoError(t, err)
			assert.Len(t, blob, headerSize+size+tagSize)

			got, err := c.Decrypt(blob, key)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, plaintext, got, "size %d user %q", size, user)
		}
	}
}

func TestCipher_NilPlaintextIsEmpty(t *testing.T) {
	c := NewCipher()
	key := mustKey(t, "u-42")

	blob, err := c.Encrypt(nil, key)
	require.NoError(t, err)

	got, err := c.Decrypt(blob, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)
}

func TestCipher_FreshNoncePerCall(t *testing.T) {
	c := NewCipher()
	key := mustKey(t, "u-42")
	p := []byte("same input")

	a, err := c.Encrypt(p, key)
	require.NoError(t, err)
	b, err := c.Encrypt(p, key)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a[1:headerSize], b[1:headerSize])
}

func TestCipher_CiphertextDiffersFromPlaintext(t *testing.T) {
	c := NewCipher()
	p := []byte{0x01, 0x02, 0x03}

	blob, err := c.Encrypt(p, mustKey(t, "u-42"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(blob, p))
}

func TestCipher_CrossUserFails(t *testing.T) {
	c := NewCipher()
	p := []byte("%PDF-1.7 lab results")

	blob, err := c.Encrypt(p, mustKey(t, "u1"))
	require.NoError(t, err)

	got, err := c.Decrypt(blob, mustKey(t, "u2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDecryptionFailure))
	assert.Nil(t, got)
}

func TestCipher_Corruption(t *testing.T) {
	c := NewCipher()
	key := mustKey(t, "u-42")

	blob, err := c.Encrypt([]byte{0x01, 0x02, 0x03}, key)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"truncated by one byte", func(b []byte) []byte { return b[:len(b)-1] }},
		{"header only", func(b []byte) []byte { return b[:headerSize] }},
		{"empty", func(b []byte) []byte { return []byte{} }},
		{"flipped tag bit", func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b }},
		{"flipped body bit", func(b []byte) []byte { b[headerSize] ^= 0x80; return b }},
		{"flipped nonce bit", func(b []byte) []byte { b[1] ^= 0x01; return b }},
		{"unknown version", func(b []byte) []byte { b[0] = 9; return b }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := tt.mutate(append([]byte(nil), blob...))
			got, err := c.Decrypt(mutated, key)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t,
				errors.Is(err, common.ErrDecryptionFailure) || errors.Is(err, common.ErrMalformedEncoding),
				"unexpected error: %v", err)
		})
	}
}

func TestCipher_InvalidKey(t *testing.T) {
	c := NewCipher()

	_, err := c.Encrypt([]byte("x"), DerivedKey("not-hex"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEncryptionFailure))

	blob, err := c.Encrypt([]byte("x"), mustKey(t, "u"))
	require.NoError(t, err)
	_, err = c.Decrypt(blob, DerivedKey("not-hex"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDecryptionFailure))
}

func TestOpen_MalformedText(t *testing.T) {
	_, err := open("***", mustKey(t, "u"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedEncoding))
}

func TestCipher_Method(t *testing.T) {
	assert.Equal(t, "aes-256-gcm", NewCipher().Method())
}
