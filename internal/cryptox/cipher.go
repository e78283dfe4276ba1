package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/codec"
	"github.com/dmitrijs2005/medvault/internal/common"
)

const (
	// MethodAESGCM names the encryption method in record descriptors.
	MethodAESGCM = "aes-256-gcm"

	// KeySize is the raw AES-256 key length.
	KeySize = 32

	formatVersion byte = 1
	nonceSize          = 12
	tagSize            = 16
	headerSize         = 1 + nonceSize
)

var errShortCiphertext = errors.New("ciphertext too short")

// Encryptor seals plaintext file bytes into an opaque blob ready for upload.
type Encryptor interface {
	Encrypt(plaintext []byte, key DerivedKey) ([]byte, error)
}

// Decryptor reverses Encryptor.
type Decryptor interface {
	Decrypt(ciphertext []byte, key DerivedKey) ([]byte, error)
}

// Cipher implements both Encryptor and Decryptor with AES-256-GCM. It is
// stateless; a single value may be shared by concurrent calls.
type Cipher struct{}

// NewCipher returns the application cipher.
func NewCipher() *Cipher {
	return &Cipher{}
}

// Method reports the descriptor name of the cipher.
func (c *Cipher) Method() string {
	return MethodAESGCM
}

// Encrypt seals plaintext under key. The sealed blob is produced in its
// text-safe form first and converted to raw bytes for upload. Any failure
// is reported as common.ErrEncryptionFailure and no output is returned.
func (c *Cipher) Encrypt(plaintext []byte, key DerivedKey) ([]byte, error) {
	sealed, err := seal(plaintext, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEncryptionFailure, err)
	}

	blob, err := codec.Base64ToBytes(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEncryptionFailure, err)
	}

	return blob, nil
}

// Decrypt opens a blob produced by Encrypt. A wrong key, a truncated blob or
// any tampering yields common.ErrDecryptionFailure; the output length always
// equals the original plaintext length.
func (c *Cipher) Decrypt(ciphertext []byte, key DerivedKey) ([]byte, error) {
	return open(codec.BytesToBase64(ciphertext), key)
}

// seal returns base64(version || nonce || gcm.Seal(plaintext)).
func seal(plaintext []byte, key DerivedKey) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce, err := common.RandomBytes(nonceSize)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	aad := []byte{formatVersion}
	blob := make([]byte, 0, headerSize+len(plaintext)+tagSize)
	blob = append(blob, aad...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, plaintext, aad)

	return codec.BytesToBase64(blob), nil
}

// open is the inverse of seal. Encoding problems surface as
// common.ErrMalformedEncoding, everything else as common.ErrDecryptionFailure.
func open(sealed string, key DerivedKey) ([]byte, error) {
	blob, err := codec.Base64ToBytes(sealed)
	if err != nil {
		return nil, err
	}

	if len(blob) < headerSize+tagSize {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailure, errShortCiphertext)
	}
	if blob[0] != formatVersion {
		return nil, fmt.Errorf("%w: unknown format version %d", common.ErrDecryptionFailure, blob[0])
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailure, err)
	}

	aad, nonce := blob[:1], blob[1:headerSize]
	plaintext, err := aead.Open(nil, nonce, blob[headerSize:], aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryptionFailure, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}

func newAEAD(key DerivedKey) (cipher.AEAD, error) {
	raw, err := key.Bytes()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(raw)

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return aead, nil
}
