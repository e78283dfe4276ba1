package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/medvault/internal/common"
	"golang.org/x/crypto/hkdf"
)

// ApplicationSalt is mixed into every key derivation. Changing it makes every
// previously stored blob undecryptable.
const ApplicationSalt = "medvault.records.v1:6d2b1f0e-ae5a-4c55-9d0e-1b7f3c8e2a41"

const fingerprintLabel = "medvault key fingerprint"

// DerivedKey is the hex encoding of a 256-bit key. It is never persisted;
// callers recompute it from the user identifier whenever they need it.
type DerivedKey string

// KeyDeriver turns a user identifier into a DerivedKey.
type KeyDeriver interface {
	DeriveKey(userID string) (DerivedKey, error)
}

// SHA256Deriver derives keys as SHA-256(userID || Salt). It holds no state
// besides the salt, so one value can be shared by any number of goroutines.
type SHA256Deriver struct {
	Salt string
}

// NewKeyDeriver returns the deriver used by the application.
func NewKeyDeriver() *SHA256Deriver {
	return &SHA256Deriver{Salt: ApplicationSalt}
}

// DeriveKey is a pure function of userID and d.Salt. An empty identifier
// fails with common.ErrInvalidIdentifier.
func (d *SHA256Deriver) DeriveKey(userID string) (DerivedKey, error) {
	if userID == "" {
		return "", common.ErrInvalidIdentifier
	}
	sum := sha256.Sum256([]byte(userID + d.Salt))
	return DerivedKey(hex.EncodeToString(sum[:])), nil
}

// DeriveKey derives a key with the application salt.
func DeriveKey(userID string) (DerivedKey, error) {
	return NewKeyDeriver().DeriveKey(userID)
}

// Bytes decodes the key material into the 32 raw bytes the cipher consumes.
// The caller owns the returned slice and should wipe it when done.
func (k DerivedKey) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(string(k))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(b) != KeySize {
		common.WipeByteArray(b)
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(b))
	}
	return b, nil
}

// Fingerprint returns a short identifier of the key that is safe to store in
// record metadata. It is an HKDF expansion of the key, so it reveals nothing
// about the key itself.
func (k DerivedKey) Fingerprint() string {
	raw, err := k.Bytes()
	if err != nil {
		return ""
	}
	defer common.WipeByteArray(raw)

	out := make([]byte, 8)
	r := hkdf.New(sha256.New, raw, nil, []byte(fingerprintLabel))
	if _, err := io.ReadFull(r, out); err != nil {
		return ""
	}
	return hex.EncodeToString(out)
}

// String keeps key material out of logs and error messages.
func (k DerivedKey) String() string {
	return "DerivedKey(" + k.Fingerprint() + ")"
}
