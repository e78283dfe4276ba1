// Package models defines the metadata persisted about stored files.
package models

import "time"

// EncryptionDescriptor tells a viewer whether a blob must be decrypted and
// with which strategy. It never contains key material.
type EncryptionDescriptor struct {
	// Encrypted is false for content types outside the sensitive set.
	Encrypted bool `json:"encrypted"`
	// Method names the cipher, e.g. "aes-256-gcm". Empty when not encrypted.
	Method string `json:"method,omitempty"`
	// KeyFingerprint identifies the derived key without revealing it.
	KeyFingerprint string `json:"key_fingerprint,omitempty"`
}

// FileRecordReference is the document-database row that points at a blob in
// the object store.
type FileRecordReference struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Title       string               `json:"title"`
	MimeType    string               `json:"mime_type"`
	StoragePath string               `json:"storage_path"`
	Locator     string               `json:"locator"`
	Size        int64                `json:"size"`
	Encryption  EncryptionDescriptor `json:"encryption"`
	Tags        []string             `json:"tags,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}
