// Package common defines shared sentinel errors and small helpers used across
// the medvault packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Key derivation errors.
	ErrInvalidIdentifier = errors.New("invalid user identifier")

	// Binary/text boundary errors.
	ErrMalformedEncoding = errors.New("malformed encoding")

	// Cipher errors. Neither is ever returned together with partial output.
	ErrEncryptionFailure = errors.New("could not prepare file for upload")
	ErrDecryptionFailure = errors.New("failed to decrypt file")

	// Object store errors.
	ErrUploadFailure   = errors.New("upload failed")
	ErrDownloadFailure = errors.New("download failed")

	// Materialization errors.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// Auth errors (invalid, expired or malformed identity token).
	ErrInvalidToken = errors.New("invalid token")
)
