// Package cryptox implements the client-side file encryption pipeline:
// deterministic per-user key derivation and the AES-256-GCM encryptor and
// decryptor used for every sensitive upload and view.
//
// # Ciphertext layout
//
// Every blob written to the object store has the form
//
//	version (1 byte) || nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// The version byte is bound to the ciphertext as additional authenticated
// data. A fresh random nonce is generated for each encryption, so encrypting
// the same file twice yields different blobs; nothing outside this package
// relies on ciphertext being deterministic.
//
// # Typical usage
//
//	key, _ := cryptox.DeriveKey(userID)
//	c := cryptox.NewCipher()
//	blob, _ := c.Encrypt(plaintext, key)
//	plain, _ := c.Decrypt(blob, key)
package cryptox
