// Package crypto encrypts credential secrets at rest. Two interchangeable
// ciphers exist: Cloud KMS for deployed environments and a local AES-GCM
// key for development and tests.
package crypto

import "context"

// Cipher transforms a secret between plaintext and its stored form.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}
