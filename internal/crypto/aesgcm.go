package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

// aesgcm is the non-GCP cipher: a 32-byte AES-256-GCM key supplied as hex
// through LOCALKEYHEX. The nonce is prepended to the sealed ciphertext and
// the whole blob is base64 encoded, matching the storage format NewKMS
// produces.
type aesgcm struct {
	key []byte
}

func NewAESGCM(keyHex string) (Cipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != 32 {
		return nil, errs.NewEncryptionError("local key must be 32 bytes of hex")
	}
	return &aesgcm{key: key}, nil
}

func (a *aesgcm) Encrypt(_ context.Context, plaintext string) (string, error) {
	gcm, err := a.gcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errs.NewEncryptionError("generate nonce: " + err.Error())
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (a *aesgcm) Decrypt(_ context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("decrypt: ciphertext is not base64")
	}
	gcm, err := a.gcm()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errs.NewEncryptionError("decrypt: ciphertext too short")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errs.NewEncryptionError("decrypt: " + err.Error())
	}
	return string(plain), nil
}

func (a *aesgcm) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(a.key)
	if err != nil {
		return nil, errs.NewEncryptionError("create cipher: " + err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.NewEncryptionError("create gcm: " + err.Error())
	}
	return gcm, nil
}
