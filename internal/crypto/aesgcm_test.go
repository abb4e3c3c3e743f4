package crypto

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

const testKeyHex = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestAESGCMRoundTrip(t *testing.T) {
	c, err := NewAESGCM(testKeyHex)
	if err != nil {
		t.Fatalf("NewAESGCM: %v", err)
	}
	ctx := context.Background()

	ct, err := c.Encrypt(ctx, "fh-live-abc123")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ct == "fh-live-abc123" {
		t.Error("ciphertext equals plaintext")
	}
	got, err := c.Decrypt(ctx, ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != "fh-live-abc123" {
		t.Errorf("Decrypt = %q", got)
	}
}

func TestAESGCMFreshNoncePerCall(t *testing.T) {
	c, _ := NewAESGCM(testKeyHex)
	ctx := context.Background()

	a, _ := c.Encrypt(ctx, "same secret")
	b, _ := c.Encrypt(ctx, "same secret")
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestAESGCMRejectsBadKey(t *testing.T) {
	for _, keyHex := range []string{"", "zz", "abcd", strings.Repeat("ab", 16)} {
		if _, err := NewAESGCM(keyHex); err == nil {
			t.Errorf("NewAESGCM(%q) accepted an invalid key", keyHex)
		}
	}
}

func TestAESGCMRejectsTampering(t *testing.T) {
	c, _ := NewAESGCM(testKeyHex)
	ctx := context.Background()

	ct, _ := c.Encrypt(ctx, "secret")
	_, err := c.Decrypt(ctx, "AAAA"+ct[4:])
	var eerr *errs.EncryptionError
	if !errors.As(err, &eerr) {
		t.Fatalf("Decrypt of tampered ciphertext = %v, want EncryptionError", err)
	}

	if _, err := c.Decrypt(ctx, "not base64 at all!"); err == nil {
		t.Error("Decrypt accepted non-base64 input")
	}
}
