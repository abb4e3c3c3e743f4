package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// --- Fakes ---

type fakeCredentialStore struct {
	creds     map[string]*models.Credential
	createErr error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{creds: make(map[string]*models.Credential)}
}

func (f *fakeCredentialStore) Create(_ context.Context, _ string, c *models.Credential) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creds[c.ID] = c
	return nil
}

func (f *fakeCredentialStore) Get(_ context.Context, _, id string) (*models.Credential, error) {
	c, ok := f.creds[id]
	if !ok {
		return nil, errs.NewNotFoundError("credential not found")
	}
	cc := *c
	return &cc, nil
}

func (f *fakeCredentialStore) List(_ context.Context, _ string) ([]*models.Credential, error) {
	out := make([]*models.Credential, 0, len(f.creds))
	for _, c := range f.creds {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCredentialStore) Delete(_ context.Context, _, id string) error {
	delete(f.creds, id)
	return nil
}

// fakeCipher reverses the string, which is enough to prove both directions
// ran.
type fakeCipher struct{}

func (fakeCipher) Encrypt(_ context.Context, plaintext string) (string, error) {
	return reverse(plaintext), nil
}

func (fakeCipher) Decrypt(_ context.Context, ciphertext string) (string, error) {
	return reverse(ciphertext), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// --- Tests ---

func TestCreateCredentialEncryptsAtRest(t *testing.T) {
	store := newFakeCredentialStore()
	svc := NewCredentialService(store, fakeCipher{}, nil)

	sum, err := svc.Create(context.Background(), "u1", dto.CreateCredentialRequest{
		Label:    "my finnhub key",
		Provider: models.ProviderFinnhub,
		Secret:   "fh-live-abc123",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored := store.creds[sum.ID]
	if stored.Secret == "fh-live-abc123" {
		t.Error("secret stored in plaintext")
	}
	if stored.Secret != reverse("fh-live-abc123") {
		t.Errorf("stored secret = %q, want ciphertext", stored.Secret)
	}
	if sum.SecretHint != "****c123" {
		t.Errorf("SecretHint = %q", sum.SecretHint)
	}
}

func TestCreateCredentialValidation(t *testing.T) {
	svc := NewCredentialService(newFakeCredentialStore(), fakeCipher{}, nil)
	ctx := context.Background()

	cases := []dto.CreateCredentialRequest{
		{Provider: models.ProviderFinnhub, Secret: "x"},
		{Label: "a", Provider: "mystery", Secret: "x"},
		{Label: "a", Provider: models.ProviderFinnhub},
	}
	for _, req := range cases {
		_, err := svc.Create(ctx, "u1", req)
		var verr *errs.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Create(%+v) = %v, want ValidationError", req, err)
		}
	}
}

func TestListRedactsSecrets(t *testing.T) {
	store := newFakeCredentialStore()
	svc := NewCredentialService(store, fakeCipher{}, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", dto.CreateCredentialRequest{
		Label: "key", Provider: models.ProviderAlphaVantage, Secret: "topsecret999",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sums, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sums) != 1 {
		t.Fatalf("len = %d", len(sums))
	}
	if strings.Contains(sums[0].SecretHint, "topsecret") {
		t.Errorf("hint leaks the secret: %q", sums[0].SecretHint)
	}
	if sums[0].SecretHint != "****t999" {
		t.Errorf("SecretHint = %q", sums[0].SecretHint)
	}
}

func TestResolveDecrypts(t *testing.T) {
	store := newFakeCredentialStore()
	svc := NewCredentialService(store, fakeCipher{}, nil)
	ctx := context.Background()

	sum, _ := svc.Create(ctx, "u1", dto.CreateCredentialRequest{
		Label: "key", Provider: models.ProviderFinnhub, Secret: "tok123",
	})

	c, err := svc.Resolve(ctx, "u1", sum.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Secret != "tok123" {
		t.Errorf("Secret = %q, want plaintext", c.Secret)
	}
}

func TestResolveMissingCredential(t *testing.T) {
	svc := NewCredentialService(newFakeCredentialStore(), fakeCipher{}, nil)

	_, err := svc.Resolve(context.Background(), "u1", "nope")
	var cerr *errs.CredentialNotFoundError
	if !errors.As(err, &cerr) {
		t.Fatalf("Resolve = %v, want CredentialNotFoundError", err)
	}
}

func TestResolveEnvFallback(t *testing.T) {
	store := newFakeCredentialStore()
	store.creds["c1"] = &models.Credential{
		ID: "c1", Label: "env key", Provider: models.ProviderFinnhub,
	}
	svc := NewCredentialService(store, fakeCipher{}, nil)

	t.Setenv("FINNHUB_API_KEY", "from-env")
	c, err := svc.Resolve(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Secret != "from-env" {
		t.Errorf("Secret = %q, want env fallback", c.Secret)
	}

	t.Setenv("FINNHUB_API_KEY", "")
	_, err = svc.Resolve(context.Background(), "u1", "c1")
	var cerr *errs.CredentialNotFoundError
	if !errors.As(err, &cerr) {
		t.Errorf("Resolve with no secret anywhere = %v, want CredentialNotFoundError", err)
	}
}

func TestMetadataStripsSecrets(t *testing.T) {
	store := newFakeCredentialStore()
	store.creds["c1"] = &models.Credential{
		ID: "c1", Provider: models.ProviderFinnhub, Secret: "ciphertext",
	}
	svc := NewCredentialService(store, fakeCipher{}, nil)

	creds, err := svc.Metadata(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(creds) != 1 || creds[0].Secret != "" {
		t.Errorf("Metadata = %+v, want secrets stripped", creds)
	}
}
