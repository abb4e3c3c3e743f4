package services

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// credentialStore is the Firestore storage interface for credential records.
type credentialStore interface {
	Create(ctx context.Context, uid string, c *models.Credential) error
	Get(ctx context.Context, uid, id string) (*models.Credential, error)
	List(ctx context.Context, uid string) ([]*models.Credential, error)
	Delete(ctx context.Context, uid, id string) error
}

// secretCipher encrypts secrets for storage inside the credential document.
type secretCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// secretVault is the Secret Manager alternative: the secret lives outside
// Firestore entirely and the credential document stores no ciphertext.
type secretVault interface {
	Store(ctx context.Context, uid, credentialID, secret string) error
	Get(ctx context.Context, uid, credentialID string) (string, error)
	Delete(ctx context.Context, uid, credentialID string) error
}

type credentialService struct {
	store  credentialStore
	cipher secretCipher
	vault  secretVault // nil unless SECRETBACKEND=secretmanager
}

func NewCredentialService(store credentialStore, cipher secretCipher, vault secretVault) *credentialService {
	return &credentialService{store: store, cipher: cipher, vault: vault}
}

func (s *credentialService) Create(ctx context.Context, uid string, req dto.CreateCredentialRequest) (dto.CredentialSummary, error) {
	if strings.TrimSpace(req.Label) == "" {
		return dto.CredentialSummary{}, errs.NewValidationError("label is required")
	}
	if !req.Provider.Valid() {
		return dto.CredentialSummary{}, errs.NewValidationError("unknown provider")
	}
	if req.Secret == "" {
		return dto.CredentialSummary{}, errs.NewValidationError("secret is required")
	}

	c := &models.Credential{
		ID:         uuid.New().String(),
		Label:      req.Label,
		Provider:   req.Provider,
		SecretHint: maskSecret(req.Secret),
	}
	if s.vault != nil {
		if err := s.vault.Store(ctx, uid, c.ID, req.Secret); err != nil {
			return dto.CredentialSummary{}, err
		}
	} else {
		ct, err := s.cipher.Encrypt(ctx, req.Secret)
		if err != nil {
			return dto.CredentialSummary{}, err
		}
		c.Secret = ct
	}
	if err := s.store.Create(ctx, uid, c); err != nil {
		return dto.CredentialSummary{}, err
	}
	return summarize(c), nil
}

// List returns redacted summaries. Plaintext secrets never leave Resolve.
func (s *credentialService) List(ctx context.Context, uid string) ([]dto.CredentialSummary, error) {
	creds, err := s.store.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CredentialSummary, 0, len(creds))
	for _, c := range creds {
		out = append(out, summarize(c))
	}
	return out, nil
}

func (s *credentialService) Delete(ctx context.Context, uid, id string) error {
	if s.vault != nil {
		if err := s.vault.Delete(ctx, uid, id); err != nil {
			return err
		}
	}
	return s.store.Delete(ctx, uid, id)
}

// Metadata returns the raw credential records without secrets, for
// dispatch decisions that only need the provider field.
func (s *credentialService) Metadata(ctx context.Context, uid string) ([]models.Credential, error) {
	creds, err := s.store.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]models.Credential, 0, len(creds))
	for _, c := range creds {
		cc := *c
		cc.Secret = ""
		out = append(out, cc)
	}
	return out, nil
}

// Resolve returns the credential with its plaintext secret. A record whose
// stored secret is empty falls back to the provider's conventional
// environment variable, so development setups work without the vault.
func (s *credentialService) Resolve(ctx context.Context, uid, id string) (*models.Credential, error) {
	c, err := s.store.Get(ctx, uid, id)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return nil, errs.NewCredentialNotFoundError("credential not found")
		}
		return nil, err
	}
	if s.vault != nil {
		secret, err := s.vault.Get(ctx, uid, id)
		if err == nil && secret != "" {
			c.Secret = secret
			return c, nil
		}
	} else if c.Secret != "" {
		plain, err := s.cipher.Decrypt(ctx, c.Secret)
		if err != nil {
			return nil, err
		}
		c.Secret = plain
		return c, nil
	}
	if env := os.Getenv(c.Provider.EnvKey()); env != "" {
		c.Secret = env
		return c, nil
	}
	return nil, errs.NewCredentialNotFoundError("credential has no stored secret")
}

func summarize(c *models.Credential) dto.CredentialSummary {
	return dto.CredentialSummary{
		ID:         c.ID,
		Label:      c.Label,
		Provider:   c.Provider,
		SecretHint: c.SecretHint,
		CreatedAt:  c.CreatedAt,
	}
}

// maskSecret keeps the last four characters for recognition. Short secrets
// are fully masked.
func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
