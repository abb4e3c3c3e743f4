package dto

import (
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

type CreateCredentialRequest struct {
	Label    string          `json:"label"`
	Provider models.Provider `json:"provider"`
	Secret   string          `json:"secret"`
}

// CredentialSummary is the redacted listing shape: the plaintext secret is
// never returned, only a masked tail for recognition.
type CredentialSummary struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Provider   models.Provider `json:"provider"`
	SecretHint string          `json:"secretHint"`
	CreatedAt  time.Time       `json:"createdAt"`
}
