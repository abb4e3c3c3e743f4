package models

import (
	"strings"
	"time"
)

// Provider identifies which external data source a credential belongs to.
type Provider string

const (
	ProviderAlphaVantage  Provider = "alphavantage"
	ProviderFinnhub       Provider = "finnhub"
	ProviderRegionalStock Provider = "regionalstock"
	ProviderCustom        Provider = "custom"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderAlphaVantage, ProviderFinnhub, ProviderRegionalStock, ProviderCustom:
		return true
	}
	return false
}

// EnvKey is the conventional environment variable consulted when a credential
// record carries no stored secret, e.g. FINNHUB_API_KEY.
func (p Provider) EnvKey() string {
	return strings.ToUpper(string(p)) + "_API_KEY"
}

// Credential is a labeled provider API secret stored in Firestore.
// The Secret field holds ciphertext at rest (or nothing when the secret
// lives in Secret Manager); it is never serialized to clients.
type Credential struct {
	ID       string   `firestore:"id" json:"id"`
	Label    string   `firestore:"label" json:"label"`
	Provider Provider `firestore:"provider" json:"provider"`
	Secret   string   `firestore:"secret,omitempty" json:"-"`
	// SecretHint is the masked tail of the secret, computed once at
	// creation so listings never touch the ciphertext.
	SecretHint string    `firestore:"secretHint,omitempty" json:"-"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
}
