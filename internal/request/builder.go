// Package request finalizes widget endpoint URLs for their provider's
// authentication convention. Build is a pure transform; it never performs
// network I/O and never fails outright.
package request

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// Query parameter names that look like API keys. The regional provider
// authenticates via header, so these must not survive in its URLs where
// they would leak into logs.
var keyParams = []string{"apikey", "api_key", "key"}

var keyParamPattern = regexp.MustCompile(`[?&](?:apikey|api_key|key)=[^&]*`)

// Build returns the finalized URL and header set for an endpoint and an
// optional credential whose Secret is already plaintext. Behavior is
// table-driven by provider:
//
//   - regionalstock: key-looking query parameters are stripped and the
//     secret moves to the X-Api-Key header.
//   - alphavantage / finnhub: the secret is appended as the provider's
//     named query parameter, only if not already present, so Build is
//     idempotent under retries.
//   - custom or no credential: the URL passes through unchanged.
//
// The secret is never present in both header and query string.
func Build(endpoint string, cred *models.Credential) (string, http.Header) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	if cred == nil {
		return endpoint, headers
	}

	switch cred.Provider {
	case models.ProviderRegionalStock:
		if cred.Secret != "" {
			headers.Set("X-Api-Key", cred.Secret)
		}
		return stripKeyParams(endpoint), headers
	case models.ProviderAlphaVantage:
		return appendQueryParam(endpoint, "apikey", cred.Secret), headers
	case models.ProviderFinnhub:
		return appendQueryParam(endpoint, "token", cred.Secret), headers
	default:
		return endpoint, headers
	}
}

// appendQueryParam adds name=value to the URL's query string unless the
// parameter is already present. A URL that does not parse is returned
// unchanged rather than failing the widget.
func appendQueryParam(endpoint, name, value string) string {
	if value == "" {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has(name) {
		return endpoint
	}
	q.Set(name, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// stripKeyParams removes key-looking query parameters. On a URL that does
// not parse it falls back to regex stripping.
func stripKeyParams(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return keyParamPattern.ReplaceAllString(endpoint, "")
	}
	q := u.Query()
	changed := false
	for _, p := range keyParams {
		if q.Has(p) {
			q.Del(p)
			changed = true
		}
	}
	if !changed {
		return endpoint
	}
	u.RawQuery = q.Encode()
	return u.String()
}
