// Package provider normalizes external data source response shapes into
// display-ready fields, and owns the single dispatch decision of which
// adapter renders a given widget.
package provider

import (
	"fmt"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

// Kind is the closed set of data sources a widget can dispatch to.
type Kind string

const (
	KindAlphaVantage  Kind = "alphavantage"
	KindFinnhub       Kind = "finnhub"
	KindRegionalStock Kind = "regionalstock"
	KindGeneric       Kind = "generic"
)

// Capability is one normalized view an adapter can extract from a response.
type Capability string

const (
	CapQuote      Capability = "quote"
	CapTimeSeries Capability = "timeSeries"
	CapTechnical  Capability = "technical"
	CapPeers      Capability = "peers"
	CapFinancials Capability = "financials"
	CapOwnership  Capability = "ownership"
	CapNews       Capability = "news"
	CapRisk       Capability = "risk"
	CapProfile    Capability = "profile"
)

// Adapter interprets one provider's JSON shape.
//
// Not every adapter implements every capability: Parse returns a
// NotSupportedError for the rest, and the widget renders a "not available"
// state instead of failing.
type Adapter interface {
	Kind() Kind
	Capabilities() []Capability
	// ErrorCheck inspects a 2xx body for the provider's in-band error
	// signaling (error message fields, rate-limit notices). A nil return
	// means the body is safe to parse.
	ErrorCheck(raw []byte) error
	// Identity derives a stable ticker/company identifier from the
	// configured endpoint URL. This is a convention, not a provider
	// contract; an unrecognized URL shape yields "".
	Identity(endpoint string) string
	// Parse extracts the named capability's normalized payload from raw.
	Parse(cap Capability, raw []byte) (any, error)
}

// ForKind returns the adapter owning a dispatch kind. Generic widgets are
// handled by the mapping extractor, not an Adapter.
func ForKind(k Kind) (Adapter, bool) {
	switch k {
	case KindAlphaVantage:
		return alphaVantageAdapter{}, true
	case KindFinnhub:
		return finnhubAdapter{}, true
	case KindRegionalStock:
		return regionalStockAdapter{}, true
	}
	return nil, false
}

func notSupported(k Kind, cap Capability) error {
	return errs.NewNotSupportedError(fmt.Sprintf("%s does not support %s", k, cap))
}

func supports(caps []Capability, cap Capability) bool {
	for _, c := range caps {
		if c == cap {
			return true
		}
	}
	return false
}
