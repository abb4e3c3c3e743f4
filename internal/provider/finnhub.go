package provider

import (
	"encoding/json"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

// fhQuote is Finnhub's /quote shape: single-letter keys.
type fhQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`

	// Finnhub answers 200 with an error field on bad symbols and exhausted
	// quotas.
	Error string `json:"error"`
}

type finnhubAdapter struct{}

func (finnhubAdapter) Kind() Kind { return KindFinnhub }

func (finnhubAdapter) Capabilities() []Capability {
	return []Capability{CapQuote}
}

func (finnhubAdapter) ErrorCheck(raw []byte) error {
	var q fhQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		return errs.NewParseError("finnhub response is not valid JSON")
	}
	if q.Error != "" {
		return errs.NewProviderError(string(KindFinnhub), q.Error)
	}
	return nil
}

func (finnhubAdapter) Identity(endpoint string) string {
	m := symbolParamPattern.FindStringSubmatch(endpoint)
	if m == nil {
		return ""
	}
	return m[1]
}

func (finnhubAdapter) Parse(cap Capability, raw []byte) (any, error) {
	if cap != CapQuote {
		return nil, notSupported(KindFinnhub, cap)
	}
	var q fhQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, errs.NewParseError("finnhub response is not valid JSON")
	}
	return dto.QuoteData{Quote: dto.Quote{
		Price:         q.Current,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		PrevClose:     q.PrevClose,
	}}, nil
}
