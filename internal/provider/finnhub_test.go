package provider

import (
	"errors"
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

func TestFinnhubQuote(t *testing.T) {
	a, ok := ForKind(KindFinnhub)
	if !ok {
		t.Fatal("no adapter for finnhub")
	}

	body := `{"c": 172.5, "d": 1.25, "dp": 0.73, "h": 173.1, "l": 170.2, "o": 171.0, "pc": 171.25}`
	got, err := a.Parse(CapQuote, []byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	q := got.(dto.QuoteData).Quote
	if q.Price != 172.5 || q.Change != 1.25 || q.ChangePercent != 0.73 {
		t.Errorf("quote = %+v", q)
	}
	if q.PrevClose != 171.25 {
		t.Errorf("PrevClose = %v, want 171.25", q.PrevClose)
	}
}

func TestFinnhubInBandError(t *testing.T) {
	a, _ := ForKind(KindFinnhub)

	err := a.ErrorCheck([]byte(`{"error": "API limit reached. Please try again later."}`))
	var perr *errs.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("ErrorCheck = %v, want ProviderError", err)
	}
	if perr.Provider != string(KindFinnhub) {
		t.Errorf("Provider = %q", perr.Provider)
	}
	if perr.Message != "API limit reached. Please try again later." {
		t.Errorf("message = %q, want the provider text verbatim", perr.Message)
	}

	if err := a.ErrorCheck([]byte(`{"c": 1}`)); err != nil {
		t.Errorf("ErrorCheck on valid body = %v, want nil", err)
	}
}

func TestFinnhubOnlyQuotes(t *testing.T) {
	a, _ := ForKind(KindFinnhub)

	_, err := a.Parse(CapTimeSeries, []byte(`{}`))
	var nse *errs.NotSupportedError
	if !errors.As(err, &nse) {
		t.Fatalf("Parse(timeSeries) = %v, want NotSupportedError", err)
	}
}
