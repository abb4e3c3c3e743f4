package provider

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

func TestExtractMapping(t *testing.T) {
	body := []byte(`{
		"meta": {"name": "ACME", "active": true},
		"price": 41.5,
		"history": [40.1, 40.8, 41.5]
	}`)

	got, err := ExtractMapping(body, map[string]string{
		"primary":   "price",
		"secondary": "meta.name",
		"series":    "history",
	})
	if err != nil {
		t.Fatalf("ExtractMapping: %v", err)
	}
	want := dto.GenericData{
		Primary:   "41.5",
		Secondary: "ACME",
		Series:    []string{"40.1", "40.8", "41.5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractMapping = %+v, want %+v", got, want)
	}
}

func TestExtractMappingAbsentPathsRenderSentinel(t *testing.T) {
	body := []byte(`{"price": 41.5}`)

	got, err := ExtractMapping(body, map[string]string{
		"primary":   "price",
		"secondary": "meta.name",
		"series":    "history",
	})
	if err != nil {
		t.Fatalf("ExtractMapping: %v", err)
	}
	if got.Primary != "41.5" {
		t.Errorf("Primary = %q", got.Primary)
	}
	if got.Secondary != dto.Unavailable {
		t.Errorf("Secondary = %q, want %q", got.Secondary, dto.Unavailable)
	}
	if !reflect.DeepEqual(got.Series, []string{dto.Unavailable}) {
		t.Errorf("Series = %v", got.Series)
	}
}

func TestExtractMappingObjectSeries(t *testing.T) {
	// Alpha-Vantage-style series: an object keyed by date, values in
	// document order.
	body := []byte(`{"Time Series (Daily)": {
		"2024-01-03": {"4. close": "152.5"},
		"2024-01-02": {"4. close": "150.0"}
	}}`)

	got, err := ExtractMapping(body, map[string]string{
		"primary": `Time Series (Daily).2024-01-03["4. close"]`,
		"series":  "Time Series (Daily)",
	})
	if err != nil {
		t.Fatalf("ExtractMapping: %v", err)
	}
	if got.Primary != "152.5" {
		t.Errorf("Primary = %q", got.Primary)
	}
	if len(got.Series) != 2 {
		t.Errorf("Series = %v", got.Series)
	}
}

func TestExtractMappingUnboundFieldsStayEmpty(t *testing.T) {
	got, err := ExtractMapping([]byte(`{"a": 1}`), map[string]string{"primary": "a"})
	if err != nil {
		t.Fatalf("ExtractMapping: %v", err)
	}
	if got.Secondary != "" || got.Series != nil {
		t.Errorf("unbound fields = %+v, want zero values", got)
	}
}

func TestExtractMappingBadJSON(t *testing.T) {
	_, err := ExtractMapping([]byte(`{not json`), map[string]string{"primary": "a"})
	var perr *errs.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("ExtractMapping = %v, want ParseError", err)
	}
}
