package provider

import (
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

func TestIdentifyPrecedence(t *testing.T) {
	creds := []models.Credential{
		{ID: "cred-fh", Provider: models.ProviderFinnhub},
		{ID: "cred-custom", Provider: models.ProviderCustom},
	}

	cases := []struct {
		name   string
		widget models.Widget
		want   Kind
	}{
		{
			name: "explicit provider tag wins over URL",
			widget: models.Widget{
				APIEndpoint:    "https://www.alphavantage.co/query?symbol=IBM",
				ProviderConfig: &models.ProviderWidgetConfig{WidgetType: dto.ProviderWidgetPriceCard},
			},
			want: KindRegionalStock,
		},
		{
			name:   "alphavantage by hostname",
			widget: models.Widget{APIEndpoint: "https://www.alphavantage.co/query?symbol=IBM&function=TIME_SERIES_DAILY"},
			want:   KindAlphaVantage,
		},
		{
			name:   "finnhub by hostname",
			widget: models.Widget{APIEndpoint: "https://finnhub.io/api/v1/quote?symbol=AAPL"},
			want:   KindFinnhub,
		},
		{
			name:   "regional by hostname",
			widget: models.Widget{APIEndpoint: "https://stock.indianapi.in/stock?name=Infosys"},
			want:   KindRegionalStock,
		},
		{
			name:   "hostname check is case insensitive",
			widget: models.Widget{APIEndpoint: "https://FINNHUB.IO/api/v1/quote?symbol=AAPL"},
			want:   KindFinnhub,
		},
		{
			name:   "credential provider when URL is unrecognized",
			widget: models.Widget{APIEndpoint: "https://proxy.internal/quote", CredentialID: "cred-fh"},
			want:   KindFinnhub,
		},
		{
			name:   "custom credential falls through to generic",
			widget: models.Widget{APIEndpoint: "https://proxy.internal/quote", CredentialID: "cred-custom"},
			want:   KindGeneric,
		},
		{
			name:   "unknown credential falls through to generic",
			widget: models.Widget{APIEndpoint: "https://proxy.internal/quote", CredentialID: "missing"},
			want:   KindGeneric,
		},
		{
			name:   "no signals at all",
			widget: models.Widget{APIEndpoint: "https://api.example.com/data.json"},
			want:   KindGeneric,
		},
		{
			name: "unrecognized tag falls back to the other signals",
			widget: models.Widget{
				APIEndpoint:    "https://finnhub.io/api/v1/quote?symbol=AAPL",
				ProviderConfig: &models.ProviderWidgetConfig{WidgetType: "sparkline"},
			},
			want: KindFinnhub,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Identify(tc.widget, creds); got != tc.want {
				t.Errorf("Identify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCapabilityFor(t *testing.T) {
	cases := []struct {
		name   string
		widget models.Widget
		want   Capability
	}{
		{
			name:   "card wants a quote",
			widget: models.Widget{Type: dto.VisCard},
			want:   CapQuote,
		},
		{
			name:   "chart wants a time series",
			widget: models.Widget{Type: dto.VisChart},
			want:   CapTimeSeries,
		},
		{
			name: "provider tag picks its capability",
			widget: models.Widget{
				Type:           dto.VisChart,
				ProviderConfig: &models.ProviderWidgetConfig{WidgetType: dto.ProviderWidgetShareholding},
			},
			want: CapOwnership,
		},
		{
			name: "risk meter",
			widget: models.Widget{
				ProviderConfig: &models.ProviderWidgetConfig{WidgetType: dto.ProviderWidgetRiskMeter},
			},
			want: CapRisk,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CapabilityFor(tc.widget); got != tc.want {
				t.Errorf("CapabilityFor = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestForKindGenericHasNoAdapter(t *testing.T) {
	if _, ok := ForKind(KindGeneric); ok {
		t.Error("generic widgets must not dispatch to an adapter")
	}
}
