package provider

import (
	"strings"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// providerWidgetKinds maps the specialized widget type tags to the data
// source that renders them. Today they are all served by the regional
// stock API.
var providerWidgetKinds = map[string]Kind{
	dto.ProviderWidgetPriceCard:        KindRegionalStock,
	dto.ProviderWidgetFinancialMetrics: KindRegionalStock,
	dto.ProviderWidgetTechnicalChart:   KindRegionalStock,
	dto.ProviderWidgetPeerComparison:   KindRegionalStock,
	dto.ProviderWidgetCompanyProfile:   KindRegionalStock,
	dto.ProviderWidgetNewsFeed:         KindRegionalStock,
	dto.ProviderWidgetRiskMeter:        KindRegionalStock,
	dto.ProviderWidgetShareholding:     KindRegionalStock,
}

var widgetCapabilities = map[string]Capability{
	dto.ProviderWidgetPriceCard:        CapQuote,
	dto.ProviderWidgetFinancialMetrics: CapFinancials,
	dto.ProviderWidgetTechnicalChart:   CapTechnical,
	dto.ProviderWidgetPeerComparison:   CapPeers,
	dto.ProviderWidgetCompanyProfile:   CapProfile,
	dto.ProviderWidgetNewsFeed:         CapNews,
	dto.ProviderWidgetRiskMeter:        CapRisk,
	dto.ProviderWidgetShareholding:     CapOwnership,
}

// Identify is the single place a widget's data source is decided.
// Precedence: the explicit provider widget tag, then recognizable hostnames
// in the endpoint, then the provider of the referenced credential. A widget
// matching none of these is a generic mapped widget.
func Identify(w models.Widget, creds []models.Credential) Kind {
	if w.ProviderConfig != nil {
		if k, ok := providerWidgetKinds[w.ProviderConfig.WidgetType]; ok {
			return k
		}
	}
	endpoint := strings.ToLower(w.APIEndpoint)
	switch {
	case strings.Contains(endpoint, "alphavantage.co"):
		return KindAlphaVantage
	case strings.Contains(endpoint, "finnhub.io"):
		return KindFinnhub
	case strings.Contains(endpoint, "indianapi.in"):
		return KindRegionalStock
	}
	if w.CredentialID != "" {
		for _, c := range creds {
			if c.ID != w.CredentialID {
				continue
			}
			switch c.Provider {
			case models.ProviderAlphaVantage:
				return KindAlphaVantage
			case models.ProviderFinnhub:
				return KindFinnhub
			case models.ProviderRegionalStock:
				return KindRegionalStock
			}
		}
	}
	return KindGeneric
}

// CapabilityFor selects which normalized view a widget wants from its
// adapter: the capability of its provider widget tag when present,
// otherwise a time series for charts and a quote for everything else.
func CapabilityFor(w models.Widget) Capability {
	if w.ProviderConfig != nil {
		if c, ok := widgetCapabilities[w.ProviderConfig.WidgetType]; ok {
			return c
		}
	}
	if w.Type == dto.VisChart {
		return CapTimeSeries
	}
	return CapQuote
}
