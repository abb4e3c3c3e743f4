package dto

import (
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// Visual type constants
const (
	VisCard  = "card"
	VisChart = "chart"
	VisTable = "table"
)

// Mapping field names for generic widgets
const (
	FieldPrimary   = "primary"
	FieldSecondary = "secondary"
	FieldSeries    = "series"
)

// Provider widget types for the regional stock API
const (
	ProviderWidgetPriceCard        = "priceCard"
	ProviderWidgetFinancialMetrics = "financialMetrics"
	ProviderWidgetTechnicalChart   = "technicalChart"
	ProviderWidgetPeerComparison   = "peerComparison"
	ProviderWidgetCompanyProfile   = "companyProfile"
	ProviderWidgetNewsFeed         = "newsFeed"
	ProviderWidgetRiskMeter        = "riskMeter"
	ProviderWidgetShareholding     = "shareholding"
)

// --- Request types ---

type CreateWidgetRequest struct {
	Title           string                       `json:"title"`
	Type            string                       `json:"type"`
	APIEndpoint     string                       `json:"apiEndpoint"`
	CredentialID    string                       `json:"credentialId,omitempty"`
	RefreshInterval int                          `json:"refreshInterval,omitempty"`
	DataMapping     map[string]string            `json:"dataMapping,omitempty"`
	ProviderConfig  *models.ProviderWidgetConfig `json:"providerConfig,omitempty"`
}

// ReplaceWidgetRequest carries the full new configuration of a widget; the
// widget id itself is immutable and taken from the URL.
type ReplaceWidgetRequest struct {
	Title           string                       `json:"title"`
	Type            string                       `json:"type"`
	APIEndpoint     string                       `json:"apiEndpoint"`
	CredentialID    string                       `json:"credentialId,omitempty"`
	RefreshInterval int                          `json:"refreshInterval,omitempty"`
	DataMapping     map[string]string            `json:"dataMapping,omitempty"`
	ProviderConfig  *models.ProviderWidgetConfig `json:"providerConfig,omitempty"`
}

type SaveLayoutRequest struct {
	Layout []models.LayoutItem `json:"layout"`
}
