package models

import "time"

// Widget is one configured, independently-refreshing display unit bound to
// one data source and one field mapping. WidgetID is generated once and
// never changes; all other fields mutate only by full replacement.
type Widget struct {
	WidgetID        string                `firestore:"widgetId" json:"widgetId"`
	Title           string                `firestore:"title" json:"title"`
	Type            string                `firestore:"type" json:"type"` // "card","chart","table"
	APIEndpoint     string                `firestore:"apiEndpoint" json:"apiEndpoint"`
	CredentialID    string                `firestore:"credentialId,omitempty" json:"credentialId,omitempty"`
	RefreshInterval int                   `firestore:"refreshInterval" json:"refreshInterval"` // seconds
	DataMapping     map[string]string     `firestore:"dataMapping,omitempty" json:"dataMapping,omitempty"`
	ProviderConfig  *ProviderWidgetConfig `firestore:"providerConfig,omitempty" json:"providerConfig,omitempty"`
	CreatedAt       time.Time             `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time             `firestore:"updatedAt" json:"updatedAt"`
}

// ProviderWidgetConfig tags a widget as a specialized provider widget.
// An explicit tag wins over any inferred dispatch.
type ProviderWidgetConfig struct {
	WidgetType string `firestore:"widgetType" json:"widgetType"`
}
