package dto

import "github.com/ewhitfield/stockdeck-backend/internal/models"

// Wizard event types
const (
	WizardEventChooseSource         = "chooseSource"
	WizardEventSelectProviderWidget = "selectProviderWidget"
	WizardEventBindField            = "bindField"
	WizardEventConfigureDisplay     = "configureDisplay"
	WizardEventComplete             = "complete"
)

// WizardEvent is one typed transition applied to a wizard session. Type
// selects the transition; the remaining fields are its payload.
type WizardEvent struct {
	Type string `json:"type"`

	// chooseSource
	Endpoint     string `json:"endpoint,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`

	// selectProviderWidget
	WidgetType string `json:"widgetType,omitempty"`

	// bindField
	Field string `json:"field,omitempty"`
	Path  string `json:"path,omitempty"`

	// configureDisplay
	Title           string `json:"title,omitempty"`
	VisualType      string `json:"visualType,omitempty"`
	RefreshInterval int    `json:"refreshInterval,omitempty"`
}

// Binding is a recorded field binding. DateKeyed warns that one of the
// path's segments is a literal calendar date and will stop resolving when
// the provider rolls to a new most-recent entry.
type Binding struct {
	Path      string `json:"path"`
	DateKeyed bool   `json:"dateKeyed"`
}

// SampleLeaf is one selectable leaf of the sampled response document.
type SampleLeaf struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// WizardSessionView is the client-facing snapshot of a session.
type WizardSessionView struct {
	SessionID string             `json:"sessionId"`
	State     string             `json:"state"`
	Endpoint  string             `json:"endpoint,omitempty"`
	Provider  string             `json:"provider,omitempty"`
	Leaves    []SampleLeaf       `json:"leaves,omitempty"`
	Bindings  map[string]Binding `json:"bindings,omitempty"`
	Widget    *models.Widget     `json:"widget,omitempty"`
}
