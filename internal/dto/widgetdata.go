package dto

import "time"

// WidgetState classifies a widget's render outcome. Error states are caught
// at the widget boundary and never bubble to the dashboard container.
type WidgetState string

const (
	// StateOK: Data carries a normalized payload.
	StateOK WidgetState = "ok"
	// StateUnavailable: the provider answered but the requested capability
	// or bound field is not available. Not retryable.
	StateUnavailable WidgetState = "unavailable"
	// StateFetchError: transport failure or in-band provider error. Retryable.
	StateFetchError WidgetState = "fetchError"
	// StateCredentialNotFound: the referenced credential does not resolve to
	// a key of the right provider; no network call was attempted.
	StateCredentialNotFound WidgetState = "credentialNotFound"
	// StateParseError: the response body was not valid JSON. Not retryable.
	StateParseError WidgetState = "parseError"
)

// WidgetData is one widget's current render: either a normalized payload or
// an explicit error state with a retry affordance flag.
type WidgetData struct {
	WidgetID    string      `json:"widgetId"`
	Provider    string      `json:"provider"`
	State       WidgetState `json:"state"`
	Retryable   bool        `json:"retryable"`
	Message     string      `json:"message,omitempty"`
	Identity    string      `json:"identity,omitempty"`
	Data        any         `json:"data,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
}
