// Package wizard drives the add-widget flow as a typed state machine over
// an in-memory, per-user session. The flow samples the chosen endpoint
// once, lets the user either pick a specialized provider widget or bind
// JSON paths against the sample, then materializes a dashboard widget.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/jsonpath"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/internal/provider"
)

// State names are part of the client contract.
const (
	StateSelectingSource          = "selectingSource"
	StatePreviewingProviderWidget = "previewingProviderWidget"
	StateMappingFields            = "mappingFields"
	StateConfiguringDisplay       = "configuringDisplay"
	StateCompleted                = "completed"
)

const (
	sessionTTL = 30 * time.Minute
	// maxLeaves bounds how much of a huge sample document is exposed to
	// the path picker.
	maxLeaves = 500
)

type sampler interface {
	FetchSample(ctx context.Context, uid, endpoint, credentialID string) ([]byte, *models.Credential, error)
}

type widgetAdder interface {
	AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error)
}

// session fields below mu are guarded by it; expires belongs to the
// manager's map bookkeeping and is guarded by Manager.mu.
type session struct {
	mu           sync.Mutex
	id           string
	uid          string
	state        string
	endpoint     string
	credentialID string
	kind         provider.Kind
	sample       *jsonpath.Node
	bindings     map[string]dto.Binding
	widgetType   string
	title        string
	visualType   string
	refresh      int
	widget       *models.Widget
	expires      time.Time
}

type Manager struct {
	sampler sampler
	adder   widgetAdder
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(sampler sampler, adder widgetAdder) *Manager {
	return &Manager{
		sampler:  sampler,
		adder:    adder,
		ttl:      sessionTTL,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Start opens a fresh session in the source-selection state.
func (m *Manager) Start(_ context.Context, uid string) dto.WizardSessionView {
	s := &session{
		id:       uuid.New().String(),
		uid:      uid,
		state:    StateSelectingSource,
		bindings: make(map[string]dto.Binding),
		expires:  m.now().Add(m.ttl),
	}
	// Snapshot before publishing so no lock is needed for the view.
	v := m.view(s)
	m.mu.Lock()
	m.purgeLocked()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return v
}

// Get returns the current session snapshot.
func (m *Manager) Get(_ context.Context, uid, sessionID string) (dto.WizardSessionView, error) {
	m.mu.Lock()
	s, err := m.sessionLocked(uid, sessionID)
	m.mu.Unlock()
	if err != nil {
		return dto.WizardSessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.view(s), nil
}

// Apply runs one typed event against the session's state machine. An event
// the current state does not accept is a validation error; the session is
// left unchanged.
func (m *Manager) Apply(ctx context.Context, uid, sessionID string, ev dto.WizardEvent) (dto.WizardSessionView, error) {
	m.mu.Lock()
	s, err := m.sessionLocked(uid, sessionID)
	m.mu.Unlock()
	if err != nil {
		return dto.WizardSessionView{}, err
	}

	// The whole transition runs under the session lock so a concurrent
	// Get never observes a half-applied event. Events racing on one
	// session serialize, sample fetch included.
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case dto.WizardEventChooseSource:
		err = m.chooseSource(ctx, s, ev)
	case dto.WizardEventSelectProviderWidget:
		err = m.selectProviderWidget(s, ev)
	case dto.WizardEventBindField:
		err = m.bindField(s, ev)
	case dto.WizardEventConfigureDisplay:
		err = m.configureDisplay(s, ev)
	case dto.WizardEventComplete:
		err = m.complete(ctx, s)
	default:
		err = errs.NewValidationError("unknown wizard event type")
	}
	if err != nil {
		return dto.WizardSessionView{}, err
	}

	// Applying an event also extends the session's lease.
	m.mu.Lock()
	s.expires = m.now().Add(m.ttl)
	m.mu.Unlock()
	return m.view(s), nil
}

func (m *Manager) chooseSource(ctx context.Context, s *session, ev dto.WizardEvent) error {
	if s.state != StateSelectingSource {
		return errs.NewValidationError("source already chosen")
	}
	if ev.Endpoint == "" {
		return errs.NewValidationError("endpoint is required")
	}

	raw, cred, err := m.sampler.FetchSample(ctx, s.uid, ev.Endpoint, ev.CredentialID)
	if err != nil {
		return err
	}
	doc, err := jsonpath.Decode(raw)
	if err != nil {
		return errs.NewParseError("sample response is not valid JSON")
	}

	probe := models.Widget{APIEndpoint: ev.Endpoint, CredentialID: ev.CredentialID}
	var creds []models.Credential
	if cred != nil {
		creds = []models.Credential{{ID: cred.ID, Provider: cred.Provider}}
	}

	s.endpoint = ev.Endpoint
	s.credentialID = ev.CredentialID
	s.sample = doc
	s.kind = provider.Identify(probe, creds)
	if s.kind == provider.KindGeneric {
		s.state = StateMappingFields
	} else {
		s.state = StatePreviewingProviderWidget
	}
	return nil
}

func (m *Manager) selectProviderWidget(s *session, ev dto.WizardEvent) error {
	if s.state != StatePreviewingProviderWidget {
		return errs.NewValidationError("no provider widget to select in this state")
	}
	// Only the regional provider has selectable widget types. Alpha
	// Vantage and Finnhub previews go straight to display config.
	if s.kind != provider.KindRegionalStock {
		return errs.NewValidationError("this source has no selectable widget types")
	}
	switch ev.WidgetType {
	case dto.ProviderWidgetPriceCard, dto.ProviderWidgetFinancialMetrics,
		dto.ProviderWidgetTechnicalChart, dto.ProviderWidgetPeerComparison,
		dto.ProviderWidgetCompanyProfile, dto.ProviderWidgetNewsFeed,
		dto.ProviderWidgetRiskMeter, dto.ProviderWidgetShareholding:
	default:
		return errs.NewValidationError("unknown provider widget type")
	}
	s.widgetType = ev.WidgetType
	s.state = StateConfiguringDisplay
	return nil
}

// bindField records a path binding after proving it resolves against the
// sampled document. Date-keyed paths are accepted but flagged, since they
// stop resolving when the provider rolls to a new most-recent entry.
func (m *Manager) bindField(s *session, ev dto.WizardEvent) error {
	if s.state != StateMappingFields {
		return errs.NewValidationError("field binding is only available while mapping")
	}
	switch ev.Field {
	case dto.FieldPrimary, dto.FieldSecondary, dto.FieldSeries:
	default:
		return errs.NewValidationError("field must be primary, secondary or series")
	}
	if _, ok := jsonpath.Resolve(s.sample, ev.Path); !ok {
		return errs.NewValidationError("path does not resolve against the sampled response")
	}
	s.bindings[ev.Field] = dto.Binding{
		Path:      ev.Path,
		DateKeyed: jsonpath.DateKeyed(ev.Path),
	}
	return nil
}

func (m *Manager) configureDisplay(s *session, ev dto.WizardEvent) error {
	switch s.state {
	case StateMappingFields:
		if _, ok := s.bindings[dto.FieldPrimary]; !ok {
			return errs.NewValidationError("bind a primary field before configuring display")
		}
	case StatePreviewingProviderWidget, StateConfiguringDisplay:
	default:
		return errs.NewValidationError("display configuration is not available in this state")
	}
	if ev.Title == "" {
		return errs.NewValidationError("title is required")
	}
	switch ev.VisualType {
	case dto.VisCard, dto.VisChart, dto.VisTable:
	case "":
		ev.VisualType = dto.VisCard
	default:
		return errs.NewValidationError("visual type must be card, chart or table")
	}
	s.title = ev.Title
	s.visualType = ev.VisualType
	s.refresh = ev.RefreshInterval
	s.state = StateConfiguringDisplay
	return nil
}

// complete materializes the configured widget onto the user's dashboard.
func (m *Manager) complete(ctx context.Context, s *session) error {
	if s.state != StateConfiguringDisplay {
		return errs.NewValidationError("configure the widget before completing")
	}
	req := dto.CreateWidgetRequest{
		Title:           s.title,
		Type:            s.visualType,
		APIEndpoint:     s.endpoint,
		CredentialID:    s.credentialID,
		RefreshInterval: s.refresh,
	}
	if s.widgetType != "" {
		req.ProviderConfig = &models.ProviderWidgetConfig{WidgetType: s.widgetType}
	}
	if len(s.bindings) > 0 {
		req.DataMapping = make(map[string]string, len(s.bindings))
		for field, b := range s.bindings {
			req.DataMapping[field] = b.Path
		}
	}
	w, err := m.adder.AddWidget(ctx, s.uid, req)
	if err != nil {
		return err
	}
	s.widget = w
	s.state = StateCompleted
	return nil
}

func (m *Manager) sessionLocked(uid, sessionID string) (*session, error) {
	m.purgeLocked()
	s, ok := m.sessions[sessionID]
	if !ok || s.uid != uid {
		return nil, errs.NewNotFoundError("wizard session not found")
	}
	return s, nil
}

func (m *Manager) purgeLocked() {
	now := m.now()
	for id, s := range m.sessions {
		if now.After(s.expires) {
			delete(m.sessions, id)
		}
	}
}

func (m *Manager) view(s *session) dto.WizardSessionView {
	v := dto.WizardSessionView{
		SessionID: s.id,
		State:     s.state,
		Endpoint:  s.endpoint,
		Widget:    s.widget,
	}
	if s.kind != "" {
		v.Provider = string(s.kind)
	}
	if len(s.bindings) > 0 {
		v.Bindings = make(map[string]dto.Binding, len(s.bindings))
		for f, b := range s.bindings {
			v.Bindings[f] = b
		}
	}
	if s.state == StateMappingFields && s.sample != nil {
		for _, e := range jsonpath.Leaves(s.sample) {
			if len(v.Leaves) == maxLeaves {
				break
			}
			v.Leaves = append(v.Leaves, dto.SampleLeaf{Path: e.Path, Value: e.Node.Display()})
		}
	}
	return v
}
