package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/internal/provider"
	"github.com/ewhitfield/stockdeck-backend/internal/request"
)

// Response bodies are bounded; the largest legitimate provider payload is
// well under a megabyte.
const maxResponseBytes = 4 << 20

type dashboardGetter interface {
	Get(ctx context.Context, uid string) (*models.Dashboard, error)
}

// credentialResolver supplies dispatch metadata and plaintext secrets.
type credentialResolver interface {
	Metadata(ctx context.Context, uid string) ([]models.Credential, error)
	Resolve(ctx context.Context, uid, id string) (*models.Credential, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type widgetDataService struct {
	dashboards  dashboardGetter
	credentials credentialResolver
	client      httpDoer
}

func NewWidgetDataService(dashboards dashboardGetter, credentials credentialResolver, client httpDoer) *widgetDataService {
	return &widgetDataService{dashboards: dashboards, credentials: credentials, client: client}
}

// GetWidgetData produces one widget's current render. Fetch, provider and
// parse failures come back as explicit states on the WidgetData, never as
// errors: an error return means the widget itself could not be loaded.
func (s *widgetDataService) GetWidgetData(ctx context.Context, uid, widgetID string) (dto.WidgetData, error) {
	d, err := s.dashboards.Get(ctx, uid)
	if err != nil {
		return dto.WidgetData{}, err
	}
	w := d.Widget(widgetID)
	if w == nil {
		return dto.WidgetData{}, errs.NewNotFoundError("widget not found")
	}
	return s.Render(ctx, uid, w), nil
}

// Render fetches and normalizes one widget. Shared by the request path and
// the poller.
func (s *widgetDataService) Render(ctx context.Context, uid string, w *models.Widget) dto.WidgetData {
	creds, err := s.credentials.Metadata(ctx, uid)
	if err != nil {
		return stateFor(w, "", err)
	}
	kind := provider.Identify(*w, creds)

	var cred *models.Credential
	if w.CredentialID != "" {
		cred, err = s.credentials.Resolve(ctx, uid, w.CredentialID)
		if err != nil {
			return stateFor(w, string(kind), err)
		}
		if mismatched(kind, cred.Provider) {
			err = errs.NewCredentialNotFoundError(
				fmt.Sprintf("widget needs a %s key but credential is for %s", kind, cred.Provider))
			return stateFor(w, string(kind), err)
		}
	}

	identity := ""
	if adapter, ok := provider.ForKind(kind); ok {
		identity = adapter.Identity(w.APIEndpoint)
	}

	raw, err := s.fetch(ctx, w.APIEndpoint, cred)
	if err != nil {
		data := stateFor(w, string(kind), err)
		data.Identity = identity
		return data
	}

	payload, err := normalize(kind, w, raw)
	if err != nil {
		data := stateFor(w, string(kind), err)
		data.Identity = identity
		return data
	}
	return dto.WidgetData{
		WidgetID:    w.WidgetID,
		Provider:    string(kind),
		State:       dto.StateOK,
		Identity:    identity,
		Data:        payload,
		LastUpdated: time.Now(),
	}
}

// FetchSample performs the wizard's one-off sample fetch: same transport
// and error taxonomy as a widget render, but the raw body is returned for
// path exploration.
func (s *widgetDataService) FetchSample(ctx context.Context, uid, endpoint, credentialID string) ([]byte, *models.Credential, error) {
	var cred *models.Credential
	if credentialID != "" {
		var err error
		cred, err = s.credentials.Resolve(ctx, uid, credentialID)
		if err != nil {
			return nil, nil, err
		}
	}
	raw, err := s.fetch(ctx, endpoint, cred)
	if err != nil {
		return nil, nil, err
	}
	return raw, cred, nil
}

func (s *widgetDataService) fetch(ctx context.Context, endpoint string, cred *models.Credential) ([]byte, error) {
	url, headers := request.Build(endpoint, cred)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewValidationError("endpoint is not a valid URL")
	}
	req.Header = headers

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError("provider", "fetch failed: "+err.Error(), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.NewExternalServiceError("provider",
			fmt.Sprintf("provider returned status %d", resp.StatusCode), true)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.NewExternalServiceError("provider", "reading response failed: "+err.Error(), true)
	}
	return raw, nil
}

// normalize runs the provider pipeline on a fetched body: in-band error
// check, then capability parse, or the generic mapping extractor.
func normalize(kind provider.Kind, w *models.Widget, raw []byte) (any, error) {
	adapter, ok := provider.ForKind(kind)
	if !ok {
		return provider.ExtractMapping(raw, w.DataMapping)
	}
	if err := adapter.ErrorCheck(raw); err != nil {
		return nil, err
	}
	return adapter.Parse(provider.CapabilityFor(*w), raw)
}

// mismatched reports whether a dispatch kind demands a specific provider
// key the credential does not carry. Generic widgets accept any credential.
func mismatched(kind provider.Kind, credProvider models.Provider) bool {
	switch kind {
	case provider.KindAlphaVantage:
		return credProvider != models.ProviderAlphaVantage
	case provider.KindFinnhub:
		return credProvider != models.ProviderFinnhub
	case provider.KindRegionalStock:
		return credProvider != models.ProviderRegionalStock
	}
	return false
}

// stateFor maps the error taxonomy onto a widget render state.
func stateFor(w *models.Widget, kind string, err error) dto.WidgetData {
	data := dto.WidgetData{
		WidgetID:    w.WidgetID,
		Provider:    kind,
		Message:     err.Error(),
		LastUpdated: time.Now(),
	}
	var (
		credErr  *errs.CredentialNotFoundError
		provErr  *errs.ProviderError
		extErr   *errs.ExternalServiceError
		parseErr *errs.ParseError
		nsErr    *errs.NotSupportedError
	)
	switch {
	case errors.As(err, &credErr):
		data.State = dto.StateCredentialNotFound
	case errors.As(err, &provErr):
		data.State = dto.StateFetchError
		data.Retryable = true
	case errors.As(err, &extErr):
		data.State = dto.StateFetchError
		data.Retryable = extErr.Transient
	case errors.As(err, &parseErr):
		data.State = dto.StateParseError
	case errors.As(err, &nsErr):
		data.State = dto.StateUnavailable
	default:
		data.State = dto.StateFetchError
		data.Retryable = true
	}
	return data
}

// NewProviderHTTPClient is the transport used against provider endpoints.
// No automatic retries: a failed fetch waits for the widget's next refresh.
func NewProviderHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
