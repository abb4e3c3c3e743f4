package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

// --- Fakes ---

type fakeDashboards struct {
	dashboard models.Dashboard
}

func (f *fakeDashboards) Get(_ context.Context, _ string) (*models.Dashboard, error) {
	d := f.dashboard
	return &d, nil
}

type fakeCredentials struct {
	creds map[string]*models.Credential
}

func (f *fakeCredentials) Metadata(_ context.Context, _ string) ([]models.Credential, error) {
	out := make([]models.Credential, 0, len(f.creds))
	for _, c := range f.creds {
		cc := *c
		cc.Secret = ""
		out = append(out, cc)
	}
	return out, nil
}

func (f *fakeCredentials) Resolve(_ context.Context, _, id string) (*models.Credential, error) {
	c, ok := f.creds[id]
	if !ok {
		return nil, errs.NewCredentialNotFoundError("credential not found")
	}
	cc := *c
	return &cc, nil
}

type countingClient struct {
	inner *http.Client
	calls atomic.Int64
}

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.inner.Do(req)
}

func widgetService(body string, status int) (*widgetDataService, *fakeDashboards, *fakeCredentials, *countingClient, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	dashboards := &fakeDashboards{}
	credentials := &fakeCredentials{creds: make(map[string]*models.Credential)}
	client := &countingClient{inner: srv.Client()}
	return NewWidgetDataService(dashboards, credentials, client), dashboards, credentials, client, srv
}

// --- Tests ---

func TestGetWidgetDataGenericOK(t *testing.T) {
	svc, dashboards, _, _, srv := widgetService(`{"price": 41.5, "meta": {"name": "ACME"}}`, http.StatusOK)
	defer srv.Close()

	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:    "w-1",
		Type:        dto.VisCard,
		APIEndpoint: srv.URL + "/data",
		DataMapping: map[string]string{"primary": "price", "secondary": "meta.name"},
	}}}

	got, err := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if err != nil {
		t.Fatalf("GetWidgetData: %v", err)
	}
	if got.State != dto.StateOK {
		t.Fatalf("State = %q (%s)", got.State, got.Message)
	}
	data := got.Data.(dto.GenericData)
	if data.Primary != "41.5" || data.Secondary != "ACME" {
		t.Errorf("data = %+v", data)
	}
	if got.Provider != "generic" {
		t.Errorf("Provider = %q", got.Provider)
	}
}

func TestGetWidgetDataUnknownWidget(t *testing.T) {
	svc, _, _, _, srv := widgetService(`{}`, http.StatusOK)
	defer srv.Close()

	_, err := svc.GetWidgetData(context.Background(), "u1", "nope")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("GetWidgetData = %v, want NotFoundError", err)
	}
}

func TestCredentialMismatchSkipsFetch(t *testing.T) {
	svc, dashboards, credentials, client, srv := widgetService(`{}`, http.StatusOK)
	defer srv.Close()

	credentials.creds["c1"] = &models.Credential{
		ID: "c1", Provider: models.ProviderAlphaVantage, Secret: "av-key",
	}
	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:     "w-1",
		Type:         dto.VisCard,
		APIEndpoint:  "https://finnhub.io/api/v1/quote?symbol=AAPL",
		CredentialID: "c1",
	}}}

	got, err := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if err != nil {
		t.Fatalf("GetWidgetData: %v", err)
	}
	if got.State != dto.StateCredentialNotFound {
		t.Errorf("State = %q, want credentialNotFound", got.State)
	}
	if got.Retryable {
		t.Error("credential mismatch must not be retryable")
	}
	if client.calls.Load() != 0 {
		t.Errorf("fetches = %d, want none before credential resolution", client.calls.Load())
	}
}

func TestMissingCredentialSkipsFetch(t *testing.T) {
	svc, dashboards, _, client, srv := widgetService(`{}`, http.StatusOK)
	defer srv.Close()

	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:     "w-1",
		Type:         dto.VisCard,
		APIEndpoint:  srv.URL,
		CredentialID: "deleted-cred",
	}}}

	got, _ := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if got.State != dto.StateCredentialNotFound {
		t.Errorf("State = %q", got.State)
	}
	if client.calls.Load() != 0 {
		t.Error("fetched despite unresolvable credential")
	}
}

func TestNon2xxIsRetryableFetchError(t *testing.T) {
	svc, dashboards, _, _, srv := widgetService(`upstream broke`, http.StatusBadGateway)
	defer srv.Close()

	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID: "w-1", Type: dto.VisCard, APIEndpoint: srv.URL,
	}}}

	got, _ := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if got.State != dto.StateFetchError {
		t.Errorf("State = %q", got.State)
	}
	if !got.Retryable {
		t.Error("non-2xx must be retryable")
	}
}

func TestInBandProviderErrorVerbatim(t *testing.T) {
	const note = "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."
	svc, dashboards, _, _, srv := widgetService(`{"Note": "`+note+`"}`, http.StatusOK)
	defer srv.Close()

	// The path substring is enough for alphavantage dispatch.
	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:    "w-1",
		Type:        dto.VisCard,
		APIEndpoint: srv.URL + "/alphavantage.co/query?symbol=IBM",
	}}}

	got, _ := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if got.State != dto.StateFetchError || !got.Retryable {
		t.Errorf("state = %q retryable = %v", got.State, got.Retryable)
	}
	if got.Message != note {
		t.Errorf("Message = %q, want the provider text verbatim", got.Message)
	}
	if got.Identity != "IBM" {
		t.Errorf("Identity = %q", got.Identity)
	}
}

func TestBadJSONIsParseError(t *testing.T) {
	svc, dashboards, _, _, srv := widgetService(`<html>definitely not json`, http.StatusOK)
	defer srv.Close()

	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:    "w-1",
		Type:        dto.VisCard,
		APIEndpoint: srv.URL,
		DataMapping: map[string]string{"primary": "price"},
	}}}

	got, _ := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if got.State != dto.StateParseError {
		t.Errorf("State = %q", got.State)
	}
	if got.Retryable {
		t.Error("parse errors must not be retryable")
	}
}

func TestUnsupportedCapabilityIsUnavailable(t *testing.T) {
	svc, dashboards, _, _, srv := widgetService(`{"c": 1.0}`, http.StatusOK)
	defer srv.Close()

	// A shareholding widget whose response carries no shareholding section.
	dashboards.dashboard = models.Dashboard{Widgets: []models.Widget{{
		WidgetID:       "w-1",
		Type:           dto.VisCard,
		APIEndpoint:    srv.URL + "/stock?name=ACME",
		ProviderConfig: &models.ProviderWidgetConfig{WidgetType: dto.ProviderWidgetShareholding},
	}}}

	got, _ := svc.GetWidgetData(context.Background(), "u1", "w-1")
	if got.State != dto.StateUnavailable {
		t.Errorf("State = %q, want unavailable", got.State)
	}
}

func TestFetchSample(t *testing.T) {
	svc, _, _, _, srv := widgetService(`{"hello": "world"}`, http.StatusOK)
	defer srv.Close()

	raw, cred, err := svc.FetchSample(context.Background(), "u1", srv.URL, "")
	if err != nil {
		t.Fatalf("FetchSample: %v", err)
	}
	if cred != nil {
		t.Errorf("cred = %+v, want nil without a credential id", cred)
	}
	if string(raw) != `{"hello": "world"}` {
		t.Errorf("raw = %s", raw)
	}
}
