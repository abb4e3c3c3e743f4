package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/pkg/helpers"
)

// --- Fakes ---

type fakeDashboardStore struct {
	dashboard models.Dashboard
	getErr    error
	saveErr   error
	saves     int
}

func (f *fakeDashboardStore) Get(_ context.Context, _ string) (*models.Dashboard, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d := f.dashboard
	d.Widgets = append([]models.Widget(nil), f.dashboard.Widgets...)
	d.Layout = append([]models.LayoutItem(nil), f.dashboard.Layout...)
	return &d, nil
}

func (f *fakeDashboardStore) Save(_ context.Context, _ string, d *models.Dashboard) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.dashboard = *d
	return nil
}

// --- Tests ---

func TestAddWidgetPlacesLayout(t *testing.T) {
	store := &fakeDashboardStore{}
	svc := NewDashboardService(store)
	ctx := helpers.TestCtx()

	w, err := svc.AddWidget(ctx, "u1", dto.CreateWidgetRequest{
		Title:       "AAPL",
		Type:        dto.VisCard,
		APIEndpoint: "https://finnhub.io/api/v1/quote?symbol=AAPL",
	})
	if err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if w.WidgetID == "" {
		t.Error("widget id not generated")
	}
	if w.RefreshInterval != defaultRefresh {
		t.Errorf("RefreshInterval = %d, want default %d", w.RefreshInterval, defaultRefresh)
	}
	if len(store.dashboard.Widgets) != 1 || len(store.dashboard.Layout) != 1 {
		t.Fatalf("dashboard = %+v, want widget and layout in sync", store.dashboard)
	}
	if store.dashboard.Layout[0].WidgetID != w.WidgetID {
		t.Error("layout entry not keyed by widget id")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestAddWidgetRefreshPolicy(t *testing.T) {
	store := &fakeDashboardStore{}
	svc := NewDashboardService(store)
	ctx := helpers.TestCtx()

	// Regional endpoints default to the slower cadence.
	w, err := svc.AddWidget(ctx, "u1", dto.CreateWidgetRequest{
		Title: "TCS", Type: dto.VisCard,
		APIEndpoint: "https://stock.indianapi.in/stock?name=TCS",
	})
	if err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if w.RefreshInterval != regionalDefaultRefresh {
		t.Errorf("RefreshInterval = %d, want %d", w.RefreshInterval, regionalDefaultRefresh)
	}

	// Explicit intervals below the floor are clamped, not rejected.
	w, err = svc.AddWidget(ctx, "u1", dto.CreateWidgetRequest{
		Title: "fast", Type: dto.VisCard,
		APIEndpoint:     "https://api.example.com/x",
		RefreshInterval: 1,
	})
	if err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if w.RefreshInterval != minRefresh {
		t.Errorf("RefreshInterval = %d, want clamp to %d", w.RefreshInterval, minRefresh)
	}
}

func TestAddWidgetValidation(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardStore{})
	ctx := helpers.TestCtx()

	cases := []dto.CreateWidgetRequest{
		{Type: dto.VisCard, APIEndpoint: "https://x"},
		{Title: "a", Type: "gauge", APIEndpoint: "https://x"},
		{Title: "a", Type: dto.VisCard},
	}
	for _, req := range cases {
		_, err := svc.AddWidget(ctx, "u1", req)
		var verr *errs.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("AddWidget(%+v) = %v, want ValidationError", req, err)
		}
	}
}

func TestReplaceWidgetPreservesIdentity(t *testing.T) {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeDashboardStore{dashboard: models.Dashboard{
		Widgets: []models.Widget{{
			WidgetID: "w-1", Title: "old", Type: dto.VisCard,
			APIEndpoint: "https://api.example.com/a", RefreshInterval: 60,
			CreatedAt: created,
		}},
		Layout: []models.LayoutItem{{WidgetID: "w-1", W: 4, H: 3}},
	}}
	svc := NewDashboardService(store)

	w, err := svc.ReplaceWidget(helpers.TestCtx(), "u1", "w-1", dto.ReplaceWidgetRequest{
		Title: "new", Type: dto.VisChart,
		APIEndpoint: "https://api.example.com/b",
	})
	if err != nil {
		t.Fatalf("ReplaceWidget: %v", err)
	}
	if w.WidgetID != "w-1" {
		t.Errorf("WidgetID = %q, must be immutable", w.WidgetID)
	}
	if !w.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, must survive replacement", w.CreatedAt)
	}
	if w.Title != "new" || w.Type != dto.VisChart {
		t.Errorf("widget = %+v", w)
	}

	_, err = svc.ReplaceWidget(helpers.TestCtx(), "u1", "nope", dto.ReplaceWidgetRequest{
		Title: "x", Type: dto.VisCard, APIEndpoint: "https://x",
	})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("ReplaceWidget(unknown) = %v, want NotFoundError", err)
	}
}

func TestDeleteWidgetRemovesBothInOneWrite(t *testing.T) {
	store := &fakeDashboardStore{dashboard: models.Dashboard{
		Widgets: []models.Widget{
			{WidgetID: "w-1", Title: "a", Type: dto.VisCard, APIEndpoint: "https://x"},
			{WidgetID: "w-2", Title: "b", Type: dto.VisCard, APIEndpoint: "https://x"},
		},
		Layout: []models.LayoutItem{{WidgetID: "w-1"}, {WidgetID: "w-2"}},
	}}
	svc := NewDashboardService(store)

	if err := svc.DeleteWidget(helpers.TestCtx(), "u1", "w-1"); err != nil {
		t.Fatalf("DeleteWidget: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want a single atomic write", store.saves)
	}
	if len(store.dashboard.Widgets) != 1 || store.dashboard.Widgets[0].WidgetID != "w-2" {
		t.Errorf("widgets = %+v", store.dashboard.Widgets)
	}
	if store.dashboard.LayoutFor("w-1") != nil {
		t.Error("layout entry for deleted widget survived")
	}

	err := svc.DeleteWidget(helpers.TestCtx(), "u1", "w-1")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("double delete = %v, want NotFoundError", err)
	}
}

func TestSaveLayoutReconcilesDrift(t *testing.T) {
	store := &fakeDashboardStore{dashboard: models.Dashboard{
		Widgets: []models.Widget{
			{WidgetID: "w-1", Title: "a", Type: dto.VisCard, APIEndpoint: "https://x"},
			{WidgetID: "w-2", Title: "b", Type: dto.VisCard, APIEndpoint: "https://x"},
		},
		Layout: []models.LayoutItem{{WidgetID: "w-1"}, {WidgetID: "w-2"}},
	}}
	svc := NewDashboardService(store)

	// Client sends an orphan entry and omits w-2 entirely.
	err := svc.SaveLayout(helpers.TestCtx(), "u1", []models.LayoutItem{
		{WidgetID: "w-1", X: 4, Y: 0, W: 4, H: 3},
		{WidgetID: "ghost", X: 0, Y: 0, W: 4, H: 3},
	})
	if err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if store.dashboard.LayoutFor("ghost") != nil {
		t.Error("orphan layout entry persisted")
	}
	if got := store.dashboard.LayoutFor("w-1"); got == nil || got.X != 4 {
		t.Errorf("w-1 layout = %+v", got)
	}
	if store.dashboard.LayoutFor("w-2") == nil {
		t.Error("omitted widget did not get an auto-placed rectangle")
	}
}

func TestGetDashboardRepairsPairing(t *testing.T) {
	store := &fakeDashboardStore{dashboard: models.Dashboard{
		Widgets: []models.Widget{{WidgetID: "w-1", Title: "a", Type: dto.VisCard, APIEndpoint: "https://x"}},
		Layout:  []models.LayoutItem{{WidgetID: "stale"}},
	}}
	svc := NewDashboardService(store)

	d, err := svc.GetDashboard(helpers.TestCtx(), "u1")
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if d.LayoutFor("stale") != nil {
		t.Error("stale layout entry returned")
	}
	if d.LayoutFor("w-1") == nil {
		t.Error("widget missing a layout rectangle")
	}
}

func TestAutoPlacementFillsRows(t *testing.T) {
	store := &fakeDashboardStore{}
	svc := NewDashboardService(store)
	ctx := helpers.TestCtx()

	for i := 0; i < 4; i++ {
		_, err := svc.AddWidget(ctx, "u1", dto.CreateWidgetRequest{
			Title: "w", Type: dto.VisCard, APIEndpoint: "https://api.example.com/x",
		})
		if err != nil {
			t.Fatalf("AddWidget #%d: %v", i, err)
		}
	}
	// Cards are 4 wide on a 12 column grid: three per row.
	layout := store.dashboard.Layout
	if layout[0].Y != 0 || layout[1].Y != 0 || layout[2].Y != 0 {
		t.Errorf("first row = %+v", layout[:3])
	}
	if layout[3].Y == 0 {
		t.Errorf("fourth widget should wrap to a new row: %+v", layout[3])
	}
	if layout[1].X == layout[0].X {
		t.Errorf("widgets overlap: %+v", layout[:2])
	}
}
