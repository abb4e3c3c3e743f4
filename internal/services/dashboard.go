package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/internal/provider"
	"github.com/ewhitfield/stockdeck-backend/pkg/logger"
)

// Grid geometry for auto-placed widgets.
const (
	gridColumns = 12
	defaultW    = 4
	defaultH    = 3
	defaultMinW = 2
	defaultMinH = 2
	chartW      = 6
	chartH      = 4
)

// Refresh interval policy, in seconds.
const (
	defaultRefresh         = 60
	regionalDefaultRefresh = 300
	minRefresh             = 5
)

// dashboardStore is the Firestore storage interface for the per-user
// dashboard document.
type dashboardStore interface {
	Get(ctx context.Context, uid string) (*models.Dashboard, error)
	Save(ctx context.Context, uid string, d *models.Dashboard) error
}

type dashboardService struct {
	store dashboardStore
}

func NewDashboardService(store dashboardStore) *dashboardService {
	return &dashboardService{store: store}
}

// GetDashboard returns the dashboard with the widget/layout pairing
// repaired in memory. The repaired form is not written back here; the next
// save persists it.
func (s *dashboardService) GetDashboard(ctx context.Context, uid string) (*models.Dashboard, error) {
	d, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	reconcile(ctx, d)
	return d, nil
}

func (s *dashboardService) AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	w := models.Widget{
		WidgetID:        uuid.New().String(),
		Title:           req.Title,
		Type:            req.Type,
		APIEndpoint:     req.APIEndpoint,
		CredentialID:    req.CredentialID,
		RefreshInterval: req.RefreshInterval,
		DataMapping:     req.DataMapping,
		ProviderConfig:  req.ProviderConfig,
	}
	if err := validateWidget(&w); err != nil {
		return nil, err
	}
	applyRefreshPolicy(&w)
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	d, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	d.Widgets = append(d.Widgets, w)
	d.Layout = append(d.Layout, placeWidget(d.Layout, &w))
	if err := s.store.Save(ctx, uid, d); err != nil {
		return nil, err
	}
	return &w, nil
}

// ReplaceWidget swaps a widget's full configuration. The id and creation
// time survive; everything else comes from the request.
func (s *dashboardService) ReplaceWidget(ctx context.Context, uid, widgetID string, req dto.ReplaceWidgetRequest) (*models.Widget, error) {
	d, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	existing := d.Widget(widgetID)
	if existing == nil {
		return nil, errs.NewNotFoundError("widget not found")
	}
	w := models.Widget{
		WidgetID:        widgetID,
		Title:           req.Title,
		Type:            req.Type,
		APIEndpoint:     req.APIEndpoint,
		CredentialID:    req.CredentialID,
		RefreshInterval: req.RefreshInterval,
		DataMapping:     req.DataMapping,
		ProviderConfig:  req.ProviderConfig,
		CreatedAt:       existing.CreatedAt,
		UpdatedAt:       time.Now(),
	}
	if err := validateWidget(&w); err != nil {
		return nil, err
	}
	applyRefreshPolicy(&w)
	*existing = w
	if err := s.store.Save(ctx, uid, d); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWidget removes the widget and its layout rectangle in one write, so
// no observer ever sees one without the other.
func (s *dashboardService) DeleteWidget(ctx context.Context, uid, widgetID string) error {
	d, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	if d.Widget(widgetID) == nil {
		return errs.NewNotFoundError("widget not found")
	}
	widgets := d.Widgets[:0]
	for _, w := range d.Widgets {
		if w.WidgetID != widgetID {
			widgets = append(widgets, w)
		}
	}
	d.Widgets = widgets
	layout := d.Layout[:0]
	for _, l := range d.Layout {
		if l.WidgetID != widgetID {
			layout = append(layout, l)
		}
	}
	d.Layout = layout
	return s.store.Save(ctx, uid, d)
}

// SaveLayout persists a client-sent grid arrangement, reconciled against
// the stored widget set: entries for unknown widgets are dropped, widgets
// the client omitted get auto-placed rectangles.
func (s *dashboardService) SaveLayout(ctx context.Context, uid string, layout []models.LayoutItem) error {
	d, err := s.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	d.Layout = layout
	reconcile(ctx, d)
	return s.store.Save(ctx, uid, d)
}

func validateWidget(w *models.Widget) error {
	if strings.TrimSpace(w.Title) == "" {
		return errs.NewValidationError("title is required")
	}
	switch w.Type {
	case dto.VisCard, dto.VisChart, dto.VisTable:
	default:
		return errs.NewValidationError("type must be card, chart or table")
	}
	if strings.TrimSpace(w.APIEndpoint) == "" {
		return errs.NewValidationError("apiEndpoint is required")
	}
	return nil
}

// applyRefreshPolicy fills the provider-aware default and clamps the floor.
// The regional provider meters aggressively, so its widgets default slower.
func applyRefreshPolicy(w *models.Widget) {
	if w.RefreshInterval == 0 {
		if provider.Identify(*w, nil) == provider.KindRegionalStock {
			w.RefreshInterval = regionalDefaultRefresh
		} else {
			w.RefreshInterval = defaultRefresh
		}
	}
	if w.RefreshInterval < minRefresh {
		w.RefreshInterval = minRefresh
	}
}

// placeWidget picks the first free spot below all existing rectangles.
func placeWidget(layout []models.LayoutItem, w *models.Widget) models.LayoutItem {
	item := models.LayoutItem{
		WidgetID: w.WidgetID,
		W:        defaultW,
		H:        defaultH,
		MinW:     defaultMinW,
		MinH:     defaultMinH,
	}
	if w.Type == dto.VisChart || w.Type == dto.VisTable {
		item.W = chartW
		item.H = chartH
	}
	bottom := 0
	rowWidth := 0
	for _, l := range layout {
		if l.Y+l.H > bottom {
			bottom = l.Y + l.H
		}
	}
	// Fill the current bottom row left to right before opening a new one.
	for _, l := range layout {
		if l.Y+l.H == bottom {
			rowWidth += l.W
		}
	}
	if rowWidth+item.W <= gridColumns && bottom > 0 {
		for _, l := range layout {
			if l.Y+l.H == bottom {
				if l.X+l.W > item.X {
					item.X = l.X + l.W
				}
				item.Y = l.Y
			}
		}
	} else {
		item.X = 0
		item.Y = bottom
	}
	return item
}

// reconcile restores the widget/layout one-to-one pairing in place.
func reconcile(ctx context.Context, d *models.Dashboard) {
	log := logger.FromContext(ctx)
	known := make(map[string]bool, len(d.Widgets))
	for _, w := range d.Widgets {
		known[w.WidgetID] = true
	}
	layout := d.Layout[:0]
	seen := make(map[string]bool, len(d.Layout))
	for _, l := range d.Layout {
		if !known[l.WidgetID] {
			log.Warn("dropping layout entry for unknown widget", "widget_id", l.WidgetID)
			continue
		}
		if seen[l.WidgetID] {
			continue
		}
		seen[l.WidgetID] = true
		layout = append(layout, l)
	}
	d.Layout = layout
	for i := range d.Widgets {
		if !seen[d.Widgets[i].WidgetID] {
			d.Layout = append(d.Layout, placeWidget(d.Layout, &d.Widgets[i]))
		}
	}
}
