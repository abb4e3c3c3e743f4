package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/pkg/logger"
)

type dashboardStore struct {
	client *firestore.Client
}

func NewDashboardStore(client *firestore.Client) *dashboardStore {
	return &dashboardStore{client: client}
}

func (s *dashboardStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection("dashboards").Doc(uid)
}

// Get loads the user's dashboard. A user who has never saved gets an empty
// dashboard, not an error.
func (s *dashboardStore) Get(ctx context.Context, uid string) (*models.Dashboard, error) {
	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &models.Dashboard{}, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get dashboard", err)
	}
	return decodeDashboard(ctx, snap)
}

// Save writes widgets and layout in one merge-set, creating the document on
// first save. Fields other than the two owned here survive.
func (s *dashboardStore) Save(ctx context.Context, uid string, d *models.Dashboard) error {
	_, err := s.doc(uid).Set(ctx, map[string]any{
		"widgets":   d.Widgets,
		"layout":    d.Layout,
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to save dashboard", err)
	}
	return nil
}

// Subscribe streams the user's dashboard to fn, starting with the current
// state. It blocks until ctx is canceled or the watch fails.
func (s *dashboardStore) Subscribe(ctx context.Context, uid string, fn func(*models.Dashboard)) error {
	it := s.doc(uid).Snapshots(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled {
				return nil
			}
			return errs.NewDatabaseError("watch", "dashboard watch failed", err)
		}
		if !snap.Exists() {
			fn(&models.Dashboard{})
			continue
		}
		d, err := decodeDashboard(ctx, snap)
		if err != nil {
			logger.FromContext(ctx).Error("skipping undecodable dashboard snapshot", "uid", uid, "error", err)
			continue
		}
		fn(d)
	}
}

// SubscribeAll streams every user's dashboard to fn, keyed by uid. The
// initial query snapshot delivers all existing dashboards; later snapshots
// deliver changes. A deleted document arrives as an empty dashboard.
func (s *dashboardStore) SubscribeAll(ctx context.Context, fn func(uid string, d *models.Dashboard)) error {
	log := logger.FromContext(ctx)
	it := s.client.Collection("dashboards").Snapshots(ctx)
	defer it.Stop()
	for {
		qs, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled {
				return nil
			}
			return errs.NewDatabaseError("watch", "dashboards watch failed", err)
		}
		for _, change := range qs.Changes {
			uid := change.Doc.Ref.ID
			if change.Kind == firestore.DocumentRemoved {
				fn(uid, &models.Dashboard{})
				continue
			}
			d, err := decodeDashboard(ctx, change.Doc)
			if err != nil {
				log.Error("skipping undecodable dashboard snapshot", "uid", uid, "error", err)
				continue
			}
			fn(uid, d)
		}
	}
}

// decodeDashboard tolerates layout entries written by older clients: grid
// items keyed by "i" instead of "widgetId", numbers stored as floats, and
// non-map junk, which is dropped.
func decodeDashboard(ctx context.Context, snap *firestore.DocumentSnapshot) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := snap.DataTo(&d); err == nil && layoutIntact(d.Layout) {
		return &d, nil
	}

	raw := snap.Data()
	d = models.Dashboard{}
	if ws, ok := raw["widgets"].([]any); ok {
		for _, w := range ws {
			m, ok := w.(map[string]any)
			if !ok {
				continue
			}
			d.Widgets = append(d.Widgets, coerceWidget(m))
		}
	}
	if ls, ok := raw["layout"].([]any); ok {
		for _, l := range ls {
			m, ok := l.(map[string]any)
			if !ok {
				continue
			}
			item, ok := coerceLayoutItem(m)
			if !ok {
				logger.FromContext(ctx).Warn("dropping layout entry with no widget id")
				continue
			}
			d.Layout = append(d.Layout, item)
		}
	}
	return &d, nil
}

func layoutIntact(layout []models.LayoutItem) bool {
	for _, l := range layout {
		if l.WidgetID == "" {
			return false
		}
	}
	return true
}

func coerceLayoutItem(m map[string]any) (models.LayoutItem, bool) {
	id := asString(m["widgetId"])
	if id == "" {
		id = asString(m["i"])
	}
	if id == "" {
		return models.LayoutItem{}, false
	}
	return models.LayoutItem{
		WidgetID: id,
		X:        asInt(m["x"]),
		Y:        asInt(m["y"]),
		W:        asInt(m["w"]),
		H:        asInt(m["h"]),
		MinW:     asInt(m["minW"]),
		MinH:     asInt(m["minH"]),
	}, true
}

func coerceWidget(m map[string]any) models.Widget {
	w := models.Widget{
		WidgetID:        asString(m["widgetId"]),
		Title:           asString(m["title"]),
		Type:            asString(m["type"]),
		APIEndpoint:     asString(m["apiEndpoint"]),
		CredentialID:    asString(m["credentialId"]),
		RefreshInterval: asInt(m["refreshInterval"]),
	}
	if dm, ok := m["dataMapping"].(map[string]any); ok {
		w.DataMapping = make(map[string]string, len(dm))
		for k, v := range dm {
			w.DataMapping[k] = asString(v)
		}
	}
	if pc, ok := m["providerConfig"].(map[string]any); ok {
		w.ProviderConfig = &models.ProviderWidgetConfig{WidgetType: asString(pc["widgetType"])}
	}
	if t, ok := m["createdAt"].(time.Time); ok {
		w.CreatedAt = t
	}
	if t, ok := m["updatedAt"].(time.Time); ok {
		w.UpdatedAt = t
	}
	return w
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
