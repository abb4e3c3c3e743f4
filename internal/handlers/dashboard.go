package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/middleware"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
	"github.com/ewhitfield/stockdeck-backend/internal/response"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, uid string) (*models.Dashboard, error)
	AddWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error)
	ReplaceWidget(ctx context.Context, uid, widgetID string, req dto.ReplaceWidgetRequest) (*models.Widget, error)
	DeleteWidget(ctx context.Context, uid, widgetID string) error
}

type WidgetDataService interface {
	GetWidgetData(ctx context.Context, uid, widgetID string) (dto.WidgetData, error)
}

// LayoutQueue is the debounced layout persister: a queued layout lands in
// Firestore on the next flush tick, not during the request.
type LayoutQueue interface {
	Queue(uid string, layout []models.LayoutItem)
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	WidgetDataSvc   WidgetDataService
	LayoutSaver     LayoutQueue
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
		WidgetDataSvc:   deps.WidgetDataSvc,
		LayoutSaver:     deps.LayoutSaver,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Put("/layout", h.SaveLayout)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/{widgetId}", h.ReplaceWidget)
	r.Delete("/widgets/{widgetId}", h.DeleteWidget)
	r.Get("/widgets/{widgetId}/data", h.GetWidgetData)
	return r
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	d, err := h.DashboardSvc.GetDashboard(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, d)
}

// SaveLayout accepts the client's grid arrangement and queues it for the
// debounced flush. 202 signals the write is pending, not durable yet.
func (h *dashboardHandlers) SaveLayout(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	h.LayoutSaver.Queue(uid, req.Layout)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusAccepted, nil)
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.AddWidget(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) ReplaceWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.ReplaceWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.DashboardSvc.ReplaceWidget(r.Context(), uid, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *dashboardHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.DashboardSvc.DeleteWidget(r.Context(), uid, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// GetWidgetData answers 200 even for broken widgets: fetch and parse
// failures are states on the payload. An error here means the widget
// itself could not be loaded.
func (h *dashboardHandlers) GetWidgetData(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	data, err := h.WidgetDataSvc.GetWidgetData(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}
