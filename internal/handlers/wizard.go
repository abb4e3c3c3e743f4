package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/middleware"
	"github.com/ewhitfield/stockdeck-backend/internal/response"
)

type WizardManager interface {
	Start(ctx context.Context, uid string) dto.WizardSessionView
	Get(ctx context.Context, uid, sessionID string) (dto.WizardSessionView, error)
	Apply(ctx context.Context, uid, sessionID string, ev dto.WizardEvent) (dto.WizardSessionView, error)
}

type wizardHandlers struct {
	ResponseHandler response.ResponseHandler
	Wizard          WizardManager
}

func NewWizardHandlers(deps *Deps) *wizardHandlers {
	return &wizardHandlers{
		ResponseHandler: deps.ResponseHandler,
		Wizard:          deps.Wizard,
	}
}

func (h *wizardHandlers) WizardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartSession)
	r.Get("/{sessionId}", h.GetSession)
	r.Post("/{sessionId}/events", h.ApplyEvent)
	return r
}

func (h *wizardHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	v := h.Wizard.Start(r.Context(), uid)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, v)
}

func (h *wizardHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	uid := middleware.UID(r.Context())
	v, err := h.Wizard.Get(r.Context(), uid, sessionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, v)
}

func (h *wizardHandlers) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	var ev dto.WizardEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	v, err := h.Wizard.Apply(r.Context(), uid, sessionID, ev)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, v)
}
