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

type CredentialService interface {
	Create(ctx context.Context, uid string, req dto.CreateCredentialRequest) (dto.CredentialSummary, error)
	List(ctx context.Context, uid string) ([]dto.CredentialSummary, error)
	Delete(ctx context.Context, uid, id string) error
}

type credentialHandlers struct {
	ResponseHandler response.ResponseHandler
	CredentialSvc   CredentialService
}

func NewCredentialHandlers(deps *Deps) *credentialHandlers {
	return &credentialHandlers{
		ResponseHandler: deps.ResponseHandler,
		CredentialSvc:   deps.CredentialSvc,
	}
}

func (h *credentialHandlers) CredentialRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateCredential)
	r.Get("/", h.ListCredentials)
	r.Delete("/{keyId}", h.DeleteCredential)
	return r
}

func (h *credentialHandlers) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	sum, err := h.CredentialSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, sum)
}

func (h *credentialHandlers) ListCredentials(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	sums, err := h.CredentialSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, sums)
}

func (h *credentialHandlers) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyId")
	uid := middleware.UID(r.Context())
	if err := h.CredentialSvc.Delete(r.Context(), uid, keyID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
