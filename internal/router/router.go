package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ewhitfield/stockdeck-backend/internal/handlers"
	"github.com/ewhitfield/stockdeck-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ch := handlers.NewCredentialHandlers(deps)
	dh := handlers.NewDashboardHandlers(deps)
	wh := handlers.NewWizardHandlers(deps)

	auth := middleware.NewMiddleware(deps.Firebase)

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/api-keys", ch.CredentialRoutes())
		r.Mount("/dashboard", dh.DashboardRoutes())
		r.Mount("/wizard", wh.WizardRoutes())
	})

	return r
}
