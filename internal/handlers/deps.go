package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/ewhitfield/stockdeck-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	CredentialSvc   CredentialService
	DashboardSvc    DashboardService
	WidgetDataSvc   WidgetDataService
	LayoutSaver     LayoutQueue
	Wizard          WizardManager
	Firebase        *auth.Client
}
