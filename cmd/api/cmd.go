package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/bootstrap"
	"github.com/ewhitfield/stockdeck-backend/internal/config"
	"github.com/ewhitfield/stockdeck-backend/internal/crypto"
	"github.com/ewhitfield/stockdeck-backend/internal/handlers"
	"github.com/ewhitfield/stockdeck-backend/internal/response"
	"github.com/ewhitfield/stockdeck-backend/internal/router"
	"github.com/ewhitfield/stockdeck-backend/internal/services"
	"github.com/ewhitfield/stockdeck-backend/internal/store"
	"github.com/ewhitfield/stockdeck-backend/internal/wizard"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// secret cipher: Cloud KMS when a key is configured, local AES-GCM
	// otherwise
	var cipher crypto.Cipher
	if cfg.KMSKeyName != "" {
		cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	} else {
		cipher, err = crypto.NewAESGCM(cfg.LocalKeyHex)
		exitOnError("local cipher init failed", err, bs.Log)
	}

	// stores
	cstore := store.NewCredentialStore(bs.Firestore)
	dstore := store.NewDashboardStore(bs.Firestore)

	// services
	cserv := services.NewCredentialService(cstore, cipher, nil)
	if bs.Secrets != nil {
		vault := store.NewSecretsStore(bs.Secrets, cfg.ProjectID)
		cserv = services.NewCredentialService(cstore, cipher, vault)
	}
	dserv := services.NewDashboardService(dstore)
	wserv := services.NewWidgetDataService(dstore, cserv, services.NewProviderHTTPClient(cfg.HTTPTimeout))
	saver := services.NewLayoutSaver(dserv, bs.Log)
	wiz := wizard.NewManager(wserv, dserv)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.CredentialSvc = cserv
	deps.DashboardSvc = dserv
	deps.WidgetDataSvc = wserv
	deps.LayoutSaver = saver
	deps.Wizard = wiz

	// router
	r := router.NewRouter(deps)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			exitOnError("server start failed", err, bs.Log)
		}
	}()
	bs.Log.Info("listening", "port", cfg.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// pending layout writes first, then the listener
	saver.Flush(shutdownCtx)
	err = srv.Shutdown(shutdownCtx)
	exitOnError("shutdown failed", err, bs.Log)
}
