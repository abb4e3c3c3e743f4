package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ewhitfield/stockdeck-backend/internal/bootstrap"
	"github.com/ewhitfield/stockdeck-backend/internal/config"
	"github.com/ewhitfield/stockdeck-backend/internal/crypto"
	"github.com/ewhitfield/stockdeck-backend/internal/poll"
	"github.com/ewhitfield/stockdeck-backend/internal/services"
	"github.com/ewhitfield/stockdeck-backend/internal/store"
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
	wserv := services.NewWidgetDataService(dstore, cserv, services.NewProviderHTTPClient(cfg.HTTPTimeout))

	mgr := poll.NewManager(wserv, dstore, bs.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bs.Log.Info("poller starting")
	if err := mgr.Run(ctx); err != nil && ctx.Err() == nil {
		exitOnError("poller stopped", err, bs.Log)
	}
}
