package setup

import (
	"fmt"

	"github.com/ginclub-dev/ginclub/backend/internal/delivery/email"
	"github.com/ginclub-dev/ginclub/backend/internal/handler"
	"github.com/ginclub-dev/ginclub/backend/internal/service"
	"github.com/ginclub-dev/ginclub/backend/internal/storage/fs"
	"github.com/ginclub-dev/ginclub/backend/internal/storage/memory"
	"github.com/ginclub-dev/ginclub/backend/internal/storage/pg"
	"github.com/ginclub-dev/ginclub/shared/config"
	"github.com/ginclub-dev/ginclub/shared/jwt"
	"github.com/ginclub-dev/ginclub/shared/logger"
	"github.com/ginclub-dev/ginclub/shared/middleware"
)

type Dependencies struct {
	Config         *config.Config
	Storage        service.KeyValue
	Gate           service.GateService
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth

	// Cleanup releases storage resources, nil for backends with nothing to
	// close.
	Cleanup func() error
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	var storage service.KeyValue
	var cleanup func() error

	switch cfg.Public.Storage.Backend {
	case "pg":
		pgStorage, err := pg.New(&cfg.Private.Pg)
		if err != nil {
			return nil, fmt.Errorf("postgres storage: %w", err)
		}
		storage = pgStorage
		cleanup = pgStorage.Cleanup
	case "fs":
		fsStorage, err := fs.New(cfg.Public.Storage.FsPath)
		if err != nil {
			return nil, fmt.Errorf("fs storage: %w", err)
		}
		storage = fsStorage
	default:
		storage = memory.New()
	}
	logger.Log.Info("storage initialized", "backend", cfg.Public.Storage.Backend)

	// Keep delivery a true nil interface when no SMTP server is configured,
	// the gate treats that as "delivery unavailable" and falls back
	var delivery service.Delivery
	if cfg.Private.Email.SMTPServer != "" {
		delivery = email.New(&cfg.Private.Email)
	} else {
		logger.Log.Warn("no smtp server configured, login codes will be disclosed in responses")
	}

	allowlist := service.NewAllowlist(storage, &cfg.Public.Gate)
	gate := service.NewGate(storage, allowlist, delivery, &cfg.Public.Gate)
	widgets := service.NewWidgets(storage)

	jwtService := jwt.New(cfg.JwtKey(), cfg.TokenTTL())

	h := handler.New(gate, allowlist, widgets, storage, cfg, jwtService)
	authMw := middleware.NewAuth(jwtService)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Gate:           gate,
		Handler:        h,
		AuthMiddleware: authMw,
		Cleanup:        cleanup,
	}, nil
}
