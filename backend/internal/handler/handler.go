package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ginclub-dev/ginclub/backend/internal/service"
	"github.com/ginclub-dev/ginclub/shared/config"
	"github.com/ginclub-dev/ginclub/shared/jwt"
	"github.com/ginclub-dev/ginclub/shared/logger"
)

// Pinger is the readiness probe dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	gate      service.GateService
	allowlist service.AllowlistService
	widgets   service.WidgetsService
	health    Pinger
	cfg       *config.Config
	jwt       jwt.JwtService
}

func New(gate service.GateService, allowlist service.AllowlistService, widgets service.WidgetsService, health Pinger, cfg *config.Config, jwt jwt.JwtService) *Handler {
	return &Handler{gate, allowlist, widgets, health, cfg, jwt}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
