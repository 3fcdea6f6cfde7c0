package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ginclub-dev/ginclub/backend/internal/setup"
	"github.com/ginclub-dev/ginclub/shared/middleware"
	"github.com/ginclub-dev/ginclub/shared/middleware/metrics"
	"github.com/ginclub-dev/ginclub/shared/middleware/ratelimiter"
)

const backendCSP = "default-src 'none'; frame-ancestors 'none'"

func New(deps *setup.Dependencies) *mux.Router {
	h := deps.Handler
	cfg := deps.Config

	r := mux.NewRouter()
	r.Use(handlers.CompressHandler)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(cfg.Public.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	))
	r.Use(middleware.SecurityHeadersWithCSP(cfg.Public.SecureCookies, backendCSP))
	r.Use(metrics.Middleware)

	// Preflight requests match here so CORS headers get attached by the
	// middleware above
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/ready", h.Ready).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/public_config", h.GetPublicConfig).Methods("GET")

	// The gate already throttles resends per pending email; these limits
	// guard against scripted abuse across many addresses.
	sendCode := v1.PathPrefix("/gate/send_code").Subrouter()
	sendCode.Use(middleware.RateLimit(ratelimiter.New(1.0/10, 3, time.Hour), middleware.GetEmailFromBody))
	sendCode.Use(middleware.RateLimit(ratelimiter.New(1.0/5, 10, time.Hour), middleware.GetIP))
	sendCode.Use(middleware.GlobalRateLimit(ratelimiter.New(10, 30, time.Hour)))
	sendCode.HandleFunc("", h.SendCode).Methods("POST")

	verifyCode := v1.PathPrefix("/gate/verify_code").Subrouter()
	verifyCode.Use(middleware.RateLimit(ratelimiter.New(1.0/5, 10, time.Hour), middleware.GetIP))
	verifyCode.Use(middleware.GlobalRateLimit(ratelimiter.New(10, 30, time.Hour)))
	verifyCode.HandleFunc("", h.VerifyCode).Methods("POST")

	v1.HandleFunc("/gate/session", h.GetSession).Methods("GET")
	v1.HandleFunc("/gate/logout", h.Logout).Methods("POST")

	members := v1.PathPrefix("/widgets").Subrouter()
	members.Use(deps.AuthMiddleware.NeedMember())
	members.Use(middleware.RateLimit(ratelimiter.New(5, 30, time.Hour), middleware.GetMemberIdentity))
	members.HandleFunc("/notes/preview", h.PreviewNotes).Methods("POST")
	members.HandleFunc("/{widget}", h.GetWidget).Methods("GET")
	members.HandleFunc("/{widget}", h.PutWidget).Methods("PUT")

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(deps.AuthMiddleware.AdminOnly())
	admin.HandleFunc("/allowlist", h.GetAllowlist).Methods("GET")
	admin.HandleFunc("/allowlist", h.ReplaceAllowlist).Methods("PUT")
	admin.HandleFunc("/allowlist/add", h.AddAllowlistEntry).Methods("POST")
	admin.HandleFunc("/allowlist/remove", h.RemoveAllowlistEntry).Methods("POST")
	admin.HandleFunc("/allowlist/reset", h.ResetAllowlist).Methods("POST")

	return r
}
