package handler

import (
	"net/http"

	"github.com/ginclub-dev/ginclub/shared/domain"
	"github.com/ginclub-dev/ginclub/shared/utils"
)

type sendCodeRequest struct {
	Email string `validate:"required" json:"email"`
}

type sendCodeResponse struct {
	Status       string `json:"status"`
	FallbackCode string `json:"fallback_code,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var body sendCodeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	receipt, err := h.gate.Send(body.Email)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := sendCodeResponse{Status: "sent", ExpiresAt: receipt.ExpiresAt.UnixMilli()}
	if !receipt.Delivered {
		// Delivery could not be confirmed, the code is disclosed to the
		// requester's own interface instead
		resp.Status = "fallback"
		resp.FallbackCode = receipt.FallbackCode
	}
	writeJSON(w, resp)
}

type verifyCodeRequest struct {
	Code string `validate:"required" json:"code"`
}

type sessionResponse struct {
	AccessGranted bool   `json:"access_granted"`
	Email         string `json:"email,omitempty"`
	Admin         bool   `json:"admin,omitempty"`
}

func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body verifyCodeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	session, err := h.gate.Verify(body.Code)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	admin := h.cfg.Public.Gate.IsAdmin(session.Email)
	accessToken, err := h.jwt.NewToken(domain.Member{Email: session.Email, Admin: admin})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	cookie := &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   int(h.cfg.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)

	writeJSON(w, sessionResponse{AccessGranted: true, Email: session.Email, Admin: admin})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := h.gate.Session()
	writeJSON(w, sessionResponse{
		AccessGranted: session.AccessGranted,
		Email:         session.Email,
		Admin:         session.AccessGranted && h.cfg.Public.Gate.IsAdmin(session.Email),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Logout()

	cookie := &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)

	w.WriteHeader(http.StatusOK)
}

type publicConfigResponse struct {
	ResendDelaySeconds int      `json:"resend_delay_seconds"`
	CodeTTLMinutes     int      `json:"code_ttl_minutes"`
	SessionTTLHours    int      `json:"session_ttl_hours"`
	AllowedDomains     []string `json:"allowed_domains"`
}

// GetPublicConfig exposes the gate timings the frontend needs for its
// countdowns and hints.
func (h *Handler) GetPublicConfig(w http.ResponseWriter, r *http.Request) {
	gate := &h.cfg.Public.Gate
	writeJSON(w, publicConfigResponse{
		ResendDelaySeconds: int(gate.ResendDelay().Seconds()),
		CodeTTLMinutes:     int(gate.CodeTTL().Minutes()),
		SessionTTLHours:    gate.SessionTTLHours,
		AllowedDomains:     gate.AllowedDomains,
	})
}
