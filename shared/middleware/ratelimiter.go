package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/ginclub-dev/ginclub/shared/middleware/ratelimiter"
	"github.com/ginclub-dev/ginclub/shared/utils"
)

func RateLimit(rl *ratelimiter.IdentityRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if member := GetMemberFromContext(r); member != nil && member.Admin { // disable for admin
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.IdentityRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetMemberIdentity rate limits by the email of the verified member.
// Possible only after auth middleware ran.
func GetMemberIdentity(r *http.Request) (string, error) {
	member := GetMemberFromContext(r)
	if member == nil {
		return "", errors.New("can't get member identity")
	}
	return "member_" + member.Email, nil
}

// GetIP extracts the real client IP from RemoteAddr.
// Does NOT trust X-Real-IP or X-Forwarded-For headers (no reverse proxy).
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Fallback: RemoteAddr without port
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}

// GetEmailFromBody extracts the email from a JSON request body for rate
// limiting. It reads the body and restores it so the handler can read it again.
func GetEmailFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", errors.New("invalid request body")
	}

	if data.Email == "" {
		return "", errors.New("email field is required")
	}

	return data.Email, nil
}
