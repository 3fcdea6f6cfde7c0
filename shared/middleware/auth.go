package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ginclub-dev/ginclub/shared/domain"
	jwt_internal "github.com/ginclub-dev/ginclub/shared/jwt"
	"github.com/ginclub-dev/ginclub/shared/logger"
	"github.com/ginclub-dev/ginclub/shared/utils"
)

// Key to store the member claims in the request context
type key int

const MemberClaimsKey key = 0

// Auth holds dependencies for the member-gate middleware
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedMember returns middleware that requires a verified member token
func (a *Auth) NeedMember() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly returns middleware that requires an admin member token
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// extractMember extracts and validates the member from the request token.
func (a *Auth) extractMember(r *http.Request) (*domain.Member, error) {
	// Cookie first (browser clients), Authorization header as fallback
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, errInvalidClaims
	}

	isAdmin, ok := claims["admin"].(bool)
	if !ok {
		return nil, errInvalidClaims
	}

	return &domain.Member{Email: email, Admin: isAdmin}, nil
}

var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member, err := a.extractMember(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please verify your email first", http.StatusUnauthorized)
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					http.Error(w, "Invalid token", http.StatusUnauthorized)
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			if adminOnly && !member.Admin {
				http.Error(w, "Access denied. Only for admin", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), MemberClaimsKey, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetMemberFromContext returns the member set by auth middleware, or nil.
func GetMemberFromContext(r *http.Request) *domain.Member {
	member, _ := r.Context().Value(MemberClaimsKey).(*domain.Member)
	return member
}
