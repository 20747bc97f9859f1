package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// RoleLookup returns the current role of a user. A missing user must be
// reported as an apperr not_found error.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID uint) (string, error)
}

// Authenticate validates the Bearer token, loads the user's current role and
// stores an auth.Identity in the request context. Missing or invalid tokens
// and unknown users get 401; users whose role is in blocked get 403.
func Authenticate(users RoleLookup, blocked ...string) func(http.Handler) http.Handler {
	deny := make(map[string]bool, len(blocked))
	for _, role := range blocked {
		deny[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				response.Error(w, apperr.KindUnauthorized, "Authentication token is missing")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, apperr.KindUnauthorized, "Invalid token")
				return
			}

			role, err := users.RoleOf(r.Context(), claims.UserID)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					response.Error(w, apperr.KindUnauthorized, "User not found")
					return
				}
				logger.WithCtx(r.Context()).Error("auth: role lookup failed", "user_id", claims.UserID, "error", err)
				response.Fail(w, err)
				return
			}
			if deny[role] {
				response.Error(w, apperr.KindForbidden, "Your account has been blocked")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
