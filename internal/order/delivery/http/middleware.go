package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/supplycore/fulfillment/pkg/auth"
	"github.com/supplycore/fulfillment/pkg/logger"
)

type contextKey string

const (
	// UserIDKey carries the authenticated user id in the request context
	UserIDKey contextKey = "user_id"
	// UsernameKey carries the authenticated username in the request context
	UsernameKey contextKey = "username"
	// RoleKey carries the authenticated role in the request context
	RoleKey contextKey = "role"
)

// OptionalAuthMiddleware validates a JWT token if present but doesn't require
// it. Transitions record the identified caller as the audit actor; anonymous
// calls are attributed to "system".
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			claims, err := auth.ValidateToken(parts[1])
			if err == nil {
				logger.Logger.Debug().
					Uint("user_id", claims.UserID).
					Str("username", claims.Username).
					Msg("Optional auth: User identified")

				ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
				ctx = context.WithValue(ctx, UsernameKey, claims.Username)
				ctx = context.WithValue(ctx, RoleKey, claims.Role)
				r = r.WithContext(ctx)
			} else {
				logger.Logger.Warn().Err(err).Msg("Optional auth: Invalid token ignored")
			}
		}

		next.ServeHTTP(w, r)
	})
}

// actorFrom resolves the audit actor for a request: the authenticated
// username when present, then the X-User-ID header, else "system".
func actorFrom(r *http.Request) string {
	if username, ok := r.Context().Value(UsernameKey).(string); ok && username != "" {
		return username
	}
	if id := r.Header.Get("X-User-ID"); id != "" {
		return "user:" + id
	}
	return "system"
}
