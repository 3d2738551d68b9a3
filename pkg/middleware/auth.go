// Package middleware provides HTTP middleware shared by all feature routers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/whopaid/whopaid/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// UserIDKey is the context key for the authenticated user ID.
const UserIDKey ContextKey = "user_id"

// Auth returns middleware that verifies the bearer token issued by the
// external identity provider and puts the caller's user ID on the context.
//
// Tokens are HS256-signed JWTs whose "sub" claim is the provider-issued
// user UUID. If secret is empty (local development without the provider),
// the X-Debug-User-ID header is accepted instead.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				if userID, err := uuid.Parse(r.Header.Get("X-Debug-User-ID")); err == nil {
					next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
					return
				}
				response.Unauthorized(w, "X-Debug-User-ID header required when auth is disabled")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := verifyToken(parts[1], secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

func verifyToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return uuid.Nil, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

func withUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
