package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nutridash/dashboard/internal/ports/inbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// TokenValidator checks a bearer token. inbound.UserService satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*inbound.TokenClaims, error)
}

// Authenticate rejects requests without a valid bearer token
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, apperrors.NewUnauthorizedError("Authorization header required"))
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, r, apperrors.Wrap(err, "Invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through anonymously. A malformed or expired token is
// still rejected.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, r, apperrors.Wrap(err, "Invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects requests that OptionalAuth let through anonymously
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			writeError(w, r, apperrors.NewUnauthorizedError("Authorization header required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims stores the caller identity in ctx
func WithClaims(ctx context.Context, claims *inbound.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the authenticated caller, if any
func ClaimsFromContext(ctx context.Context) (*inbound.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*inbound.TokenClaims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
