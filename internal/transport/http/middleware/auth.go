package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/family-connect/internal/domain"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type sessionLookup interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Authenticate verifies a Bearer JWT when one is present and injects its claims
// into the context. Requests without a header pass through untouched because
// the single endpoint serves public and private request types alike; the
// dispatcher decides which types need claims. A present but invalid token, or
// one whose session was logged out, is rejected with 401.
func Authenticate(verifier tokenVerifier, sessions sessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if sessions != nil {
				sess, err := sessions.Get(r.Context(), claims.SessionID)
				switch {
				case errors.Is(err, domain.ErrNotFound), err == nil && !sess.Enable:
					writeJSONError(w, http.StatusUnauthorized, "session expired")
					return
				case err != nil:
					slog.Error("session lookup failed", "session_id", claims.SessionID, "err", err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
