package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwtinfra "github.com/bloodcamp-api/internal/infrastructure/jwt"
	"github.com/bloodcamp-api/internal/pkg/authz"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// PrincipalResolver loads the account behind a verified token.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject, kind string) (*authz.Principal, error)
}

// Auth returns middleware that validates the Bearer JWT, resolves the caller
// from storage and injects the principal into context. Requests without a
// usable token pass through without a principal; RequireRoles rejects them
// on guarded routes.
func Auth(verifier TokenVerifier, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			p, err := resolver.Resolve(r.Context(), claims.Subject, claims.Kind)
			if err != nil {
				slog.Debug("principal not resolved", "kind", claims.Kind, "subject", claims.Subject, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the resolved caller from the request context.
func PrincipalFromContext(ctx context.Context) (*authz.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*authz.Principal)
	return p, ok && p != nil
}
