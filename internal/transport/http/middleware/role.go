package middleware

import (
	"net/http"

	"github.com/bloodcamp-api/internal/pkg/authz"
)

// RequireRoles returns middleware that admits only principals the
// authorization table permits for the given route tokens.
func RequireRoles(tokens ...authz.Token) func(http.Handler) http.Handler {
	required := authz.NewSet(tokens...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			d := authz.Authorize(p, required)
			if d.Permit {
				next.ServeHTTP(w, r)
				return
			}
			status := http.StatusForbidden
			if d.Reason == authz.ReasonNoToken {
				status = http.StatusUnauthorized
			}
			writeJSONError(w, status, d.Reason.Message())
		})
	}
}
