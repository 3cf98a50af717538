package middleware

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// RequireRole lets the request through when the principal holds one of the
// allowed roles. Assumes Auth() has already run.
func RequireRole(writeErr WriteErrFunc, allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := access.PrincipalFrom(r.Context())
			if !ok {
				// Auth not applied
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			if err := access.RequireRole(p, allowed...); err != nil {
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
