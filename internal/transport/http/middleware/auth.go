package middleware

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <token> through the gate and injects
// the principal into the request context. The store is not consulted.
func Auth(gate *access.Gate, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := gate.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := access.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
