package middleware

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	appCtx "github.com/baechuer/real-time-ressys/services/user-service/internal/pkg/context"
)

const (
	HeaderXRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// RequestID accepts a caller-supplied id when it is sane, otherwise mints a
// uuid, echoes it back and stores it with the client address in the context.
// Mount chi's RealIP first so RemoteAddr reflects the proxy headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderXRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, id)

		ctx := appCtx.WithRequestMeta(r.Context(), appCtx.RequestMeta{
			ID:       id,
			RemoteIP: remoteIP(r.RemoteAddr),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
