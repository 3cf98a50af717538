// Package context carries per-request metadata that logging and error
// rendering need but handlers never set themselves.
package context

import "context"

type metaKey struct{}

// RequestMeta is attached once by the request-id middleware.
type RequestMeta struct {
	ID       string
	RemoteIP string
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	m, ok := ctx.Value(metaKey{}).(RequestMeta)
	return m, ok
}

// RequestID is shorthand for RequestMetaFrom(ctx).ID.
func RequestID(ctx context.Context) string {
	m, _ := RequestMetaFrom(ctx)
	return m.ID
}
