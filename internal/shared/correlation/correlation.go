// Package correlation threads one opaque identifier through a request's whole
// causal chain: inbound header, log records, published envelopes, response
// header. Automated jobs synthesize their own identifier since no inbound
// request exists.
package correlation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the correlation header propagated on requests and echoed on
// responses.
const Header = "X-Correlation-Id"

type contextKey struct{}

// WithID returns a context carrying the given correlation id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id carried by ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Ensure returns the id carried by ctx, generating and attaching a fresh one
// when absent or blank.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := strings.TrimSpace(FromContext(ctx)); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithID(ctx, id), id
}

// Synthesize builds a correlation id for an automated action, e.g.
// "stale-detector-<uuid>".
func Synthesize(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
