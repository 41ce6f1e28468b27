package tool

import "context"

// clientIDKey is the context key an HTTP transport's context function uses
// to stash the caller's attribution for the Request Record. HTTP sessions
// are identified by their User-Agent header; anything else (in practice,
// stdio) is identified by the literal string "stdio".
type clientIDKey struct{}

// WithClientIdentifier returns a context carrying the given client
// identifier. The HTTP transport's context function calls this once per
// request with the incoming User-Agent header.
func WithClientIdentifier(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIdentifier extracts the caller's attribution from ctx, defaulting
// to "stdio" when no context function set one (the stdio transport's
// context function sets "stdio" explicitly).
func ClientIdentifier(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey{}).(string); ok && v != "" {
		return v
	}
	return "stdio"
}
