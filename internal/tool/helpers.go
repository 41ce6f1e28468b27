package tool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dbgateway/gateway/internal/connector"
)

// withDeadline derives the per-invocation context deadline from the
// source's request_timeout clamp. A zero timeout means no deadline.
func withDeadline(ctx context.Context, opts connector.ExecuteOptions) (context.Context, context.CancelFunc) {
	if opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, opts.RequestTimeout)
	}
	return ctx, func() {}
}

// requireString extracts a required string argument from a tool request,
// returning a *missingArgError, which classify maps to MISSING_PARAMETER.
func requireString(request mcp.CallToolRequest, key string) (string, error) {
	val, err := request.RequireString(key)
	if err != nil {
		return "", &missingArgError{key}
	}
	return val, nil
}

func optionalString(request mcp.CallToolRequest, key, def string) string {
	return request.GetString(key, def)
}

func optionalInt(request mcp.CallToolRequest, key string, def int) int {
	return request.GetInt(key, def)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// missingArgError marks a required tool-envelope argument (not a custom
// tool parameter, which param.MissingRequiredParameterError covers) as
// absent from the call.
type missingArgError struct{ name string }

func (e *missingArgError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.name)
}
