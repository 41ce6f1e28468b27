package tool

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dbgateway/gateway/internal/connector"
)

// registerRedisCommand registers redis_command[_<source>].
func (r *Registry) registerRedisCommand(srv *server.MCPServer, sourceID, suffix string) {
	srv.AddTool(
		mcp.NewTool("redis_command"+suffix,
			mcp.WithDescription("Run a whitespace-tokenized Redis command (e.g. \"HSET user:2 name Bob\") against the "+sourceID+" source."),
			mcp.WithString("command", mcp.Required(), mcp.Description("Redis command line")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return r.dispatchCommand(ctx, sourceID, "redis_command", "command", request)
		},
	)
}

// registerElasticsearchSearch registers elasticsearch_search[_<source>].
func (r *Registry) registerElasticsearchSearch(srv *server.MCPServer, sourceID, suffix string) {
	srv.AddTool(
		mcp.NewTool("elasticsearch_search"+suffix,
			mcp.WithDescription("Run a search against the "+sourceID+" source. Accepts JSON {index?, query?, aggs?, size?} or the simplified \"field:value\" syntax."),
			mcp.WithString("query", mcp.Required(), mcp.Description("JSON search body or simplified \"index:logs status:error\" syntax")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return r.dispatchCommand(ctx, sourceID, "elasticsearch_search", "query", request)
		},
	)
}

// dispatchCommand is shared by the two protocol-specific tools: both bind
// a single required string argument straight through to
// CommandConnector.ExecuteCommand with no SQL classification or row
// limiting, since neither protocol speaks the SQL dialect the classifier
// and row limiter operate on. max_rows is still passed through for Redis's
// KEYS truncation.
func (r *Registry) dispatchCommand(ctx context.Context, sourceID, toolName, argName string, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	text, err := requireString(request, argName)
	if err != nil {
		return r.finish(ctx, sourceID, toolName, "", start, nil, err)
	}

	conn, opts, err := r.resolveSource(sourceID)
	if err != nil {
		return r.finish(ctx, sourceID, toolName, text, start, nil, err)
	}

	cmdConn, ok := conn.(connector.CommandConnector)
	if !ok {
		return r.finish(ctx, sourceID, toolName, text, start, nil, &connector.ExecutionError{Source: sourceID, Err: errNotCommand})
	}

	execCtx, cancel := withDeadline(ctx, opts)
	defer cancel()

	result, err := cmdConn.ExecuteCommand(execCtx, text, opts)
	if err != nil {
		return r.finish(ctx, sourceID, toolName, text, start, nil, err)
	}

	return r.finish(ctx, sourceID, toolName, text, start, withSourceID(result.Value, sourceID), nil)
}

// withSourceID merges source_id into a command result's Value when it's
// already a map (both the Redis {value,type} and Elasticsearch
// {hits,aggregations} shapes are), falling back to a wrapper otherwise.
func withSourceID(value any, sourceID string) any {
	if m, ok := value.(map[string]any); ok {
		out := make(map[string]any, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		out["source_id"] = sourceID
		return out
	}
	return map[string]any{"value": value, "source_id": sourceID}
}
