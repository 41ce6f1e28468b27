package tool

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/sqltext"
)

func readOnlyAnnotation() mcp.ToolAnnotation {
	t := true
	return mcp.ToolAnnotation{ReadOnlyHint: &t}
}

// registerExecuteSQL registers execute_sql[_<source>] bound to
// sourceID by closure.
func (r *Registry) registerExecuteSQL(srv *server.MCPServer, sourceID, suffix string) {
	srv.AddTool(
		mcp.NewTool("execute_sql"+suffix,
			mcp.WithDescription("Execute one or more semicolon-separated SQL statements against the "+sourceID+" source. Read-only sources reject any statement that isn't select/with/explain/show-shaped."),
			mcp.WithString("sql", mcp.Required(), mcp.Description("SQL text to execute")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return r.dispatchExecuteSQL(ctx, sourceID, request)
		},
	)
}

func (r *Registry) dispatchExecuteSQL(ctx context.Context, sourceID string, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	sql, err := requireString(request, "sql")
	if err != nil {
		return r.finish(ctx, sourceID, "execute_sql", "", start, nil, err)
	}

	conn, opts, err := r.resolveSource(sourceID)
	if err != nil {
		return r.finish(ctx, sourceID, "execute_sql", sql, start, nil, err)
	}

	dialect := sqltext.DialectFromDriver(conn.DriverName())
	if opts.ReadOnly && !sqltext.IsReadOnlyMulti(sql, dialect) {
		err := &ReadOnlyViolationError{SourceID: sourceID, Allowed: sqltext.AllowedKeywords(dialect)}
		return r.finish(ctx, sourceID, "execute_sql", sql, start, nil, err)
	}

	sqlConn, ok := conn.(connector.SQLConnector)
	if !ok {
		return r.finish(ctx, sourceID, "execute_sql", sql, start, nil, &connector.ExecutionError{Source: sourceID, Err: errNotSQL})
	}

	execCtx, cancel := withDeadline(ctx, opts)
	defer cancel()

	result, err := sqlConn.ExecuteSQL(execCtx, sql, opts)
	if err != nil {
		return r.finish(ctx, sourceID, "execute_sql", sql, start, nil, err)
	}

	data := map[string]any{
		"statements": result.Statements,
		"source_id":  sourceID,
	}
	return r.finish(ctx, sourceID, "execute_sql", sql, start, data, nil)
}

// registerSearchObjects registers search_objects[_<source>].
func (r *Registry) registerSearchObjects(srv *server.MCPServer, sourceID, suffix string) {
	srv.AddTool(
		mcp.NewTool("search_objects"+suffix,
			mcp.WithDescription("Introspect the "+sourceID+" source: schemas, tables, columns, procedures, or indexes matching a LIKE-style pattern."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("object_type", mcp.Required(), mcp.Description("One of: schema, table, column, procedure, index")),
			mcp.WithString("pattern", mcp.Description("LIKE-style pattern ('%' and '_' wildcards); default '%'")),
			mcp.WithString("schema", mcp.Description("Schema to search within; default is the source's configured schema")),
			mcp.WithString("detail_level", mcp.Description("One of: names, summary, full; default 'names'")),
			mcp.WithNumber("limit", mcp.Description("Maximum matches to return, up to 1000; default 100")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return r.dispatchSearchObjects(ctx, sourceID, request)
		},
	)
}

func (r *Registry) dispatchSearchObjects(ctx context.Context, sourceID string, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	objectType, err := requireString(request, "object_type")
	if err != nil {
		return r.finish(ctx, sourceID, "search_objects", "", start, nil, err)
	}
	pattern := optionalString(request, "pattern", "%")
	schemaName := optionalString(request, "schema", "")
	detailLevel := optionalString(request, "detail_level", "names")
	limit := clampInt(optionalInt(request, "limit", 100), 1, 1000)

	cmd := objectType + " pattern=" + pattern

	conn, opts, err := r.resolveSource(sourceID)
	if err != nil {
		return r.finish(ctx, sourceID, "search_objects", cmd, start, nil, err)
	}

	introspector, ok := conn.(connector.SchemaIntrospector)
	if !ok {
		return r.finish(ctx, sourceID, "search_objects", cmd, start, nil, &connector.ExecutionError{Source: sourceID, Err: errNotIntrospectable})
	}

	searchCtx, cancel := withDeadline(ctx, opts)
	defer cancel()

	result, err := runSearchObjects(searchCtx, introspector, searchObjectsArgs{
		ObjectType:  objectType,
		Pattern:     pattern,
		Schema:      schemaName,
		DetailLevel: detailLevel,
		Limit:       limit,
	})
	if err != nil {
		return r.finish(ctx, sourceID, "search_objects", cmd, start, nil, err)
	}

	data := map[string]any{
		"objects":   result,
		"source_id": sourceID,
	}
	return r.finish(ctx, sourceID, "search_objects", cmd, start, data, nil)
}

// resolveSource resolves a connector and its policy clamp together, the
// first step of every tool dispatch.
func (r *Registry) resolveSource(sourceID string) (connector.Connector, connector.ExecuteOptions, error) {
	conn, err := r.manager.GetCurrentConnector(sourceID)
	if err != nil {
		return nil, connector.ExecuteOptions{}, err
	}
	opts, err := r.manager.GetCurrentExecuteOptions(sourceID)
	if err != nil {
		return nil, connector.ExecuteOptions{}, err
	}
	return conn, opts, nil
}

// finish builds the success or failure response envelope and records the
// invocation in the Request Store, regardless of
// outcome.
func (r *Registry) finish(ctx context.Context, sourceID, toolName, sqlOrCommand string, start time.Time, data any, err error) (*mcp.CallToolResult, error) {
	rec := recordFor(ctx, sourceID, toolName, sqlOrCommand, start, err)
	r.record(rec)

	if err != nil {
		return errorResult(classify(err), err.Error())
	}
	return successResult(data)
}
