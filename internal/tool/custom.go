package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/param"
	"github.com/dbgateway/gateway/internal/sqltext"
)

// builtinNamePrefixes are the name patterns a custom tool must not collide
// with.
var builtinNamePrefixes = []string{"execute_sql", "search_objects", "redis_command", "elasticsearch_search"}

// CustomToolDef is one user-defined SQL tool as loaded from
// configuration: a name, description, bound source id, SQL statement with
// placeholders, and a typed parameter list.
type CustomToolDef struct {
	Name        string
	Description string
	Source      string
	Statement   string
	Parameters  []param.Spec
}

// registeredCustomTool is a CustomToolDef after validation,
// carrying the dialect-resolved annotations and placeholder style needed
// at dispatch time.
type registeredCustomTool struct {
	def         CustomToolDef
	dialect     sqltext.Dialect
	readOnly    bool
	destructive bool
	idempotent  bool
}

// LoadCustomTools validates every definition — required fields, source
// existence, name collisions, placeholder/schema agreement, per-parameter
// constraints — and attaches the survivors to the registry for RegisterAll
// to wire up.
// It fails fast on the first invalid definition, naming which one and why
// — a misconfigured custom tool aborts startup rather than degrading
// silently.
func (r *Registry) LoadCustomTools(defs []CustomToolDef) error {
	seen := make(map[string]bool, len(defs))
	out := make([]*registeredCustomTool, 0, len(defs))

	for _, def := range defs {
		if def.Name == "" || def.Description == "" || def.Source == "" || def.Statement == "" {
			return fmt.Errorf("custom tool %q: name, description, source, and statement are all required", def.Name)
		}

		cfg, ok := r.manager.Config(def.Source)
		if !ok {
			return fmt.Errorf("custom tool %q: source %q does not exist", def.Name, def.Source)
		}

		if collidesWithBuiltin(def.Name) {
			return fmt.Errorf("custom tool %q: name collides with a built-in tool name pattern", def.Name)
		}
		if seen[def.Name] {
			return fmt.Errorf("custom tool %q: duplicate tool name", def.Name)
		}

		for _, p := range def.Parameters {
			if err := validateParamSpec(p); err != nil {
				return fmt.Errorf("custom tool %q: parameter %q: %w", def.Name, p.Name, err)
			}
		}

		dialect := sqltext.DialectFromDriver(cfg.Type)
		placeholders := param.Enumerate(def.Statement, dialect)
		if err := param.ValidateSchema(dialect, def.Parameters, placeholders); err != nil {
			return fmt.Errorf("custom tool %q: %w", def.Name, err)
		}

		kw := sqltext.FirstKeyword(def.Statement, dialect)
		readOnly := sqltext.IsReadOnlyMulti(def.Statement, dialect)
		out = append(out, &registeredCustomTool{
			def:         def,
			dialect:     dialect,
			readOnly:    readOnly,
			destructive: kw == "delete" || kw == "drop" || kw == "truncate",
			idempotent:  readOnly || kw == "update" || kw == "delete",
		})
		seen[def.Name] = true
	}

	r.custom = out
	return nil
}

func collidesWithBuiltin(name string) bool {
	for _, p := range builtinNamePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// validateParamSpec checks one declared parameter: a valid
// type, a non-empty description, a non-empty allowed_values list when
// present, and a default that satisfies allowed_values when both are set.
func validateParamSpec(p param.Spec) error {
	switch p.Type {
	case param.TypeString, param.TypeInteger, param.TypeFloat, param.TypeBoolean, param.TypeArray:
	default:
		return fmt.Errorf("invalid type %q", p.Type)
	}
	if p.Description == "" {
		return fmt.Errorf("description is required")
	}
	if p.AllowedValues != nil && len(p.AllowedValues) == 0 {
		return fmt.Errorf("allowed_values must be non-empty when present")
	}
	if p.Default != nil && len(p.AllowedValues) > 0 {
		found := false
		for _, v := range p.AllowedValues {
			if fmt.Sprintf("%v", v) == fmt.Sprintf("%v", p.Default) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("default %v is not in allowed_values", p.Default)
		}
	}
	return nil
}

// registerCustomTool wires a validated custom tool's MCP schema and
// dispatch closure onto srv.
func (r *Registry) registerCustomTool(srv *server.MCPServer, ct *registeredCustomTool) {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.def.Description)}
	readOnly := ct.readOnly
	destructive := ct.destructive
	idempotent := ct.idempotent
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    &readOnly,
		DestructiveHint: &destructive,
		IdempotentHint:  &idempotent,
	}))

	for _, p := range ct.def.Parameters {
		opts = append(opts, mcp.WithString(p.Name, mcp.Description(p.Description)))
	}

	srv.AddTool(mcp.NewTool(ct.def.Name, opts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return r.dispatchCustomTool(ctx, ct, request)
	})
}

func (r *Registry) dispatchCustomTool(ctx context.Context, ct *registeredCustomTool, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	toolName := ct.def.Name

	args := request.GetArguments()
	bound, err := param.Bind(ct.def.Parameters, args)
	if err != nil {
		return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, nil, err)
	}

	conn, execOpts, err := r.resolveSource(ct.def.Source)
	if err != nil {
		return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, nil, err)
	}

	if execOpts.ReadOnly && !ct.readOnly {
		rerr := &ReadOnlyViolationError{SourceID: ct.def.Source, Allowed: sqltext.AllowedKeywords(ct.dialect)}
		return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, nil, rerr)
	}

	sqlConn, ok := conn.(connector.SQLConnector)
	if !ok {
		return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, nil, &connector.ExecutionError{Source: ct.def.Source, Err: errNotSQL})
	}

	execOpts.Params = positionalize(ct.dialect, ct.def.Parameters, bound)

	execCtx, cancel := withDeadline(ctx, execOpts)
	defer cancel()

	result, err := sqlConn.ExecuteSQL(execCtx, ct.def.Statement, execOpts)
	if err != nil {
		return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, nil, err)
	}

	data := map[string]any{
		"statements": result.Statements,
		"source_id":  ct.def.Source,
	}
	return r.finish(ctx, ct.def.Source, toolName, ct.def.Statement, start, data, nil)
}

// positionalize translates a name-keyed bound argument map into the
// key convention connector.ExecuteStatements' buildArgs expects: parameter
// names verbatim for the :name style, or the 1-based declaration-order
// index as a string for the two positional styles (declaration order is
// the tool definition's contract for which placeholder each parameter
// fills).
func positionalize(d sqltext.Dialect, declared []param.Spec, bound map[string]any) map[string]any {
	if param.StyleForDialect(d) == param.StyleNamed {
		return bound
	}
	out := make(map[string]any, len(bound))
	for i, spec := range declared {
		if v, ok := bound[spec.Name]; ok {
			out[strconv.Itoa(i+1)] = v
		}
	}
	return out
}
