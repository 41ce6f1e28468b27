package tool

import (
	"context"
	"fmt"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/model"
)

// searchObjectsArgs is the bound, validated form of search_objects's
// schema: object_type, pattern (LIKE-style, default "%"), schema,
// detail_level (names/summary/full, default "names"), and limit (≤1000,
// default 100).
type searchObjectsArgs struct {
	ObjectType  string
	Pattern     string
	Schema      string
	DetailLevel string
	Limit       int
}

// tableSummary is the summary/full detail payload for one matched table.
type tableSummary struct {
	Name    string          `json:"name"`
	Columns []model.Column  `json:"columns,omitempty"`
	Indexes []model.Index   `json:"indexes,omitempty"`
}

// columnMatch is one matched column, qualified by its owning table — the
// schema doesn't carry a separate "table" argument, so column search
// sweeps every table and reports matches with their table of origin.
type columnMatch struct {
	Table  string       `json:"table"`
	Column model.Column `json:"column"`
}

// indexMatch is one matched index, qualified by its owning table.
type indexMatch struct {
	Table string      `json:"table"`
	Index model.Index `json:"index"`
}

// procedureMatch is one matched stored procedure/function, with its full
// detail only populated at detail_level=full.
type procedureMatch struct {
	Name   string                   `json:"name"`
	Detail *model.StoredProcedure   `json:"detail,omitempty"`
}

// runSearchObjects dispatches to the introspector method appropriate for
// args.ObjectType, filters results by args.Pattern (LIKE-style over the
// object's name), and caps the result at args.Limit.
func runSearchObjects(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	switch args.ObjectType {
	case "schema":
		return searchSchemas(ctx, conn, args)
	case "table":
		return searchTables(ctx, conn, args)
	case "column":
		return searchColumns(ctx, conn, args)
	case "procedure":
		return searchProcedures(ctx, conn, args)
	case "index":
		return searchIndexes(ctx, conn, args)
	default:
		return nil, fmt.Errorf("unknown object_type %q; expected one of schema, table, column, procedure, index", args.ObjectType)
	}
}

func searchSchemas(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	names, err := conn.GetSchemas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if matchesLike(n, args.Pattern) {
			out = append(out, n)
		}
		if len(out) >= args.Limit {
			break
		}
	}
	return out, nil
}

func searchTables(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	names, err := conn.GetTables(ctx, args.Schema)
	if err != nil {
		return nil, err
	}

	if args.DetailLevel == "names" {
		out := make([]string, 0, len(names))
		for _, n := range names {
			if matchesLike(n, args.Pattern) {
				out = append(out, n)
			}
			if len(out) >= args.Limit {
				break
			}
		}
		return out, nil
	}

	out := make([]tableSummary, 0, len(names))
	for _, n := range names {
		if !matchesLike(n, args.Pattern) {
			continue
		}
		ts := tableSummary{Name: n}
		cols, err := conn.GetTableColumns(ctx, n, args.Schema)
		if err != nil {
			return nil, err
		}
		ts.Columns = cols
		if args.DetailLevel == "full" {
			idx, err := conn.GetTableIndexes(ctx, n, args.Schema)
			if err != nil {
				return nil, err
			}
			ts.Indexes = idx
		}
		out = append(out, ts)
		if len(out) >= args.Limit {
			break
		}
	}
	return out, nil
}

func searchColumns(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	tables, err := conn.GetTables(ctx, args.Schema)
	if err != nil {
		return nil, err
	}
	out := make([]columnMatch, 0)
	for _, t := range tables {
		cols, err := conn.GetTableColumns(ctx, t, args.Schema)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			if !matchesLike(c.Name, args.Pattern) {
				continue
			}
			out = append(out, columnMatch{Table: t, Column: c})
			if len(out) >= args.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func searchIndexes(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	tables, err := conn.GetTables(ctx, args.Schema)
	if err != nil {
		return nil, err
	}
	out := make([]indexMatch, 0)
	for _, t := range tables {
		idx, err := conn.GetTableIndexes(ctx, t, args.Schema)
		if err != nil {
			return nil, err
		}
		for _, i := range idx {
			if !matchesLike(i.Name, args.Pattern) {
				continue
			}
			out = append(out, indexMatch{Table: t, Index: i})
			if len(out) >= args.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func searchProcedures(ctx context.Context, conn connector.SchemaIntrospector, args searchObjectsArgs) (any, error) {
	names, err := conn.GetStoredProcedures(ctx, args.Schema)
	if err != nil {
		return nil, err
	}
	out := make([]procedureMatch, 0, len(names))
	for _, n := range names {
		if !matchesLike(n, args.Pattern) {
			continue
		}
		pm := procedureMatch{Name: n}
		if args.DetailLevel == "full" {
			detail, err := conn.GetStoredProcedureDetail(ctx, n, args.Schema)
			if err != nil {
				return nil, err
			}
			pm.Detail = detail
		}
		out = append(out, pm)
		if len(out) >= args.Limit {
			break
		}
	}
	return out, nil
}
