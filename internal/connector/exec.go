package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dbgateway/gateway/internal/param"
	"github.com/dbgateway/gateway/internal/sqltext"
)

// Execer is the subset of *sqlx.DB / *sqlx.Tx this package needs to run a
// statement, expressed without importing sqlx so dialect packages can pass
// either a pool or an in-flight transaction through the same code path.
type Execer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExecuteStatements implements the shared half of the execute_sql contract:
// split the input at top-level statement boundaries, run each
// single-statement against begin (which opens a transaction only when there
// is more than one statement, rolling back on the first error), and apply
// the row limiter to every SELECT-shaped statement immediately before
// running it. Dialect packages supply begin/commit/rollback and a plain
// Execer for the common, non-transactional single-statement path.
func ExecuteStatements(
	ctx context.Context,
	dialect sqltext.Dialect,
	sourceName string,
	sqlText string,
	opts ExecuteOptions,
	plain Execer,
	begin func(context.Context) (Execer, func() error, func() error, error),
) (*QueryResult, error) {
	stmts := sqltext.SplitStatements(sqlText, dialect)
	if len(stmts) == 0 {
		return &QueryResult{Statements: []StatementResult{}}, nil
	}

	if len(stmts) == 1 {
		res, err := runStatement(ctx, plain, dialect, stmts[0], opts)
		if err != nil {
			return nil, &ExecutionError{Source: sourceName, Err: err}
		}
		return &QueryResult{Statements: []StatementResult{*res}}, nil
	}

	tx, commit, rollback, err := begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	results := make([]StatementResult, 0, len(stmts))
	for _, stmt := range stmts {
		res, err := runStatement(ctx, tx, dialect, stmt, opts)
		if err != nil {
			rollback()
			return nil, &ExecutionError{Source: sourceName, Err: err}
		}
		results = append(results, *res)
	}
	if err := commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &QueryResult{Statements: results}, nil
}

func runStatement(ctx context.Context, ext Execer, dialect sqltext.Dialect, stmt string, opts ExecuteOptions) (*StatementResult, error) {
	kw := sqltext.FirstKeyword(stmt, dialect)

	finalSQL := stmt
	if opts.MaxRows > 0 && kw == "select" {
		finalSQL = sqltext.ApplyMaxRows(stmt, dialect, opts.MaxRows)
	}

	args := buildArgs(dialect, opts.Params)

	if producesRows(dialect, finalSQL, kw) {
		rows, err := ext.QueryContext(ctx, finalSQL, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		records, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		return &StatementResult{SQL: finalSQL, Rows: records, Count: len(records)}, nil
	}

	result, err := ext.ExecContext(ctx, finalSQL, args...)
	if err != nil {
		return nil, err
	}
	var rowCount *int64
	if n, raErr := result.RowsAffected(); raErr == nil {
		rowCount = &n
	}
	return &StatementResult{SQL: finalSQL, Rows: []map[string]any{}, Count: 0, RowCount: rowCount}, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalizeScanned(vals[i])
		}
		records = append(records, row)
	}
	return records, rows.Err()
}

// normalizeScanned converts []byte (the generic scan destination most
// database/sql drivers use for text/numeric types when no destination type
// is specified) into a string so JSON marshaling doesn't base64-encode it.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func producesRows(dialect sqltext.Dialect, stmt, keyword string) bool {
	switch keyword {
	case "select", "with", "explain", "show", "describe", "desc", "pragma", "values":
		return true
	}
	stripped := strings.ToUpper(sqltext.StripCommentsAndStrings(stmt, dialect))
	return strings.Contains(stripped, "RETURNING")
}

// buildArgs turns a name/index-keyed parameter map into a positional arg
// slice (for the two positional placeholder styles, where map keys are the
// placeholder's 1-based index as a string) or a slice of sql.Named values
// (for the :name style, where map keys are the placeholder names as they
// appear in the query text). database/sql dispatches sql.Named arguments
// to the driver by name regardless of argument order.
func buildArgs(dialect sqltext.Dialect, params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}

	if param.StyleForDialect(dialect) == param.StyleNamed {
		args := make([]any, 0, len(params))
		for name, v := range params {
			args = append(args, sql.Named(name, v))
		}
		return args
	}

	maxIndex := 0
	for k := range params {
		if n, err := strconv.Atoi(k); err == nil && n > maxIndex {
			maxIndex = n
		}
	}
	args := make([]any, maxIndex)
	for k, v := range params {
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= maxIndex {
			args[n-1] = v
		}
	}
	return args
}
