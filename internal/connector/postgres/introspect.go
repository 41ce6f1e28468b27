package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbgateway/gateway/internal/model"
)

type columnRow struct {
	ColumnName string  `db:"column_name"`
	DataType   string  `db:"data_type"`
	IsNullable string  `db:"is_nullable"`
	Default    *string `db:"column_default"`
	MaxLength  *int64  `db:"character_maximum_length"`
	Position   int     `db:"ordinal_position"`
	UDTName    string  `db:"udt_name"`
}

type indexRow struct {
	IndexName  string `db:"index_name"`
	ColumnName string `db:"column_name"`
	IsUnique   bool   `db:"is_unique"`
}

type parameterRow struct {
	Name      string `db:"parameter_name"`
	DataType  string `db:"data_type"`
	ParamMode string `db:"parameter_mode"`
}

func (c *Connector) resolveSchema(schema string) string {
	if schema != "" {
		return schema
	}
	return c.schemaName
}

// GetSchemas lists non-system schemas visible to the connection.
func (c *Connector) GetSchemas(ctx context.Context) ([]string, error) {
	const query = `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
		AND schema_name NOT LIKE 'pg_%'
		ORDER BY schema_name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get schemas: %w", err)
	}
	return names, nil
}

// GetTables lists base table names in schema (or the connector's default
// schema if schema is empty).
func (c *Connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether table exists in schema.
func (c *Connector) TableExists(ctx context.Context, table, schema string) (bool, error) {
	const query = `SELECT EXISTS(
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2)`

	var exists bool
	if err := c.db.GetContext(ctx, &exists, query, c.resolveSchema(schema), table); err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return exists, nil
}

// GetTableColumns returns normalized column metadata for table.
func (c *Connector) GetTableColumns(ctx context.Context, table, schema string) ([]model.Column, error) {
	resolvedSchema := c.resolveSchema(schema)

	rows, err := c.fetchColumns(ctx, resolvedSchema, table)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	pkSet, err := c.fetchPrimaryKeySet(ctx, resolvedSchema, table)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	columns := make([]model.Column, 0, len(rows))
	for _, row := range rows {
		goType, jsonType := mapPostgresType(row.UDTName, row.DataType)
		columns = append(columns, model.Column{
			Name:            row.ColumnName,
			Position:        row.Position,
			Type:            row.UDTName,
			GoType:          goType,
			JsonType:        jsonType,
			Nullable:        row.IsNullable == "YES",
			Default:         row.Default,
			MaxLength:       row.MaxLength,
			IsPrimaryKey:    pkSet[row.ColumnName],
			IsAutoIncrement: row.Default != nil && strings.Contains(*row.Default, "nextval"),
		})
	}
	return columns, nil
}

// GetTableIndexes returns index metadata for table via the pg_catalog.
func (c *Connector) GetTableIndexes(ctx context.Context, table, schema string) ([]model.Index, error) {
	const query = `SELECT i.relname AS index_name, a.attname AS column_name, ix.indisunique AS is_unique
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relname = $1 AND n.nspname = $2
		ORDER BY i.relname, a.attnum`

	var rows []indexRow
	if err := c.db.SelectContext(ctx, &rows, query, table, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get table indexes: %w", err)
	}

	order := make([]string, 0)
	byName := make(map[string]*model.Index)
	for _, row := range rows {
		idx, ok := byName[row.IndexName]
		if !ok {
			idx = &model.Index{Name: row.IndexName, IsUnique: row.IsUnique}
			byName[row.IndexName] = idx
			order = append(order, row.IndexName)
		}
		idx.Columns = append(idx.Columns, row.ColumnName)
	}

	indexes := make([]model.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

// GetStoredProcedures lists procedure and function names in schema.
func (c *Connector) GetStoredProcedures(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = $1 ORDER BY routine_name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get stored procedures: %w", err)
	}
	return names, nil
}

// GetStoredProcedureDetail returns full metadata for one procedure or
// function, including its parameter list and (when available) its body.
func (c *Connector) GetStoredProcedureDetail(ctx context.Context, name, schema string) (*model.StoredProcedure, error) {
	resolvedSchema := c.resolveSchema(schema)

	type routineDetail struct {
		RoutineType string  `db:"routine_type"`
		DataType    string  `db:"data_type"`
		ExternalLang string `db:"external_language"`
		Definition  *string `db:"routine_definition"`
	}

	const routineQuery = `SELECT routine_type, data_type, external_language, routine_definition
		FROM information_schema.routines
		WHERE routine_schema = $1 AND routine_name = $2
		LIMIT 1`

	var rd routineDetail
	if err := c.db.GetContext(ctx, &rd, routineQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q not found in schema %q: %w", name, resolvedSchema, err)
	}

	const paramQuery = `SELECT parameter_name, data_type, parameter_mode
		FROM information_schema.parameters
		WHERE specific_schema = $1 AND specific_name IN (
			SELECT specific_name FROM information_schema.routines
			WHERE routine_schema = $1 AND routine_name = $2)
		ORDER BY ordinal_position`

	var paramRows []parameterRow
	if err := c.db.SelectContext(ctx, &paramRows, paramQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q parameters: %w", name, err)
	}

	params := make([]model.ProcedureParam, 0, len(paramRows))
	for _, p := range paramRows {
		params = append(params, model.ProcedureParam{
			Name:      p.Name,
			Type:      p.DataType,
			Direction: strings.ToLower(p.ParamMode),
		})
	}

	kind := "function"
	if strings.ToUpper(rd.RoutineType) == "PROCEDURE" {
		kind = "procedure"
	}

	body := ""
	if rd.Definition != nil {
		body = *rd.Definition
	}

	return &model.StoredProcedure{
		Name:       name,
		Kind:       kind,
		Language:   strings.ToLower(rd.ExternalLang),
		ReturnType: rd.DataType,
		Parameters: params,
		Body:       body,
	}, nil
}

func (c *Connector) fetchColumns(ctx context.Context, schema, table string) ([]columnRow, error) {
	const query = `SELECT column_name, data_type, is_nullable, column_default,
			character_maximum_length, ordinal_position, udt_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, schema, table); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Connector) fetchPrimaryKeySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1 AND tc.table_name = $2`

	var cols []string
	if err := c.db.SelectContext(ctx, &cols, query, schema, table); err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(cols))
	for _, col := range cols {
		set[col] = true
	}
	return set, nil
}

// mapPostgresType maps a PostgreSQL UDT name and data_type to a Go type
// string and a JSON Schema type string.
func mapPostgresType(udtName, dataType string) (goType, jsonType string) {
	switch strings.ToLower(udtName) {
	case "int2", "smallint":
		return "int32", "integer"
	case "int4", "integer", "serial":
		return "int32", "integer"
	case "int8", "bigint", "bigserial":
		return "int64", "integer"
	case "float4", "real":
		return "float32", "number"
	case "float8", "double precision":
		return "float64", "number"
	case "numeric", "decimal":
		return "float64", "number"
	case "varchar", "character varying", "char", "character", "text", "name", "citext":
		return "string", "string"
	case "bool", "boolean":
		return "bool", "boolean"
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone":
		return "time.Time", "string(date-time)"
	case "date":
		return "time.Time", "string(date)"
	case "time", "timetz", "time without time zone", "time with time zone":
		return "string", "string(time)"
	case "uuid":
		return "string", "string(uuid)"
	case "json", "jsonb":
		return "interface{}", "object"
	case "bytea":
		return "[]byte", "string(byte)"
	case "inet", "cidr", "macaddr":
		return "string", "string"
	case "interval":
		return "string", "string"
	case "point", "line", "lseg", "box", "path", "polygon", "circle":
		return "string", "string"
	case "xml":
		return "string", "string"
	case "money":
		return "string", "string"
	case "tsvector", "tsquery":
		return "string", "string"
	default:
		lower := strings.ToLower(dataType)
		if lower == "array" {
			return "interface{}", "array"
		}
		if lower == "user-defined" {
			return "string", "string"
		}
		return "interface{}", "string"
	}
}
