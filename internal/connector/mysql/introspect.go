package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbgateway/gateway/internal/model"
)

type columnRow struct {
	ColumnName string  `db:"COLUMN_NAME"`
	DataType   string  `db:"DATA_TYPE"`
	ColumnType string  `db:"COLUMN_TYPE"`
	IsNullable string  `db:"IS_NULLABLE"`
	Default    *string `db:"COLUMN_DEFAULT"`
	MaxLength  *int64  `db:"CHARACTER_MAXIMUM_LENGTH"`
	Position   int     `db:"ORDINAL_POSITION"`
	Extra      string  `db:"EXTRA"`
	Comment    string  `db:"COLUMN_COMMENT"`
}

type indexRow struct {
	IndexName  string `db:"INDEX_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
	NonUnique  int    `db:"NON_UNIQUE"`
}

type routineRow struct {
	RoutineName string `db:"ROUTINE_NAME"`
	RoutineType string `db:"ROUTINE_TYPE"`
	DataType    string `db:"DTD_IDENTIFIER"`
	Definition  *string `db:"ROUTINE_DEFINITION"`
}

type routineParamRow struct {
	ParameterName *string `db:"PARAMETER_NAME"`
	DataType      string  `db:"DTD_IDENTIFIER"`
	ParameterMode *string `db:"PARAMETER_MODE"`
}

func (c *Connector) resolveSchema(schema string) string {
	if schema != "" {
		return schema
	}
	return c.schemaName
}

// GetSchemas lists non-system schemas visible to the connection.
func (c *Connector) GetSchemas(ctx context.Context) ([]string, error) {
	const query = `SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA
		WHERE SCHEMA_NAME NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY SCHEMA_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get schemas: %w", err)
	}
	return names, nil
}

// GetTables lists base table names in schema (or the connector's default
// schema if schema is empty).
func (c *Connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether table exists in schema.
func (c *Connector) TableExists(ctx context.Context, table, schema string) (bool, error) {
	const query = `SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`

	var count int
	if err := c.db.GetContext(ctx, &count, query, c.resolveSchema(schema), table); err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return count > 0, nil
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
		goType, jsonType := mapMySQLType(row.DataType, row.ColumnType)
		columns = append(columns, model.Column{
			Name:            row.ColumnName,
			Position:        row.Position,
			Type:            row.ColumnType,
			GoType:          goType,
			JsonType:        jsonType,
			Nullable:        row.IsNullable == "YES",
			Default:         row.Default,
			MaxLength:       row.MaxLength,
			IsPrimaryKey:    pkSet[row.ColumnName],
			IsAutoIncrement: strings.Contains(row.Extra, "auto_increment"),
			Comment:         row.Comment,
		})
	}
	return columns, nil
}

// GetTableIndexes returns index metadata for table via INFORMATION_SCHEMA.STATISTICS.
func (c *Connector) GetTableIndexes(ctx context.Context, table, schema string) ([]model.Index, error) {
	const query = `SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND INDEX_NAME != 'PRIMARY'
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`

	var rows []indexRow
	if err := c.db.SelectContext(ctx, &rows, query, c.resolveSchema(schema), table); err != nil {
		return nil, fmt.Errorf("get table indexes: %w", err)
	}

	order := make([]string, 0)
	byName := make(map[string]*model.Index)
	for _, row := range rows {
		idx, ok := byName[row.IndexName]
		if !ok {
			idx = &model.Index{Name: row.IndexName, IsUnique: row.NonUnique == 0}
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
	const query = `SELECT ROUTINE_NAME FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = ? ORDER BY ROUTINE_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get stored procedures: %w", err)
	}
	return names, nil
}

// GetStoredProcedureDetail returns full metadata for one procedure or
// function, including its parameter list and body.
func (c *Connector) GetStoredProcedureDetail(ctx context.Context, name, schema string) (*model.StoredProcedure, error) {
	resolvedSchema := c.resolveSchema(schema)

	const routineQuery = `SELECT ROUTINE_NAME, ROUTINE_TYPE, DTD_IDENTIFIER, ROUTINE_DEFINITION
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = ? AND ROUTINE_NAME = ?
		LIMIT 1`

	var rr routineRow
	if err := c.db.GetContext(ctx, &rr, routineQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q not found in schema %q: %w", name, resolvedSchema, err)
	}

	const paramQuery = `SELECT PARAMETER_NAME, DTD_IDENTIFIER, PARAMETER_MODE
		FROM INFORMATION_SCHEMA.PARAMETERS
		WHERE SPECIFIC_SCHEMA = ? AND SPECIFIC_NAME = ?
		ORDER BY ORDINAL_POSITION`

	var paramRows []routineParamRow
	if err := c.db.SelectContext(ctx, &paramRows, paramQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q parameters: %w", name, err)
	}

	params := make([]model.ProcedureParam, 0, len(paramRows))
	for _, p := range paramRows {
		if p.ParameterName == nil {
			continue // return-value pseudo-parameter
		}
		mode := "in"
		if p.ParameterMode != nil {
			mode = strings.ToLower(*p.ParameterMode)
		}
		params = append(params, model.ProcedureParam{
			Name:      *p.ParameterName,
			Type:      p.DataType,
			Direction: mode,
		})
	}

	kind := "function"
	if strings.ToUpper(rr.RoutineType) == "PROCEDURE" {
		kind = "procedure"
	}

	body := ""
	if rr.Definition != nil {
		body = *rr.Definition
	}

	return &model.StoredProcedure{
		Name:       name,
		Kind:       kind,
		ReturnType: rr.DataType,
		Parameters: params,
		Body:       body,
	}, nil
}

func (c *Connector) fetchColumns(ctx context.Context, schema, table string) ([]columnRow, error) {
	const query = `SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
			CHARACTER_MAXIMUM_LENGTH, ORDINAL_POSITION, EXTRA, COLUMN_COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, schema, table); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Connector) fetchPrimaryKeySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'`

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

// mapMySQLType maps a MySQL DATA_TYPE/COLUMN_TYPE pair to a Go type string
// and a JSON Schema type string.
func mapMySQLType(dataType, columnType string) (goType, jsonType string) {
	lower := strings.ToLower(dataType)

	if lower == "tinyint" && strings.Contains(strings.ToLower(columnType), "tinyint(1)") {
		return "bool", "boolean"
	}

	switch lower {
	case "tinyint", "smallint", "mediumint", "int", "integer":
		return "int32", "integer"
	case "bigint":
		return "int64", "integer"
	case "float":
		return "float32", "number"
	case "double":
		return "float64", "number"
	case "decimal", "numeric":
		return "float64", "number"
	case "varchar", "char", "text", "tinytext", "mediumtext", "longtext", "enum", "set":
		return "string", "string"
	case "datetime", "timestamp":
		return "time.Time", "string(date-time)"
	case "date":
		return "time.Time", "string(date)"
	case "time":
		return "string", "string(time)"
	case "year":
		return "int32", "integer"
	case "json":
		return "interface{}", "object"
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return "[]byte", "string(byte)"
	case "bit":
		return "[]byte", "string(byte)"
	default:
		return "interface{}", "string"
	}
}
