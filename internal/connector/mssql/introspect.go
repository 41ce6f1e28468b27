package mssql

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbgateway/gateway/internal/model"
)

type columnRow struct {
	ColumnName string  `db:"COLUMN_NAME"`
	DataType   string  `db:"DATA_TYPE"`
	IsNullable string  `db:"IS_NULLABLE"`
	Default    *string `db:"COLUMN_DEFAULT"`
	MaxLength  *int64  `db:"CHARACTER_MAXIMUM_LENGTH"`
	Position   int     `db:"ORDINAL_POSITION"`
}

type identityRow struct {
	ColumnName string `db:"column_name"`
}

type fkRow struct {
	ColumnName       string `db:"COLUMN_NAME"`
	ReferencedTable  string `db:"REFERENCED_TABLE_NAME"`
	ReferencedColumn string `db:"REFERENCED_COLUMN_NAME"`
	DeleteRule       string `db:"DELETE_RULE"`
	UpdateRule       string `db:"UPDATE_RULE"`
}

type indexRow struct {
	IndexName  string `db:"index_name"`
	ColumnName string `db:"column_name"`
	IsUnique   bool   `db:"is_unique"`
}

type routineRow struct {
	RoutineType string  `db:"ROUTINE_TYPE"`
	DataType    *string `db:"DATA_TYPE"`
	Definition  *string `db:"ROUTINE_DEFINITION"`
}

type routineParamRow struct {
	ParameterName *string `db:"PARAMETER_NAME"`
	DataType      string  `db:"DATA_TYPE"`
	ParameterMode string  `db:"PARAMETER_MODE"`
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
		WHERE SCHEMA_NAME NOT IN ('sys', 'guest', 'INFORMATION_SCHEMA',
			'db_owner', 'db_accessadmin', 'db_securityadmin', 'db_ddladmin',
			'db_backupoperator', 'db_datareader', 'db_datawriter',
			'db_denydatareader', 'db_denydatawriter')
		ORDER BY SCHEMA_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get schemas: %w", err)
	}
	return names, nil
}

// GetTables lists base table names in schema (or the connector's default
// schema, "dbo", if schema is empty).
func (c *Connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
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
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2`

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

	identitySet, err := c.fetchIdentitySet(ctx, resolvedSchema, table)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	columns := make([]model.Column, 0, len(rows))
	for _, row := range rows {
		goType, jsonType := mapMSSQLType(row.DataType)
		columns = append(columns, model.Column{
			Name:            row.ColumnName,
			Position:        row.Position,
			Type:            row.DataType,
			GoType:          goType,
			JsonType:        jsonType,
			Nullable:        row.IsNullable == "YES",
			Default:         row.Default,
			MaxLength:       row.MaxLength,
			IsPrimaryKey:    pkSet[row.ColumnName],
			IsAutoIncrement: identitySet[row.ColumnName],
		})
	}
	return columns, nil
}

// GetTableIndexes returns index metadata for table via sys.indexes.
func (c *Connector) GetTableIndexes(ctx context.Context, table, schema string) ([]model.Index, error) {
	const query = `SELECT i.name AS index_name, c.name AS column_name, i.is_unique AS is_unique
		FROM sys.indexes i
		JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
		JOIN sys.tables t ON i.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		WHERE s.name = @p1 AND t.name = @p2 AND i.is_primary_key = 0 AND i.name IS NOT NULL
		ORDER BY i.name, ic.key_ordinal`

	var rows []indexRow
	if err := c.db.SelectContext(ctx, &rows, query, c.resolveSchema(schema), table); err != nil {
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
	const query = `SELECT ROUTINE_NAME FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = @p1 ORDER BY ROUTINE_NAME`

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

	const routineQuery = `SELECT TOP 1 ROUTINE_TYPE, DATA_TYPE, ROUTINE_DEFINITION
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = @p1 AND ROUTINE_NAME = @p2`

	var rr routineRow
	if err := c.db.GetContext(ctx, &rr, routineQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q not found in schema %q: %w", name, resolvedSchema, err)
	}

	const paramQuery = `SELECT PARAMETER_NAME, DATA_TYPE, PARAMETER_MODE
		FROM INFORMATION_SCHEMA.PARAMETERS
		WHERE SPECIFIC_SCHEMA = @p1 AND SPECIFIC_NAME = @p2
		ORDER BY ORDINAL_POSITION`

	var paramRows []routineParamRow
	if err := c.db.SelectContext(ctx, &paramRows, paramQuery, resolvedSchema, name); err != nil {
		return nil, fmt.Errorf("stored procedure %q parameters: %w", name, err)
	}

	params := make([]model.ProcedureParam, 0, len(paramRows))
	for _, p := range paramRows {
		if p.ParameterName == nil {
			continue
		}
		params = append(params, model.ProcedureParam{
			Name:      *p.ParameterName,
			Type:      p.DataType,
			Direction: strings.ToLower(p.ParameterMode),
		})
	}

	kind := "function"
	if strings.ToUpper(rr.RoutineType) == "PROCEDURE" {
		kind = "procedure"
	}

	returnType := ""
	if rr.DataType != nil {
		returnType = *rr.DataType
	}
	body := ""
	if rr.Definition != nil {
		body = *rr.Definition
	}

	return &model.StoredProcedure{
		Name:       name,
		Kind:       kind,
		ReturnType: returnType,
		Parameters: params,
		Body:       body,
	}, nil
}

func (c *Connector) fetchColumns(ctx context.Context, schema, table string) ([]columnRow, error) {
	const query = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
			CHARACTER_MAXIMUM_LENGTH, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, schema, table); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Connector) fetchPrimaryKeySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
			AND tc.TABLE_SCHEMA = @p1 AND tc.TABLE_NAME = @p2`

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

func (c *Connector) fetchIdentitySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT col.name AS column_name
		FROM sys.columns col
		JOIN sys.tables t ON col.object_id = t.object_id
		JOIN sys.schemas s ON t.schema_id = s.schema_id
		WHERE s.name = @p1 AND t.name = @p2 AND col.is_identity = 1`

	var rows []identityRow
	if err := c.db.SelectContext(ctx, &rows, query, schema, table); err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(rows))
	for _, r := range rows {
		set[r.ColumnName] = true
	}
	return set, nil
}

// mapMSSQLType maps a SQL Server data type to a Go type string and a JSON
// Schema type string.
func mapMSSQLType(dataType string) (goType, jsonType string) {
	switch strings.ToLower(dataType) {
	case "tinyint", "smallint", "int":
		return "int32", "integer"
	case "bigint":
		return "int64", "integer"
	case "float", "real":
		return "float64", "number"
	case "decimal", "numeric", "money", "smallmoney":
		return "float64", "number"
	case "varchar", "nvarchar", "char", "nchar", "text", "ntext":
		return "string", "string"
	case "datetime", "datetime2", "smalldatetime":
		return "time.Time", "string(date-time)"
	case "datetimeoffset":
		return "time.Time", "string(date-time)"
	case "date":
		return "time.Time", "string(date)"
	case "time":
		return "string", "string(time)"
	case "bit":
		return "bool", "boolean"
	case "uniqueidentifier":
		return "string", "string(uuid)"
	case "varbinary", "binary", "image":
		return "[]byte", "string(byte)"
	case "xml":
		return "string", "string"
	case "sql_variant":
		return "interface{}", "string"
	case "hierarchyid":
		return "string", "string"
	case "geography", "geometry":
		return "string", "string"
	default:
		return "interface{}", "string"
	}
}
