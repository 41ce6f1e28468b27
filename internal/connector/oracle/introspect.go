package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbgateway/gateway/internal/model"
)

type columnRow struct {
	ColumnName string  `db:"COLUMN_NAME"`
	DataType   string  `db:"DATA_TYPE"`
	Nullable   string  `db:"NULLABLE"`
	DataDefault *string `db:"DATA_DEFAULT"`
	MaxLength  *int64  `db:"CHAR_LENGTH"`
	Position   int     `db:"COLUMN_ID"`
}

type indexRow struct {
	IndexName  string `db:"INDEX_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
	Uniqueness string `db:"UNIQUENESS"`
}

type objectTypeRow struct {
	ObjectType string `db:"OBJECT_TYPE"`
}

type argumentRow struct {
	ArgumentName *string `db:"ARGUMENT_NAME"`
	DataType     *string `db:"DATA_TYPE"`
	InOut        string  `db:"IN_OUT"`
	Position     int     `db:"POSITION"`
}

// Oracle's data dictionary views (ALL_TAB_COLUMNS, ALL_INDEXES, ...) return
// every identifier in uppercase. snakeLower folds a result into the stable
// snake_case contract: Oracle identifiers are already upper-snake outside
// of quoted-case objects, so lower-casing is sufficient normalization here.
func snakeLower(s string) string { return strings.ToLower(s) }

func (c *Connector) resolveSchema(schema string) string {
	if schema != "" {
		return strings.ToUpper(schema)
	}
	return c.schemaName
}

// GetSchemas lists non-system schemas (Oracle "users" that own objects).
func (c *Connector) GetSchemas(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT OWNER FROM ALL_TABLES
		WHERE OWNER NOT IN ('SYS', 'SYSTEM', 'OUTLN', 'DBSNMP', 'APPQOSSYS',
			'XDB', 'CTXSYS', 'MDSYS', 'OLAPSYS', 'ORDDATA', 'ORDSYS', 'WMSYS')
		ORDER BY OWNER`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get schemas: %w", err)
	}
	for i, n := range names {
		names[i] = snakeLower(n)
	}
	return names, nil
}

// GetTables lists base table names in schema (or the connector's default
// schema if schema is empty).
func (c *Connector) GetTables(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = :p1 ORDER BY TABLE_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether table exists in schema.
func (c *Connector) TableExists(ctx context.Context, table, schema string) (bool, error) {
	const query = `SELECT COUNT(*) FROM ALL_OBJECTS
		WHERE OWNER = :p1 AND OBJECT_NAME = :p2 AND OBJECT_TYPE IN ('TABLE', 'VIEW')`

	var count int
	if err := c.db.GetContext(ctx, &count, query, c.resolveSchema(schema), strings.ToUpper(table)); err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return count > 0, nil
}

// GetTableColumns returns normalized column metadata for table.
func (c *Connector) GetTableColumns(ctx context.Context, table, schema string) ([]model.Column, error) {
	resolvedSchema := c.resolveSchema(schema)
	upperTable := strings.ToUpper(table)

	rows, err := c.fetchColumns(ctx, resolvedSchema, upperTable)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	pkSet, err := c.fetchPrimaryKeySet(ctx, resolvedSchema, upperTable)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	identSet, err := c.fetchIdentitySet(ctx, resolvedSchema, upperTable)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}

	columns := make([]model.Column, 0, len(rows))
	for _, row := range rows {
		goType, jsonType := mapOracleType(row.DataType)
		columns = append(columns, model.Column{
			Name:            snakeLower(row.ColumnName),
			Position:        row.Position,
			Type:            snakeLower(row.DataType),
			GoType:          goType,
			JsonType:        jsonType,
			Nullable:        row.Nullable == "Y",
			Default:         row.DataDefault,
			MaxLength:       row.MaxLength,
			IsPrimaryKey:    pkSet[row.ColumnName],
			IsAutoIncrement: identSet[row.ColumnName],
		})
	}
	return columns, nil
}

// GetTableIndexes returns index metadata for table via ALL_IND_COLUMNS.
func (c *Connector) GetTableIndexes(ctx context.Context, table, schema string) ([]model.Index, error) {
	const query = `SELECT i.INDEX_NAME, ic.COLUMN_NAME, i.UNIQUENESS
		FROM ALL_INDEXES i
		JOIN ALL_IND_COLUMNS ic ON i.INDEX_NAME = ic.INDEX_NAME AND i.OWNER = ic.INDEX_OWNER
		WHERE i.TABLE_OWNER = :p1 AND i.TABLE_NAME = :p2
		ORDER BY i.INDEX_NAME, ic.COLUMN_POSITION`

	var rows []indexRow
	if err := c.db.SelectContext(ctx, &rows, query, c.resolveSchema(schema), strings.ToUpper(table)); err != nil {
		return nil, fmt.Errorf("get table indexes: %w", err)
	}

	order := make([]string, 0)
	byName := make(map[string]*model.Index)
	for _, row := range rows {
		idx, ok := byName[row.IndexName]
		if !ok {
			idx = &model.Index{Name: snakeLower(row.IndexName), IsUnique: row.Uniqueness == "UNIQUE"}
			byName[row.IndexName] = idx
			order = append(order, row.IndexName)
		}
		idx.Columns = append(idx.Columns, snakeLower(row.ColumnName))
	}

	indexes := make([]model.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

// GetStoredProcedures lists procedure and function names in schema.
func (c *Connector) GetStoredProcedures(ctx context.Context, schema string) ([]string, error) {
	const query = `SELECT OBJECT_NAME FROM ALL_PROCEDURES
		WHERE OWNER = :p1 AND OBJECT_NAME IS NOT NULL
		ORDER BY OBJECT_NAME`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query, c.resolveSchema(schema)); err != nil {
		return nil, fmt.Errorf("get stored procedures: %w", err)
	}
	return names, nil
}

// GetStoredProcedureDetail returns full metadata for one procedure or
// function, including its parameter list and, when visible, its source
// body from ALL_SOURCE.
func (c *Connector) GetStoredProcedureDetail(ctx context.Context, name, schema string) (*model.StoredProcedure, error) {
	resolvedSchema := c.resolveSchema(schema)
	upperName := strings.ToUpper(name)

	const typeQuery = `SELECT OBJECT_TYPE FROM ALL_OBJECTS
		WHERE OWNER = :p1 AND OBJECT_NAME = :p2 AND OBJECT_TYPE IN ('PROCEDURE', 'FUNCTION')`

	var ot objectTypeRow
	if err := c.db.GetContext(ctx, &ot, typeQuery, resolvedSchema, upperName); err != nil {
		return nil, fmt.Errorf("stored procedure %q not found in schema %q: %w", name, resolvedSchema, err)
	}

	const argQuery = `SELECT ARGUMENT_NAME, DATA_TYPE, IN_OUT, POSITION
		FROM ALL_ARGUMENTS
		WHERE OWNER = :p1 AND OBJECT_NAME = :p2
		ORDER BY POSITION`

	var argRows []argumentRow
	if err := c.db.SelectContext(ctx, &argRows, argQuery, resolvedSchema, upperName); err != nil {
		return nil, fmt.Errorf("stored procedure %q arguments: %w", name, err)
	}

	params := make([]model.ProcedureParam, 0, len(argRows))
	returnType := ""
	for _, a := range argRows {
		if a.ArgumentName == nil {
			// POSITION 0, unnamed: the function's RETURN type.
			if a.DataType != nil {
				returnType = snakeLower(*a.DataType)
			}
			continue
		}
		dt := ""
		if a.DataType != nil {
			dt = snakeLower(*a.DataType)
		}
		params = append(params, model.ProcedureParam{
			Name:      snakeLower(*a.ArgumentName),
			Type:      dt,
			Direction: strings.ToLower(strings.ReplaceAll(a.InOut, "/", "")),
		})
	}

	const sourceQuery = `SELECT TEXT FROM ALL_SOURCE
		WHERE OWNER = :p1 AND NAME = :p2 ORDER BY LINE`

	var lines []string
	_ = c.db.SelectContext(ctx, &lines, sourceQuery, resolvedSchema, upperName)

	kind := "function"
	if ot.ObjectType == "PROCEDURE" {
		kind = "procedure"
	}

	return &model.StoredProcedure{
		Name:       name,
		Kind:       kind,
		ReturnType: returnType,
		Parameters: params,
		Body:       strings.Join(lines, "\n"),
	}, nil
}

func (c *Connector) fetchColumns(ctx context.Context, schema, table string) ([]columnRow, error) {
	const query = `SELECT COLUMN_NAME, DATA_TYPE, NULLABLE, DATA_DEFAULT, CHAR_LENGTH, COLUMN_ID
		FROM ALL_TAB_COLUMNS
		WHERE OWNER = :p1 AND TABLE_NAME = :p2
		ORDER BY COLUMN_ID`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, schema, table); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Connector) fetchPrimaryKeySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT cols.COLUMN_NAME
		FROM ALL_CONSTRAINTS cons
		JOIN ALL_CONS_COLUMNS cols ON cons.CONSTRAINT_NAME = cols.CONSTRAINT_NAME AND cons.OWNER = cols.OWNER
		WHERE cons.CONSTRAINT_TYPE = 'P' AND cons.OWNER = :p1 AND cons.TABLE_NAME = :p2`

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

// fetchIdentitySet finds IDENTITY columns (Oracle 12c+). Older sequence-
// and-trigger autoincrement patterns are not detectable from the data
// dictionary alone and are left unreported.
func (c *Connector) fetchIdentitySet(ctx context.Context, schema, table string) (map[string]bool, error) {
	const query = `SELECT COLUMN_NAME FROM ALL_TAB_IDENTITY_COLS
		WHERE OWNER = :p1 AND TABLE_NAME = :p2`

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

// mapOracleType maps an Oracle DATA_TYPE to a Go type string and a JSON
// Schema type string.
func mapOracleType(dataType string) (goType, jsonType string) {
	upper := strings.ToUpper(dataType)
	switch {
	case upper == "NUMBER":
		return "float64", "number"
	case strings.HasPrefix(upper, "VARCHAR"), strings.HasPrefix(upper, "NVARCHAR"),
		upper == "CHAR", upper == "NCHAR", upper == "CLOB", upper == "NCLOB", upper == "LONG":
		return "string", "string"
	case upper == "DATE":
		return "time.Time", "string(date-time)"
	case strings.HasPrefix(upper, "TIMESTAMP"):
		return "time.Time", "string(date-time)"
	case upper == "BLOB", upper == "RAW", strings.HasPrefix(upper, "RAW"), upper == "BFILE":
		return "[]byte", "string(byte)"
	case strings.HasPrefix(upper, "BINARY_FLOAT"):
		return "float32", "number"
	case strings.HasPrefix(upper, "BINARY_DOUBLE"):
		return "float64", "number"
	case upper == "ROWID", upper == "UROWID":
		return "string", "string"
	case upper == "XMLTYPE":
		return "string", "string"
	default:
		return "interface{}", "string"
	}
}
