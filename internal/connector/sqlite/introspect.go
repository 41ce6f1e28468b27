package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbgateway/gateway/internal/model"
)

// tableInfoRow holds a row from PRAGMA table_info().
type tableInfoRow struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

// indexListRow holds a row from PRAGMA index_list().
type indexListRow struct {
	Seq     int    `db:"seq"`
	Name    string `db:"name"`
	Unique  int    `db:"unique"`
	Origin  string `db:"origin"`
	Partial int    `db:"partial"`
}

// indexInfoRow holds a row from PRAGMA index_info().
type indexInfoRow struct {
	SeqNo int     `db:"seqno"`
	CID   int     `db:"cid"`
	Name  *string `db:"name"`
}

// GetSchemas returns just one name, "main" unless the source configures a
// schema name: SQLite has no schema concept beyond attached databases,
// which this gateway does not surface.
func (c *Connector) GetSchemas(_ context.Context) ([]string, error) {
	return []string{c.schemaName}, nil
}

// GetTables lists all table names. schema is ignored.
func (c *Connector) GetTables(ctx context.Context, _ string) ([]string, error) {
	const query = `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("get tables: %w", err)
	}
	return names, nil
}

// TableExists reports whether table exists. schema is ignored.
func (c *Connector) TableExists(ctx context.Context, table, _ string) (bool, error) {
	const query = `SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`

	var count int
	if err := c.db.GetContext(ctx, &count, query, table); err != nil {
		return false, fmt.Errorf("table exists: %w", err)
	}
	return count > 0, nil
}

// GetTableColumns returns normalized column metadata for table via
// PRAGMA table_info. schema is ignored.
func (c *Connector) GetTableColumns(ctx context.Context, table, _ string) ([]model.Column, error) {
	columns, err := c.fetchTableInfo(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("get table columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}

	pkCols := make([]string, 0)
	for _, col := range columns {
		if col.PK > 0 {
			pkCols = append(pkCols, col.Name)
		}
	}
	autoIncrCols := c.detectAutoIncrement(ctx, table, pkCols)

	result := make([]model.Column, 0, len(columns))
	for _, col := range columns {
		goType, jsonType := mapSQLiteType(col.Type)
		isPK := col.PK > 0
		result = append(result, model.Column{
			Name:            col.Name,
			Position:        col.CID + 1,
			Type:            col.Type,
			GoType:          goType,
			JsonType:        jsonType,
			Nullable:        col.NotNull == 0 && !isPK,
			Default:         col.Default,
			IsPrimaryKey:    isPK,
			IsAutoIncrement: autoIncrCols[col.Name],
		})
	}
	return result, nil
}

// GetTableIndexes returns index metadata for table via PRAGMA index_list /
// index_info. schema is ignored.
func (c *Connector) GetTableIndexes(ctx context.Context, table, _ string) ([]model.Index, error) {
	idxQuery := fmt.Sprintf("PRAGMA index_list(%s)", c.QuoteIdentifier(table))
	var idxRows []indexListRow
	if err := c.db.SelectContext(ctx, &idxRows, idxQuery); err != nil {
		return nil, fmt.Errorf("get table indexes: %w", err)
	}

	indexes := make([]model.Index, 0, len(idxRows))
	for _, idx := range idxRows {
		if idx.Origin == "pk" {
			continue
		}

		infoQuery := fmt.Sprintf("PRAGMA index_info(%s)", c.QuoteIdentifier(idx.Name))
		var infoRows []indexInfoRow
		if err := c.db.SelectContext(ctx, &infoRows, infoQuery); err != nil {
			continue
		}

		idxCols := make([]string, 0, len(infoRows))
		for _, info := range infoRows {
			if info.Name != nil {
				idxCols = append(idxCols, *info.Name)
			}
		}

		indexes = append(indexes, model.Index{
			Name:     idx.Name,
			Columns:  idxCols,
			IsUnique: idx.Unique == 1,
		})
	}
	return indexes, nil
}

// GetStoredProcedures returns an empty list: SQLite has no stored
// procedures.
func (c *Connector) GetStoredProcedures(_ context.Context, _ string) ([]string, error) {
	return []string{}, nil
}

// GetStoredProcedureDetail always errors: SQLite has no stored procedures.
func (c *Connector) GetStoredProcedureDetail(_ context.Context, name, _ string) (*model.StoredProcedure, error) {
	return nil, fmt.Errorf("sqlite has no stored procedures (requested %q)", name)
}

func (c *Connector) fetchTableInfo(ctx context.Context, table string) ([]tableInfoRow, error) {
	pragmaQuery := fmt.Sprintf("PRAGMA table_info(%s)", c.QuoteIdentifier(table))
	var columns []tableInfoRow
	if err := c.db.SelectContext(ctx, &columns, pragmaQuery); err != nil {
		return nil, err
	}
	return columns, nil
}

// detectAutoIncrement checks if the (single) primary key column is
// INTEGER PRIMARY KEY, SQLite's rowid alias, by inspecting the CREATE
// TABLE SQL in sqlite_master.
func (c *Connector) detectAutoIncrement(ctx context.Context, table string, pkCols []string) map[string]bool {
	result := make(map[string]bool)
	if len(pkCols) != 1 {
		return result
	}

	var createSQL string
	query := `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`
	if err := c.db.GetContext(ctx, &createSQL, query, table); err != nil {
		return result
	}

	upper := strings.ToUpper(createSQL)
	if strings.Contains(upper, "INTEGER PRIMARY KEY") {
		result[pkCols[0]] = true
	}
	return result
}

// mapSQLiteType maps a SQLite type affinity to Go and JSON Schema types.
// SQLite uses type affinity rather than strict types.
func mapSQLiteType(typeName string) (goType, jsonType string) {
	upper := strings.ToUpper(strings.TrimSpace(typeName))

	if idx := strings.IndexByte(upper, '('); idx >= 0 {
		upper = strings.TrimSpace(upper[:idx])
	}

	switch {
	case strings.Contains(upper, "INT"):
		return "int64", "integer"
	case strings.Contains(upper, "CHAR"),
		strings.Contains(upper, "CLOB"),
		strings.Contains(upper, "TEXT"):
		return "string", "string"
	case strings.Contains(upper, "BLOB") || upper == "":
		return "[]byte", "string(byte)"
	case strings.Contains(upper, "REAL"),
		strings.Contains(upper, "FLOA"),
		strings.Contains(upper, "DOUB"):
		return "float64", "number"
	case strings.Contains(upper, "BOOL"):
		return "bool", "boolean"
	case strings.Contains(upper, "DATE"),
		strings.Contains(upper, "TIME"):
		return "time.Time", "string(date-time)"
	case strings.Contains(upper, "NUMERIC"),
		strings.Contains(upper, "DECIMAL"):
		return "float64", "number"
	case strings.Contains(upper, "JSON"):
		return "interface{}", "object"
	default:
		return "interface{}", "string"
	}
}
