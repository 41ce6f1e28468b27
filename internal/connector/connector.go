// Package connector defines the uniform, dialect-agnostic interface every
// database driver adapter implements, plus the scheme-keyed registry of
// connector prototypes that the source manager clones from.
package connector

import (
	"context"
	"time"

	"github.com/dbgateway/gateway/internal/model"
)

// ConnectionConfig carries everything a connector needs to dial and pool a
// live connection. DSN is assumed already resolved (SSH tunnel rewritten,
// structured fields folded in) by the time it reaches Connect.
type ConnectionConfig struct {
	Driver          string
	DSN             string
	SchemaName      string
	InitScript      string
	ConnectTimeout  time.Duration
	RequestTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// ExecuteOptions carries the per-invocation policy clamp (already enforced
// upstream by the dispatcher) down to the connector for driver-level
// hardening, plus any bound parameters for a custom SQL tool.
// RequestTimeout is applied by the dispatcher as a context deadline before
// the connector is called; it rides along here so every tool bound to a
// source shares the source's clamp.
type ExecuteOptions struct {
	ReadOnly       bool
	MaxRows        int
	RequestTimeout time.Duration
	Params         map[string]any
}

// StatementResult is the outcome of executing one logical SQL statement.
type StatementResult struct {
	SQL      string           `json:"sql"`
	Rows     []map[string]any `json:"rows"`
	Count    int              `json:"count"`
	RowCount *int64           `json:"row_count,omitempty"`
}

// QueryResult is the outcome of an execute_sql invocation, possibly spanning
// several statements split at the top level by the tokenizer.
type QueryResult struct {
	Statements []StatementResult `json:"statements"`
}

// CommandResult is the outcome of a non-SQL execute_command invocation
// (Redis, Elasticsearch). Kind-specific payload lives in Value.
type CommandResult struct {
	Value any `json:"value"`
}

// Connector is the set of operations every dialect adapter supports,
// independent of whether it speaks SQL or a protocol command language.
type Connector interface {
	// Connect dials the backing store and prepares the pool. Called once,
	// at source-manager startup, never concurrently with other methods.
	Connect(ctx context.Context, cfg ConnectionConfig) error
	Disconnect() error
	Ping(ctx context.Context) error

	// DriverName identifies the dialect, e.g. "postgres", "redis".
	DriverName() string

	// Clone returns a fresh, unconnected instance carrying the same
	// prototype metadata. The registry clones rather than sharing a
	// prototype's driver state across sources.
	Clone() Connector
}

// SchemaIntrospector is implemented by SQL-dialect connectors. Column/Index/
// StoredProcedure field names are normalized to the stable snake_case
// contract (column_name, data_type, is_nullable, column_default) regardless
// of what case convention the underlying information-schema equivalent uses.
type SchemaIntrospector interface {
	GetSchemas(ctx context.Context) ([]string, error)
	GetTables(ctx context.Context, schema string) ([]string, error)
	TableExists(ctx context.Context, table, schema string) (bool, error)
	GetTableColumns(ctx context.Context, table, schema string) ([]model.Column, error)
	GetTableIndexes(ctx context.Context, table, schema string) ([]model.Index, error)
	GetStoredProcedures(ctx context.Context, schema string) ([]string, error)
	GetStoredProcedureDetail(ctx context.Context, name, schema string) (*model.StoredProcedure, error)
}

// SQLConnector is a connector that executes arbitrary SQL text and supports
// schema introspection: postgres, mysql, mariadb, sqlserver, sqlite, oracle,
// dameng.
type SQLConnector interface {
	Connector
	SchemaIntrospector
	ExecuteSQL(ctx context.Context, sql string, opts ExecuteOptions) (*QueryResult, error)
}

// CommandConnector is a connector that executes a protocol-specific command
// string rather than SQL: redis, elasticsearch.
type CommandConnector interface {
	Connector
	ExecuteCommand(ctx context.Context, text string, opts ExecuteOptions) (*CommandResult, error)
}
