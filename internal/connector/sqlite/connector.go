package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/sqltext"
)

// Connector implements connector.SQLConnector for SQLite database files
// (and ":memory:").
type Connector struct {
	db         *sqlx.DB
	schemaName string // "main" unless the source configures a schema name
}

// New creates a fresh, unconnected SQLite connector prototype.
func New() connector.Connector {
	return &Connector{schemaName: "main"}
}

// Connect opens a connection to the SQLite database file named by the DSN
// (a file path or ":memory:"). Query parameters like ?_journal_mode=WAL are
// supported by the underlying driver.
func (c *Connector) Connect(ctx context.Context, cfg connector.ConnectionConfig) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", driverDSN(cfg.DSN))
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}

	if cfg.InitScript != "" {
		if _, err := db.ExecContext(ctx, cfg.InitScript); err != nil {
			db.Close()
			return fmt.Errorf("sqlite init script: %w", err)
		}
	}

	c.db = db
	return nil
}

func (c *Connector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Connector) DriverName() string { return "sqlite" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{schemaName: c.schemaName}
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes.
func (c *Connector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ExecuteSQL implements execute_sql for SQLite: a single statement runs
// directly against the pool; a multi-statement batch runs inside an
// explicit transaction, rolling back on the first error.
func (c *Connector) ExecuteSQL(ctx context.Context, sqlText string, opts connector.ExecuteOptions) (*connector.QueryResult, error) {
	begin := func(ctx context.Context) (connector.Execer, func() error, func() error, error) {
		tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: opts.ReadOnly})
		if err != nil {
			return nil, nil, nil, err
		}
		return tx, tx.Commit, tx.Rollback, nil
	}
	return connector.ExecuteStatements(ctx, sqltext.SQLite, "sqlite", sqlText, opts, c.db, begin)
}
