// Package oracle implements connector.SQLConnector for Oracle Database via
// the pure-Go go-ora driver. DaMeng (internal/connector/dameng) embeds this
// package: see its doc comment for why.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2"
	"github.com/jmoiron/sqlx"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/sqltext"
)

// Connector implements connector.SQLConnector for Oracle.
type Connector struct {
	db         *sqlx.DB
	schemaName string // the owning schema; defaults to the connecting user
}

// New creates a fresh, unconnected Oracle connector prototype.
func New() connector.Connector {
	return &Connector{}
}

func (c *Connector) Connect(ctx context.Context, cfg connector.ConnectionConfig) error {
	dialect := cfg.Driver
	if dialect == "" {
		dialect = "oracle"
	}
	connStr, err := driverDSN(dialect, cfg.DSN)
	if err != nil {
		return err
	}
	db, err := sqlx.ConnectContext(ctx, "oracle", connStr)
	if err != nil {
		return fmt.Errorf("oracle connect: %w", err)
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

	c.schemaName = strings.ToUpper(cfg.SchemaName)
	if c.schemaName == "" {
		var user string
		if err := db.GetContext(ctx, &user, "SELECT USER FROM DUAL"); err == nil {
			c.schemaName = user
		}
	}

	if cfg.InitScript != "" {
		if _, err := db.ExecContext(ctx, cfg.InitScript); err != nil {
			db.Close()
			return fmt.Errorf("oracle init script: %w", err)
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

func (c *Connector) DriverName() string { return "oracle" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{schemaName: c.schemaName}
}

// ExecuteSQL implements execute_sql for Oracle: a single statement
// runs directly against the pool; a multi-statement batch runs inside an
// explicit transaction, rolling back on the first error.
func (c *Connector) ExecuteSQL(ctx context.Context, sqlText string, opts connector.ExecuteOptions) (*connector.QueryResult, error) {
	begin := func(ctx context.Context) (connector.Execer, func() error, func() error, error) {
		tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: opts.ReadOnly})
		if err != nil {
			return nil, nil, nil, err
		}
		return tx, tx.Commit, tx.Rollback, nil
	}
	return connector.ExecuteStatements(ctx, sqltext.Oracle, "oracle", sqlText, opts, c.db, begin)
}
