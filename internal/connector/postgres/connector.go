package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/sqltext"
)

// Connector implements connector.SQLConnector for PostgreSQL.
type Connector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates a fresh, unconnected PostgreSQL connector prototype.
func New() connector.Connector {
	return &Connector{schemaName: "public"}
}

func (c *Connector) Connect(ctx context.Context, cfg connector.ConnectionConfig) error {
	connStr, err := driverDSN(cfg.DSN)
	if err != nil {
		return err
	}
	db, err := sqlx.ConnectContext(ctx, "pgx", connStr)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
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
			return fmt.Errorf("postgres init script: %w", err)
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

func (c *Connector) DriverName() string { return "postgres" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{schemaName: c.schemaName}
}

// ExecuteSQL implements execute_sql for PostgreSQL: a single statement
// runs directly against the pool; a multi-statement batch runs inside an
// explicit BEGIN/COMMIT, rolling back on the first error.
func (c *Connector) ExecuteSQL(ctx context.Context, sqlText string, opts connector.ExecuteOptions) (*connector.QueryResult, error) {
	begin := func(ctx context.Context) (connector.Execer, func() error, func() error, error) {
		tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: opts.ReadOnly})
		if err != nil {
			return nil, nil, nil, err
		}
		return tx, tx.Commit, tx.Rollback, nil
	}
	return connector.ExecuteStatements(ctx, sqltext.Postgres, "postgres", sqlText, opts, c.db, begin)
}
