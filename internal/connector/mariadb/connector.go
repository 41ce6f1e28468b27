// Package mariadb registers MariaDB sources under the MySQL wire protocol.
// MariaDB is binary-compatible with the MySQL client/server protocol this
// gateway already speaks via go-sql-driver/mysql, so this package embeds
// the mysql connector and overrides only its identity methods — mirroring
// how the dameng package rides the oracle connector under go-ora.
package mariadb

import (
	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/connector/mysql"
)

// Connector is the mysql connector under MariaDB's identity.
type Connector struct {
	*mysql.Connector
}

// New creates a fresh, unconnected MariaDB connector prototype.
func New() connector.Connector {
	return &Connector{Connector: mysql.New().(*mysql.Connector)}
}

func (c *Connector) DriverName() string { return "mariadb" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{Connector: c.Connector.Clone().(*mysql.Connector)}
}
