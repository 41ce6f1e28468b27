// Package dameng adapts the oracle connector for DaMeng (达梦) sources.
// DaMeng's SQL dialect is lexically ANSI/Oracle-compatible — the tokenizer
// and classifier already treat sqltext.DaMeng identically to sqltext.Oracle
// — but no DaMeng wire-protocol driver exists among this gateway's
// dependencies. Rather than fabricate one, this package embeds the Oracle
// connector and overrides only the identity methods, so a "dm://" source
// runs against the go-ora driver under its own DriverName. Operators
// pointing this at a real DaMeng instance need a DaMeng-speaking database
// endpoint that also accepts Oracle's wire protocol (e.g. via a proxy);
// this is a documented limitation, not a claim of native DaMeng support.
package dameng

import (
	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/connector/oracle"
)

// Connector is the oracle connector under DaMeng's identity.
type Connector struct {
	*oracle.Connector
}

// New creates a fresh, unconnected DaMeng connector prototype.
func New() connector.Connector {
	return &Connector{Connector: oracle.New().(*oracle.Connector)}
}

func (c *Connector) DriverName() string { return "dameng" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{Connector: c.Connector.Clone().(*oracle.Connector)}
}
