package oracle

import (
	go_ora "github.com/sijms/go-ora/v2"

	"github.com/dbgateway/gateway/internal/dsn"
)

// driverDSN rebuilds a gateway oracle:// or dm:// DSN through go-ora's own
// URL builder, which percent-encodes credentials for us. sslmode maps onto
// the driver's SSL options; every other query parameter (autoCommit and
// friends) is passed through as a driver option verbatim.
func driverDSN(dialect, raw string) (string, error) {
	parsed, err := dsn.Parse(dialect, raw)
	if err != nil {
		return "", err
	}

	port := parsed.Port
	if port == 0 {
		port = 1521
		if dialect == "dm" || dialect == "dameng" {
			port = 5236
		}
	}

	opts := make(map[string]string)
	for k, vs := range parsed.Query {
		// sslmode is translated below; the two gateway-level timeouts are
		// enforced as context deadlines, not driver options.
		if k == "sslmode" || k == "connectTimeout" || k == "requestTimeout" || len(vs) == 0 {
			continue
		}
		opts[k] = vs[0]
	}
	switch parsed.Query.Get("sslmode") {
	case "", "disable":
	case "require":
		opts["SSL"] = "true"
		opts["SSL VERIFY"] = "false"
	default: // verify-ca, verify-full
		opts["SSL"] = "true"
	}

	return go_ora.BuildUrl(parsed.Host, port, parsed.Database, parsed.User, parsed.Password, opts), nil
}
