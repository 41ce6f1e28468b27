package mysql

import (
	"fmt"

	driver "github.com/go-sql-driver/mysql"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/dsn"
)

// driverDSN translates a gateway mysql:// or mariadb:// DSN into the
// go-sql-driver format through the driver's own Config type, so a password
// carrying URL delimiter characters never passes through a URL parser on
// the driver side.
//
// AWS RDS IAM tokens are detected by password shape and switch the
// connection to the cleartext auth plugin over TLS; the driver appends the
// plugin's NUL terminator itself.
func driverDSN(cfg connector.ConnectionConfig) (string, error) {
	dialect := cfg.Driver
	if dialect == "" {
		dialect = "mysql"
	}
	parsed, err := dsn.Parse(dialect, cfg.DSN)
	if err != nil {
		return "", err
	}

	port := parsed.Port
	if port == 0 {
		port = 3306
	}

	dc := driver.NewConfig()
	dc.User = parsed.User
	dc.Passwd = parsed.Password
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%d", parsed.Host, port)
	dc.DBName = parsed.Database
	dc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		dc.Timeout = cfg.ConnectTimeout
	}
	if cfg.RequestTimeout > 0 {
		dc.ReadTimeout = cfg.RequestTimeout
		dc.WriteTimeout = cfg.RequestTimeout
	}

	for k, vs := range parsed.Query {
		// sslmode is translated below; connectTimeout and requestTimeout
		// are dropped (the driver's dial/read/write timeouts above come from
		// the source's own timeout settings) and would otherwise become
		// bogus session variables.
		if k == "sslmode" || k == "connectTimeout" || k == "requestTimeout" || len(vs) == 0 {
			continue
		}
		if dc.Params == nil {
			dc.Params = make(map[string]string)
		}
		dc.Params[k] = vs[0]
	}

	switch parsed.Query.Get("sslmode") {
	case "", "disable":
	case "require":
		dc.TLSConfig = "skip-verify"
	default: // verify-ca, verify-full
		dc.TLSConfig = "true"
	}

	if dsn.IsRDSIAMToken(parsed.Password) {
		dc.AllowCleartextPasswords = true
		if dc.TLSConfig == "" {
			// TLS is mandatory for a cleartext token; an explicit stricter
			// sslmode is kept as configured.
			dc.TLSConfig = "skip-verify"
		}
	}

	return dc.FormatDSN(), nil
}
