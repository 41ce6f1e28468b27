package mssql

import (
	"fmt"
	"net/url"

	"github.com/dbgateway/gateway/internal/dsn"
)

// driverDSN re-encodes a gateway sqlserver:// DSN into the URL form
// go-mssqldb expects: the database moves into a query parameter, sslmode
// maps onto encrypt/trustservercertificate, instanceName becomes the URL
// path, and connectTimeout/requestTimeout map onto the driver's dial and
// connection timeouts. Credentials are percent-encoded so passwords with
// raw delimiter characters survive the driver's own URL parser.
func driverDSN(raw string) (string, error) {
	parsed, err := dsn.Parse("sqlserver", raw)
	if err != nil {
		return "", err
	}

	host := parsed.Host
	if parsed.Port != 0 {
		host = fmt.Sprintf("%s:%d", parsed.Host, parsed.Port)
	}

	q := url.Values{}
	for k, vs := range parsed.Query {
		// Translated below; everything else (app name, failoverpartner,
		// ...) passes through to the driver verbatim.
		switch k {
		case "sslmode", "instanceName", "connectTimeout", "requestTimeout":
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if parsed.Database != "" {
		q.Set("database", parsed.Database)
	}
	switch parsed.Query.Get("sslmode") {
	case "":
	case "disable":
		q.Set("encrypt", "disable")
	case "require":
		q.Set("encrypt", "true")
		q.Set("trustservercertificate", "true")
	default: // verify-ca, verify-full
		q.Set("encrypt", "true")
	}
	if ct := parsed.Query.Get("connectTimeout"); ct != "" {
		q.Set("dial timeout", ct)
	}
	if rt := parsed.Query.Get("requestTimeout"); rt != "" {
		q.Set("connection timeout", rt)
	}

	u := &url.URL{Scheme: "sqlserver", Host: host, RawQuery: q.Encode()}
	if instance := parsed.Query.Get("instanceName"); instance != "" {
		u.Path = "/" + instance
	}
	if parsed.User != "" {
		if parsed.Password != "" {
			u.User = url.UserPassword(parsed.User, parsed.Password)
		} else {
			u.User = url.User(parsed.User)
		}
	}

	return u.String(), nil
}
