package postgres

import (
	"fmt"
	"net/url"

	"github.com/dbgateway/gateway/internal/dsn"
)

// driverDSN re-encodes a gateway postgres:// DSN into strict URL form for
// pgx: the gateway's tolerant parser accepts raw delimiter characters in
// the password, pgx's URL parser does not. The connectTimeout query
// parameter maps onto libpq's connect_timeout; requestTimeout is dropped
// here because per-call deadlines are enforced through the context, not
// the connection string.
func driverDSN(raw string) (string, error) {
	parsed, err := dsn.Parse("postgres", raw)
	if err != nil {
		return "", err
	}

	host := parsed.Host
	if parsed.Port != 0 {
		host = fmt.Sprintf("%s:%d", parsed.Host, parsed.Port)
	}

	u := &url.URL{Scheme: "postgres", Host: host}
	if parsed.Database != "" {
		u.Path = "/" + parsed.Database
	}
	if parsed.User != "" {
		if parsed.Password != "" {
			u.User = url.UserPassword(parsed.User, parsed.Password)
		} else {
			u.User = url.User(parsed.User)
		}
	}

	q := url.Values{}
	for k, vs := range parsed.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if ct := q.Get("connectTimeout"); ct != "" {
		q.Del("connectTimeout")
		q.Set("connect_timeout", ct)
	}
	q.Del("requestTimeout")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
