package sqlite

import "strings"

// driverDSN strips the sqlite:// scheme down to the bare path (or
// ":memory:") modernc.org/sqlite expects, carrying query parameters
// through untouched. A DSN with no scheme is already in driver form.
func driverDSN(raw string) string {
	rest, ok := strings.CutPrefix(raw, "sqlite://")
	if !ok {
		return raw
	}
	path, query, hasQuery := strings.Cut(rest, "?")
	if strings.HasPrefix(path, "/:") {
		path = path[1:] // sqlite:///:memory:
	}
	if hasQuery {
		return path + "?" + query
	}
	return path
}
