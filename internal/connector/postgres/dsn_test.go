package postgres

import (
	"net/url"
	"testing"
)

func TestDriverDSN_EncodesSpecialCharacterPassword(t *testing.T) {
	out, err := driverDSN("postgres://user:my@pass:word/#1@localhost:5432/db?sslmode=disable")
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}

	u, err := url.Parse(out)
	if err != nil {
		t.Fatalf("output is not a strict URL: %v", err)
	}
	if u.User.Username() != "user" {
		t.Errorf("user = %q, want %q", u.User.Username(), "user")
	}
	if pass, _ := u.User.Password(); pass != "my@pass:word/#1" {
		t.Errorf("password = %q, want %q", pass, "my@pass:word/#1")
	}
	if u.Host != "localhost:5432" {
		t.Errorf("host = %q, want %q", u.Host, "localhost:5432")
	}
	if u.Path != "/db" {
		t.Errorf("path = %q, want %q", u.Path, "/db")
	}
	if u.Query().Get("sslmode") != "disable" {
		t.Errorf("sslmode = %q, want %q", u.Query().Get("sslmode"), "disable")
	}
}

func TestDriverDSN_MapsConnectTimeout(t *testing.T) {
	out, err := driverDSN("postgres://u:p@h:5432/db?connectTimeout=7&requestTimeout=30")
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}
	u, err := url.Parse(out)
	if err != nil {
		t.Fatalf("output is not a strict URL: %v", err)
	}
	q := u.Query()
	if q.Get("connect_timeout") != "7" {
		t.Errorf("connect_timeout = %q, want %q", q.Get("connect_timeout"), "7")
	}
	if q.Has("connectTimeout") || q.Has("requestTimeout") {
		t.Errorf("gateway-only timeout parameters leaked into driver DSN: %q", out)
	}
}
