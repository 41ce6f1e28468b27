package mssql

import (
	"net/url"
	"testing"
)

func TestDriverDSN_MovesDatabaseAndInstanceName(t *testing.T) {
	out, err := driverDSN("sqlserver://sa:P@ss1@host:1433/master?sslmode=require&instanceName=SQLEXPRESS")
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}

	u, err := url.Parse(out)
	if err != nil {
		t.Fatalf("output is not a strict URL: %v", err)
	}
	if u.User.Username() != "sa" {
		t.Errorf("user = %q, want %q", u.User.Username(), "sa")
	}
	if pass, _ := u.User.Password(); pass != "P@ss1" {
		t.Errorf("password = %q, want %q", pass, "P@ss1")
	}
	if u.Host != "host:1433" {
		t.Errorf("host = %q, want %q", u.Host, "host:1433")
	}
	if u.Path != "/SQLEXPRESS" {
		t.Errorf("instance path = %q, want %q", u.Path, "/SQLEXPRESS")
	}

	q := u.Query()
	if q.Get("database") != "master" {
		t.Errorf("database = %q, want %q", q.Get("database"), "master")
	}
	if q.Get("encrypt") != "true" || q.Get("trustservercertificate") != "true" {
		t.Errorf("sslmode=require mapped to encrypt=%q trustservercertificate=%q", q.Get("encrypt"), q.Get("trustservercertificate"))
	}
}

func TestDriverDSN_SSLModeDisable(t *testing.T) {
	out, err := driverDSN("sqlserver://sa:pw@host/db?sslmode=disable")
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}
	u, err := url.Parse(out)
	if err != nil {
		t.Fatalf("output is not a strict URL: %v", err)
	}
	if u.Query().Get("encrypt") != "disable" {
		t.Errorf("encrypt = %q, want %q", u.Query().Get("encrypt"), "disable")
	}
}
