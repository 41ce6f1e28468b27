package mysql

import (
	"testing"

	driver "github.com/go-sql-driver/mysql"

	"github.com/dbgateway/gateway/internal/connector"
)

func TestDriverDSN_RoundTripsThroughDriverConfig(t *testing.T) {
	out, err := driverDSN(connector.ConnectionConfig{
		Driver: "mysql",
		DSN:    "mysql://root:p@ss:w0rd@db1:3307/app?sslmode=require",
	})
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}

	dc, err := driver.ParseDSN(out)
	if err != nil {
		t.Fatalf("driver rejected its own DSN format: %v", err)
	}
	if dc.User != "root" {
		t.Errorf("user = %q, want %q", dc.User, "root")
	}
	if dc.Passwd != "p@ss:w0rd" {
		t.Errorf("password = %q, want %q", dc.Passwd, "p@ss:w0rd")
	}
	if dc.Addr != "db1:3307" {
		t.Errorf("addr = %q, want %q", dc.Addr, "db1:3307")
	}
	if dc.DBName != "app" {
		t.Errorf("dbname = %q, want %q", dc.DBName, "app")
	}
	if dc.TLSConfig != "skip-verify" {
		t.Errorf("tls = %q, want %q", dc.TLSConfig, "skip-verify")
	}
}

func TestDriverDSN_DefaultsPort(t *testing.T) {
	out, err := driverDSN(connector.ConnectionConfig{Driver: "mariadb", DSN: "mariadb://u:p@db1/app"})
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}
	dc, err := driver.ParseDSN(out)
	if err != nil {
		t.Fatalf("driver rejected its own DSN format: %v", err)
	}
	if dc.Addr != "db1:3306" {
		t.Errorf("addr = %q, want %q", dc.Addr, "db1:3306")
	}
}

func TestDriverDSN_RDSIAMTokenEnablesCleartextOverTLS(t *testing.T) {
	token := "prod.cluster.us-east-1.rds.amazonaws.com:3306/?Action=connect&DBUser=app&X-Amz-Signature=deadbeef"
	out, err := driverDSN(connector.ConnectionConfig{
		Driver: "mysql",
		DSN:    "mysql://app:" + token + "@prod.cluster.us-east-1.rds.amazonaws.com:3306/orders",
	})
	if err != nil {
		t.Fatalf("driverDSN: %v", err)
	}

	dc, err := driver.ParseDSN(out)
	if err != nil {
		t.Fatalf("driver rejected its own DSN format: %v", err)
	}
	if dc.Passwd != token {
		t.Errorf("token mangled in transit: got %q", dc.Passwd)
	}
	if !dc.AllowCleartextPasswords {
		t.Error("expected cleartext auth plugin to be enabled for an IAM token")
	}
	if dc.TLSConfig != "skip-verify" {
		t.Errorf("tls = %q, want %q", dc.TLSConfig, "skip-verify")
	}
}
