package connector

import (
	"context"
	"testing"
)

// fakeConnector is a minimal Connector for exercising the registry's
// prototype-cloning contract without a real driver.
type fakeConnector struct {
	driver string
}

func (f *fakeConnector) Connect(context.Context, ConnectionConfig) error { return nil }
func (f *fakeConnector) Disconnect() error                               { return nil }
func (f *fakeConnector) Ping(context.Context) error                      { return nil }
func (f *fakeConnector) DriverName() string                              { return f.driver }
func (f *fakeConnector) Clone() Connector                                { return &fakeConnector{driver: f.driver} }

func TestRegistry_LookupClonesPrototype(t *testing.T) {
	r := NewRegistry()
	proto := &fakeConnector{driver: "fake"}
	r.RegisterDriver("fake", proto)

	a, err := r.LookupByType("fake")
	if err != nil {
		t.Fatalf("LookupByType: %v", err)
	}
	b, err := r.LookupByDSN("fake://host/db")
	if err != nil {
		t.Fatalf("LookupByDSN: %v", err)
	}

	if a == Connector(proto) || b == Connector(proto) {
		t.Error("lookup handed out the prototype itself instead of a clone")
	}
	if a == b {
		t.Error("two lookups returned the same instance")
	}
	if a.DriverName() != "fake" || b.DriverName() != "fake" {
		t.Error("clone lost prototype metadata")
	}
}

func TestRegistry_UnknownSchemeEnumeratesAvailable(t *testing.T) {
	r := NewRegistry()
	r.RegisterDriver("fake", &fakeConnector{driver: "fake"})

	if _, err := r.LookupByType("nope"); err == nil {
		t.Fatal("expected an error for an unregistered driver type")
	}
	if _, err := r.LookupByDSN("nope://host"); err == nil {
		t.Fatal("expected an error for an unregistered scheme")
	}
}
