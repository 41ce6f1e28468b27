package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("TEST_GATEWAY_PASSWORD", "s3cret")

	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	doc := `
sources:
  - id: primary
    type: postgres
    host: localhost
    port: 5432
    database: app
    user: app_user
    password: ${TEST_GATEWAY_PASSWORD}
    readonly: true
    max_rows: 500
    ssh_tunnel:
      ssh_host: bastion.internal
      ssh_port: 22
      ssh_user: deploy
      ssh_key: /home/deploy/.ssh/id_ed25519
    pool:
      max_open_conns: 10
      max_idle_conns: 2
custom_tools:
  - name: active_users
    description: Count active users
    source: primary
    statement: "SELECT count(*) FROM users WHERE active = $1"
    parameters:
      - name: active
        type: boolean
        required: true
        description: Filter by active flag
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, tools, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	s := sources[0]
	if s.Password != "s3cret" {
		t.Errorf("expected env-expanded password, got %q", s.Password)
	}
	if !s.ReadOnly || s.MaxRows != 500 {
		t.Errorf("readonly/max_rows not propagated: %+v", s)
	}
	if s.SSHTunnel == nil || s.SSHTunnel.PrivateKeyPath != "/home/deploy/.ssh/id_ed25519" {
		t.Errorf("ssh_key not mapped to PrivateKeyPath: %+v", s.SSHTunnel)
	}
	if s.Pool.MaxOpenConns != 10 {
		t.Errorf("pool not propagated: %+v", s.Pool)
	}

	if len(tools) != 1 || tools[0].Name != "active_users" {
		t.Fatalf("expected 1 custom tool named active_users, got %+v", tools)
	}
	if len(tools[0].Parameters) != 1 || tools[0].Parameters[0].Name != "active" {
		t.Errorf("custom tool parameters not propagated: %+v", tools[0].Parameters)
	}
}

func TestLoadRejectsEmptySourceList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(path, []byte("sources: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected an error for a config with zero sources")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
