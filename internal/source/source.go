// Package source implements the Source Manager: it owns every
// configured database endpoint's connector, optional SSH tunnel, and
// per-source execute-time policy, built once at startup and read-only for
// the remainder of the process lifetime.
package source

import "fmt"

// SSHTunnelConfig is a source's optional SSH tunnel sub-record.
// Exactly one of Password or PrivateKeyPath must be set.
type SSHTunnelConfig struct {
	Host           string
	Port           int // default 22
	User           string
	Password       string
	PrivateKeyPath string
	Passphrase     string
	ProxyJump      string // comma-separated jump-host chain, "" if none
}

// PoolConfig carries optional driver connection-pool tuning. Zero values
// let the connector apply its own defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// Config is one configured Source: either DSN or the structured
// fields must be populated when DSN is empty.
type Config struct {
	ID       string
	Type     string // postgres, mysql, mariadb, sqlserver, sqlite, oracle, dameng, redis, elasticsearch
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Extra    map[string]string // dialect-specific query parameters
	Schema   string

	ReadOnly       bool
	MaxRows        int // 0 means unlimited
	ConnectTimeout int // seconds, 0 means none
	RequestTimeout int // seconds, 0 means none
	InitScript     string

	SSHTunnel *SSHTunnelConfig
	Pool      PoolConfig
}

// NotFoundError is returned by GetCurrentConnector/GetCurrentExecuteOptions
// for an unrecognized source id. It enumerates the ids that do exist so a
// caller (or the LLM on the other end of a tool call) can self-correct.
type NotFoundError struct {
	ID        string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source %q not found; available sources: %v", e.ID, e.Available)
}
