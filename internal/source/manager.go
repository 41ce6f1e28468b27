package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/dsn"
	"github.com/dbgateway/gateway/internal/tunnel"
)

// Manager owns four parallel maps keyed by source id — connector, tunnel,
// execute options, and the original source config — plus the ordered id
// list whose first entry is the default. Built once by New; every accessor
// is safe for unsynchronized concurrent reads once construction returns,
// per the "built once, read-only thereafter" resource model.
type Manager struct {
	ids       []string
	connector map[string]connector.Connector
	tunnel    map[string]*tunnel.Tunnel
	options   map[string]connector.ExecuteOptions
	config    map[string]Config

	logger *slog.Logger
}

// New connects every source in order and returns a ready Manager. On any
// source's failure, every resource opened so far (including that source's
// own partially-established tunnel) is released before the error returns.
func New(ctx context.Context, sources []Config, registry *connector.Registry, logger *slog.Logger) (*Manager, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("source manager: at least one source is required")
	}

	m := &Manager{
		ids:       make([]string, 0, len(sources)),
		connector: make(map[string]connector.Connector, len(sources)),
		tunnel:    make(map[string]*tunnel.Tunnel, len(sources)),
		options:   make(map[string]connector.ExecuteOptions, len(sources)),
		config:    make(map[string]Config, len(sources)),
		logger:    logger,
	}

	for _, cfg := range sources {
		if err := m.connectOne(ctx, cfg, registry); err != nil {
			m.Shutdown()
			return nil, fmt.Errorf("source %q: %w", cfg.ID, err)
		}
		m.ids = append(m.ids, cfg.ID)
		m.config[cfg.ID] = cfg
	}

	return m, nil
}

// connectOne runs the four-step connect sequence for a single
// source: build the DSN, establish an SSH tunnel if configured, clone and
// connect the registry's connector, and register execute options.
func (m *Manager) connectOne(ctx context.Context, cfg Config, registry *connector.Registry) error {
	effectiveDSN := cfg.DSN
	if effectiveDSN == "" {
		effectiveDSN = dsn.Build(cfg.Type, dsn.StructuredFields{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			User:     cfg.User,
			Password: cfg.Password,
			Extra:    cfg.Extra,
		})
	}

	var tun *tunnel.Tunnel
	if cfg.SSHTunnel != nil {
		t, rewritten, err := m.establishTunnel(ctx, cfg, effectiveDSN)
		if err != nil {
			return fmt.Errorf("ssh tunnel: %w", err)
		}
		tun = t
		effectiveDSN = rewritten
		m.tunnel[cfg.ID] = tun
	}

	conn, err := registry.LookupByType(cfg.Type)
	if err != nil {
		m.releaseTunnel(cfg.ID)
		return err
	}

	connectCfg := connector.ConnectionConfig{
		Driver:          cfg.Type,
		DSN:             effectiveDSN,
		SchemaName:      cfg.Schema,
		InitScript:      cfg.InitScript,
		ConnectTimeout:  time.Duration(cfg.ConnectTimeout) * time.Second,
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		MaxOpenConns:    cfg.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Pool.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Pool.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Pool.ConnMaxIdleTime) * time.Second,
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
		defer cancel()
	}

	if err := conn.Connect(connectCtx, connectCfg); err != nil {
		m.releaseTunnel(cfg.ID)
		return fmt.Errorf("connect: %w", err)
	}

	m.connector[cfg.ID] = conn
	m.options[cfg.ID] = connector.ExecuteOptions{
		ReadOnly:       cfg.ReadOnly,
		MaxRows:        cfg.MaxRows,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	}
	return nil
}

// establishTunnel builds the hop chain (proxy_jump chain plus the final
// hop to the source's own ssh_host) and rewrites the DSN's host:port to
// the tunnel's local listener endpoint.
func (m *Manager) establishTunnel(ctx context.Context, cfg Config, rawDSN string) (*tunnel.Tunnel, string, error) {
	sshCfg := cfg.SSHTunnel
	port := sshCfg.Port
	if port == 0 {
		port = 22
	}

	chain := make([]tunnel.HopConfig, 0, 1)
	if sshCfg.ProxyJump != "" {
		for _, hop := range strings.Split(sshCfg.ProxyJump, ",") {
			hop = strings.TrimSpace(hop)
			if hop == "" {
				continue
			}
			host, hopPort, user := parseProxyJumpHop(hop)
			chain = append(chain, tunnel.HopConfig{Host: host, Port: hopPort, User: user})
		}
	}
	chain = append(chain, tunnel.HopConfig{
		Host:           sshCfg.Host,
		Port:           port,
		User:           sshCfg.User,
		Password:       sshCfg.Password,
		PrivateKeyPath: sshCfg.PrivateKeyPath,
		Passphrase:     sshCfg.Passphrase,
	})

	parsed, err := dsn.Parse(cfg.Type, rawDSN)
	if err != nil {
		return nil, "", fmt.Errorf("parse dsn for tunnel rewrite: %w", err)
	}

	t, err := tunnel.Establish(ctx, chain, parsed.Host, parsed.Port)
	if err != nil {
		return nil, "", err
	}

	extra := make(map[string]string, len(parsed.Query))
	for k, v := range parsed.Query {
		if len(v) > 0 {
			extra[k] = v[0]
		}
	}

	rewritten := dsn.Build(cfg.Type, dsn.StructuredFields{
		Host:     t.LocalHost(),
		Port:     t.LocalPort(),
		Database: parsed.Database,
		User:     parsed.User,
		Password: parsed.Password,
		Extra:    extra,
	})
	return t, rewritten, nil
}

// parseProxyJumpHop parses one "user@host:port" ProxyJump segment,
// defaulting port to 22 when omitted.
func parseProxyJumpHop(hop string) (host string, port int, user string) {
	if at := strings.IndexByte(hop, '@'); at >= 0 {
		user = hop[:at]
		hop = hop[at+1:]
	}
	host = hop
	port = 22
	if u, err := url.Parse("ssh://" + hop); err == nil && u.Port() != "" {
		host = u.Hostname()
		if p, err := strconv.Atoi(u.Port()); err == nil {
			port = p
		}
	}
	return host, port, user
}

func (m *Manager) releaseTunnel(id string) {
	if t, ok := m.tunnel[id]; ok {
		if err := t.Close(); err != nil && m.logger != nil {
			m.logger.Warn("failed to close tunnel during rollback", "source", id, "error", err)
		}
		delete(m.tunnel, id)
	}
}

// DefaultSourceID returns the first source in declared order.
func (m *Manager) DefaultSourceID() string {
	return m.ids[0]
}

// SourceIDs returns every configured source id, in declared order.
func (m *Manager) SourceIDs() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// GetCurrentConnector returns the named source's connector, or the default
// source's when id is "".
func (m *Manager) GetCurrentConnector(id string) (connector.Connector, error) {
	if id == "" {
		id = m.DefaultSourceID()
	}
	conn, ok := m.connector[id]
	if !ok {
		return nil, &NotFoundError{ID: id, Available: m.SourceIDs()}
	}
	return conn, nil
}

// GetCurrentExecuteOptions returns the named source's policy clamp, or the
// default source's when id is "".
func (m *Manager) GetCurrentExecuteOptions(id string) (connector.ExecuteOptions, error) {
	if id == "" {
		id = m.DefaultSourceID()
	}
	opts, ok := m.options[id]
	if !ok {
		return connector.ExecuteOptions{}, &NotFoundError{ID: id, Available: m.SourceIDs()}
	}
	return opts, nil
}

// Config returns the named source's original configuration, used by the
// introspection HTTP API and tool registry to decide tool shape.
func (m *Manager) Config(id string) (Config, bool) {
	cfg, ok := m.config[id]
	return cfg, ok
}

// Shutdown disconnects every connector and closes every tunnel. Both
// phases run to completion even if individual steps fail; failures are
// logged and do not abort the remaining releases.
func (m *Manager) Shutdown() {
	for id, conn := range m.connector {
		if err := conn.Disconnect(); err != nil && m.logger != nil {
			m.logger.Warn("failed to disconnect source", "source", id, "error", err)
		}
	}
	for id, t := range m.tunnel {
		if err := t.Close(); err != nil && m.logger != nil {
			m.logger.Warn("failed to close tunnel", "source", id, "error", err)
		}
	}
}
