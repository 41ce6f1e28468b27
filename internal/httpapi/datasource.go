package httpapi

import "github.com/dbgateway/gateway/internal/source"

// sshTunnelView is the redacted ssh_tunnel sub-record: host, port, and user
// only. Passwords, private keys, and passphrases never leave the process.
type sshTunnelView struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"ssh_host,omitempty"`
	Port    int    `json:"ssh_port,omitempty"`
	User    string `json:"ssh_user,omitempty"`
}

// dataSource is the public, redacted view of a source.Config. It
// never carries a password, dsn (which may embed one), ssh password, ssh
// private key path, or ssh passphrase.
type dataSource struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Host      string         `json:"host,omitempty"`
	Port      int            `json:"port,omitempty"`
	Database  string         `json:"database,omitempty"`
	User      string         `json:"user,omitempty"`
	IsDefault bool           `json:"is_default"`
	ReadOnly  bool           `json:"readonly,omitempty"`
	MaxRows   int            `json:"max_rows,omitempty"`
	SSHTunnel *sshTunnelView `json:"ssh_tunnel,omitempty"`
	Tools     []string       `json:"tools"`
}

func toDataSource(cfg source.Config, isDefault bool, tools []string) dataSource {
	ds := dataSource{
		ID:        cfg.ID,
		Type:      cfg.Type,
		Host:      cfg.Host,
		Port:      cfg.Port,
		Database:  cfg.Database,
		User:      cfg.User,
		IsDefault: isDefault,
		ReadOnly:  cfg.ReadOnly,
		MaxRows:   cfg.MaxRows,
		Tools:     tools,
	}
	if cfg.SSHTunnel != nil {
		ds.SSHTunnel = &sshTunnelView{
			Enabled: true,
			Host:    cfg.SSHTunnel.Host,
			Port:    cfg.SSHTunnel.Port,
			User:    cfg.SSHTunnel.User,
		}
	}
	if ds.Tools == nil {
		ds.Tools = []string{}
	}
	return ds
}
