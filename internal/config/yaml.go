// Package config loads the on-disk source list and custom tool
// definitions from a single YAML document into the shapes internal/source
// and internal/tool consume directly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dbgateway/gateway/internal/param"
	"github.com/dbgateway/gateway/internal/source"
	"github.com/dbgateway/gateway/internal/tool"
)

// File is the top-level shape of sources.yaml.
type File struct {
	Sources     []SourceYAML     `yaml:"sources"`
	CustomTools []CustomToolYAML `yaml:"custom_tools"`
}

// SourceYAML mirrors source.Config field-for-field.
type SourceYAML struct {
	ID       string            `yaml:"id"`
	Type     string            `yaml:"type"`
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Database string            `yaml:"database"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Extra    map[string]string `yaml:"extra"`
	Schema   string            `yaml:"schema"`

	ReadOnly       bool   `yaml:"readonly"`
	MaxRows        int    `yaml:"max_rows"`
	ConnectTimeout int    `yaml:"connection_timeout"`
	RequestTimeout int    `yaml:"request_timeout"`
	InitScript     string `yaml:"init_script"`

	SSHTunnel *SSHTunnelYAML `yaml:"ssh_tunnel"`
	Pool      *PoolYAML      `yaml:"pool"`
}

// SSHTunnelYAML mirrors source.SSHTunnelConfig.
type SSHTunnelYAML struct {
	Host       string `yaml:"ssh_host"`
	Port       int    `yaml:"ssh_port"`
	User       string `yaml:"ssh_user"`
	Password   string `yaml:"ssh_password"`
	Key        string `yaml:"ssh_key"`
	Passphrase string `yaml:"ssh_passphrase"`
	ProxyJump  string `yaml:"proxy_jump"`
}

// PoolYAML mirrors source.PoolConfig.
type PoolYAML struct {
	MaxOpenConns    int `yaml:"max_open_conns"`
	MaxIdleConns    int `yaml:"max_idle_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime int `yaml:"conn_max_idle_time"`
}

// CustomToolYAML mirrors tool.CustomToolDef.
type CustomToolYAML struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Source      string          `yaml:"source"`
	Statement   string          `yaml:"statement"`
	Parameters  []ParamSpecYAML `yaml:"parameters"`
}

// ParamSpecYAML mirrors param.Spec.
type ParamSpecYAML struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Required      bool   `yaml:"required"`
	Default       any    `yaml:"default"`
	Description   string `yaml:"description"`
	AllowedValues []any  `yaml:"allowed_values"`
}

// Load reads path, expanding ${VAR_NAME} environment references before
// parsing, and returns the decoded sources and custom tools ready for
// source.New and Registry.LoadCustomTools.
func Load(path string) ([]source.Config, []tool.CustomToolDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, nil, fmt.Errorf("parse config file: %w", err)
	}

	if len(f.Sources) == 0 {
		return nil, nil, fmt.Errorf("config file %q declares no sources", path)
	}

	sources := make([]source.Config, 0, len(f.Sources))
	for _, s := range f.Sources {
		sources = append(sources, toSourceConfig(s))
	}

	tools := make([]tool.CustomToolDef, 0, len(f.CustomTools))
	for _, t := range f.CustomTools {
		tools = append(tools, toCustomToolDef(t))
	}

	return sources, tools, nil
}

func toSourceConfig(s SourceYAML) source.Config {
	cfg := source.Config{
		ID:             s.ID,
		Type:           s.Type,
		DSN:            s.DSN,
		Host:           s.Host,
		Port:           s.Port,
		Database:       s.Database,
		User:           s.User,
		Password:       s.Password,
		Extra:          s.Extra,
		Schema:         s.Schema,
		ReadOnly:       s.ReadOnly,
		MaxRows:        s.MaxRows,
		ConnectTimeout: s.ConnectTimeout,
		RequestTimeout: s.RequestTimeout,
		InitScript:     s.InitScript,
	}
	if s.SSHTunnel != nil {
		cfg.SSHTunnel = &source.SSHTunnelConfig{
			Host:           s.SSHTunnel.Host,
			Port:           s.SSHTunnel.Port,
			User:           s.SSHTunnel.User,
			Password:       s.SSHTunnel.Password,
			PrivateKeyPath: s.SSHTunnel.Key,
			Passphrase:     s.SSHTunnel.Passphrase,
			ProxyJump:      s.SSHTunnel.ProxyJump,
		}
	}
	if s.Pool != nil {
		cfg.Pool = source.PoolConfig{
			MaxOpenConns:    s.Pool.MaxOpenConns,
			MaxIdleConns:    s.Pool.MaxIdleConns,
			ConnMaxLifetime: s.Pool.ConnMaxLifetime,
			ConnMaxIdleTime: s.Pool.ConnMaxIdleTime,
		}
	}
	return cfg
}

func toCustomToolDef(t CustomToolYAML) tool.CustomToolDef {
	params := make([]param.Spec, 0, len(t.Parameters))
	for _, p := range t.Parameters {
		params = append(params, param.Spec{
			Name:          p.Name,
			Type:          param.Type(p.Type),
			Required:      p.Required,
			Default:       p.Default,
			Description:   p.Description,
			AllowedValues: p.AllowedValues,
		})
	}
	return tool.CustomToolDef{
		Name:        t.Name,
		Description: t.Description,
		Source:      t.Source,
		Statement:   t.Statement,
		Parameters:  params,
	}
}
