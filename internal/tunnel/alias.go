package tunnel

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// LooksLikeAlias reports whether host is plausibly an ~/.ssh/config Host
// alias rather than a literal hostname or IP: no dots, and not an IP
// address.
func LooksLikeAlias(host string) bool {
	if net.ParseIP(host) != nil {
		return false
	}
	return !strings.Contains(host, ".")
}

// ResolveAlias looks up alias in the user's ~/.ssh/config using standard
// SSH client config semantics (Host, HostName, User, Port, IdentityFile,
// ProxyJump). If IdentityFile is unset, it falls back to
// ~/.ssh/id_{rsa,ed25519,ecdsa,dsa} in that order. ProxyCommand is
// detected but not supported; its presence is returned via warnedProxyCmd
// so the caller can log it and continue without it.
func ResolveAlias(alias string) (hop HopConfig, proxyJump []string, warnedProxyCmd bool, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return HopConfig{}, nil, false, err
	}

	f, err := os.Open(filepath.Join(home, ".ssh", "config"))
	if err != nil {
		return HopConfig{}, nil, false, err
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return HopConfig{}, nil, false, err
	}

	hostname := get(cfg, alias, "HostName")
	if hostname == "" {
		hostname = alias
	}
	user := get(cfg, alias, "User")
	port := 22
	if p := get(cfg, alias, "Port"); p != "" {
		if n, convErr := strconv.Atoi(p); convErr == nil {
			port = n
		}
	}

	identity := get(cfg, alias, "IdentityFile")
	if identity == "" {
		identity = defaultIdentityFile(home)
	} else {
		identity = expandHome(identity)
		if real, evalErr := filepath.EvalSymlinks(identity); evalErr == nil {
			identity = real
		}
	}

	if pj := get(cfg, alias, "ProxyJump"); pj != "" {
		for _, h := range strings.Split(pj, ",") {
			proxyJump = append(proxyJump, strings.TrimSpace(h))
		}
	}
	warnedProxyCmd = get(cfg, alias, "ProxyCommand") != ""

	return HopConfig{Host: hostname, Port: port, User: user, PrivateKeyPath: identity}, proxyJump, warnedProxyCmd, nil
}

func get(cfg *ssh_config.Config, alias, key string) string {
	v, err := cfg.Get(alias, key)
	if err != nil {
		return ""
	}
	return v
}

func defaultIdentityFile(home string) string {
	for _, name := range []string{"id_rsa", "id_ed25519", "id_ecdsa", "id_dsa"} {
		p := filepath.Join(home, ".ssh", name)
		if _, statErr := os.Stat(p); statErr == nil {
			return p
		}
	}
	return ""
}
