// Package tunnel implements local TCP port forwarding over one or more
// chained SSH hops. Establish dials each hop in turn — the first over a
// plain TCP connection, every subsequent one by opening a direct-tcpip
// channel through the previous hop's already-authenticated client, exactly
// as golang.org/x/crypto/ssh's own Client.Dial is documented to support —
// then starts a local listener whose accept loop forwards each connection
// to the target through the last hop in the chain.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// State is a tunnel's position in the Init -> Authenticating -> Forwarding
// -> Closed/Failed state machine.
type State int

const (
	StateInit State = iota
	StateAuthenticating
	StateForwarding
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAuthenticating:
		return "authenticating"
	case StateForwarding:
		return "forwarding"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HopConfig describes one SSH hop in a jump chain: either the tunnel's
// entry point or an intermediate jump host named by ProxyJump.
type HopConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	Passphrase     string
}

// DialTimeout bounds each hop's TCP dial and SSH handshake.
var DialTimeout = 10 * time.Second

// Tunnel is a live forwarding session: a local listener whose accepted
// connections are forwarded through the hop chain to the target address.
type Tunnel struct {
	mu        sync.Mutex
	state     State
	listener  net.Listener
	clients   []*ssh.Client
	localPort int
	done      chan struct{}
}

// Establish dials every hop in chain in order (chain[0] first, directly;
// each subsequent hop through the previous one), then opens a local
// listener forwarding to target. chain must have at least one hop.
func Establish(ctx context.Context, chain []HopConfig, targetHost string, targetPort int) (*Tunnel, error) {
	if len(chain) == 0 {
		return nil, errors.New("ssh tunnel: at least one hop is required")
	}

	t := &Tunnel{state: StateAuthenticating, done: make(chan struct{})}

	var clients []*ssh.Client
	for i, hop := range chain {
		client, err := dialHop(ctx, clients, hop)
		if err != nil {
			closeClients(clients)
			t.setState(StateFailed)
			return nil, fmt.Errorf("ssh tunnel: hop %d (%s@%s:%d): %w", i, hop.User, hop.Host, hop.Port, err)
		}
		clients = append(clients, client)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		closeClients(clients)
		t.setState(StateFailed)
		return nil, fmt.Errorf("ssh tunnel: local listener: %w", err)
	}

	t.clients = clients
	t.listener = listener
	t.localPort = listener.Addr().(*net.TCPAddr).Port
	t.setState(StateForwarding)

	go t.acceptLoop(targetHost, targetPort)
	return t, nil
}

func dialHop(ctx context.Context, priorHops []*ssh.Client, hop HopConfig) (*ssh.Client, error) {
	auths, err := authMethods(hop)
	if err != nil {
		return nil, err
	}
	cfg := &ssh.ClientConfig{
		User:            hop.User,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DialTimeout,
	}
	addr := fmt.Sprintf("%s:%d", hop.Host, hop.Port)

	if len(priorHops) == 0 {
		return ssh.Dial("tcp", addr, cfg)
	}

	prev := priorHops[len(priorHops)-1]
	conn, err := prev.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("jump to %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake with %s: %w", addr, err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func authMethods(hop HopConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if hop.PrivateKeyPath != "" {
		signer, err := loadPrivateKey(hop.PrivateKeyPath, hop.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if hop.Password != "" {
		methods = append(methods, ssh.Password(hop.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("no password or private key configured")
	}
	return methods, nil
}

func loadPrivateKey(path, passphrase string) (ssh.Signer, error) {
	resolved := expandHome(path)
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(data)
}

func closeClients(clients []*ssh.Client) {
	for i := len(clients) - 1; i >= 0; i-- {
		clients[i].Close()
	}
}

func (t *Tunnel) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// State returns the tunnel's current state.
func (t *Tunnel) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LocalHost is always 127.0.0.1: the listener never binds any other
// interface.
func (t *Tunnel) LocalHost() string { return "127.0.0.1" }

// LocalPort is the kernel-assigned ephemeral port the listener accepted on.
func (t *Tunnel) LocalPort() int { return t.localPort }

func (t *Tunnel) acceptLoop(targetHost string, targetPort int) {
	last := t.clients[len(t.clients)-1]
	targetAddr := fmt.Sprintf("%s:%d", targetHost, targetPort)

	for {
		localConn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				t.setState(StateClosed)
				return
			}
		}
		go forward(localConn, last, targetAddr)
	}
}

func forward(localConn net.Conn, client *ssh.Client, targetAddr string) {
	remoteConn, err := client.Dial("tcp", targetAddr)
	if err != nil {
		localConn.Close()
		return
	}

	done := make(chan struct{}, 2)
	copyAndSignal := func(dst net.Conn, src net.Conn) {
		io.Copy(dst, src)
		done <- struct{}{}
	}
	go copyAndSignal(remoteConn, localConn)
	go copyAndSignal(localConn, remoteConn)
	<-done

	localConn.Close()
	remoteConn.Close()
}

// Close tears the tunnel down: stops the accept loop, closes the listener,
// and closes every hop's SSH client in reverse (closest-to-target first).
func (t *Tunnel) Close() error {
	t.mu.Lock()
	if t.state == StateClosed {
		t.mu.Unlock()
		return nil
	}
	t.state = StateClosed
	t.mu.Unlock()

	close(t.done)
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	closeClients(t.clients)
	return err
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
