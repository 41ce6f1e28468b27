package tunnel

import (
	"context"
	"testing"
)

func TestEstablish_EmptyChainRejected(t *testing.T) {
	_, err := Establish(context.Background(), nil, "target.internal", 5432)
	if err == nil {
		t.Fatal("expected error for empty hop chain")
	}
}

func TestEstablish_DialFailureReturnsError(t *testing.T) {
	chain := []HopConfig{{Host: "127.0.0.1", Port: 1, User: "nobody", Password: "x"}}
	tun, err := Establish(context.Background(), chain, "target.internal", 5432)
	if err == nil {
		tun.Close()
		t.Fatal("expected dial to an unused port to fail")
	}
}

func TestAuthMethods_RequiresCredential(t *testing.T) {
	_, err := authMethods(HopConfig{Host: "h", User: "u"})
	if err == nil {
		t.Fatal("expected error when neither password nor private key is configured")
	}
}

func TestAuthMethods_PasswordIsSufficient(t *testing.T) {
	methods, err := authMethods(HopConfig{Host: "h", User: "u", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("expected 1 auth method, got %d", len(methods))
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateInit:           "init",
		StateAuthenticating: "authenticating",
		StateForwarding:     "forwarding",
		StateClosed:         "closed",
		StateFailed:         "failed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
