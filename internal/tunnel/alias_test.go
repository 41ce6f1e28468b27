package tunnel

import "testing"

func TestLooksLikeAlias(t *testing.T) {
	cases := map[string]bool{
		"bastion":       true,
		"db-jump":       true,
		"db.internal":   false,
		"192.168.1.10":  false,
		"::1":           false,
		"prod-bastion1": true,
	}
	for host, want := range cases {
		if got := LooksLikeAlias(host); got != want {
			t.Errorf("LooksLikeAlias(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestResolveAlias_MissingConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, _, _, err := ResolveAlias("bastion")
	if err == nil {
		t.Fatal("expected error when ~/.ssh/config does not exist")
	}
}
