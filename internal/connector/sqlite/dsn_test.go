package sqlite

import "testing"

func TestDriverDSN(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"sqlite:///var/lib/gateway/app.db", "/var/lib/gateway/app.db"},
		{"sqlite:///:memory:", ":memory:"},
		{"sqlite://app.db", "app.db"},
		{"sqlite:///data/app.db?_pragma=journal_mode(WAL)", "/data/app.db?_pragma=journal_mode(WAL)"},
		{":memory:", ":memory:"},
		{"/already/a/path.db", "/already/a/path.db"},
	}

	for _, tc := range cases {
		if got := driverDSN(tc.raw); got != tc.want {
			t.Errorf("driverDSN(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
