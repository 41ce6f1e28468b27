package sqltext

import "testing"

func TestApplyMaxRows_NoExistingLimit(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users", Postgres, 100)
	want := "SELECT * FROM users LIMIT 100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_CapsLiteralLimit(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users LIMIT 5000", Postgres, 100)
	want := "SELECT * FROM users LIMIT 100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_LeavesSmallerLiteralLimitAlone(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users LIMIT 10", Postgres, 100)
	want := "SELECT * FROM users LIMIT 10"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// S2: a parameterized LIMIT cannot be capped in place because the bound
// value is unknown until execution; the statement is wrapped instead.
func TestApplyMaxRows_WrapsParameterizedLimit(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users LIMIT $1", Postgres, 100)
	want := "SELECT * FROM (SELECT * FROM users LIMIT $1) AS subq LIMIT 100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_MySQLPlaceholder(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users LIMIT ?", MySQL, 50)
	want := "SELECT * FROM (SELECT * FROM users LIMIT ?) AS subq LIMIT 50"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_MultibyteCommentBeforeLimit(t *testing.T) {
	got := ApplyMaxRows("/* café ☕ */ SELECT * FROM users LIMIT 500", Postgres, 100)
	want := "/* café ☕ */ SELECT * FROM users LIMIT 100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_PreservesTrailingSemicolon(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users;", Postgres, 10)
	want := "SELECT * FROM users LIMIT 10;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_NonSelectPassesThrough(t *testing.T) {
	sql := "UPDATE users SET name = 'x'"
	if got := ApplyMaxRows(sql, Postgres, 10); got != sql {
		t.Errorf("expected non-SELECT statement to be untouched, got %q", got)
	}
}

func TestApplyMaxRows_SQLServerInsertsTop(t *testing.T) {
	got := ApplyMaxRows("SELECT * FROM users", SQLServer, 20)
	want := "SELECT TOP 20 * FROM users"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_SQLServerCapsExistingTop(t *testing.T) {
	got := ApplyMaxRows("SELECT TOP 500 * FROM users", SQLServer, 20)
	want := "SELECT TOP 20 * FROM users"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyMaxRows_SQLServerWrapsParameterizedTop(t *testing.T) {
	got := ApplyMaxRows("SELECT TOP (@p1) * FROM users", SQLServer, 20)
	want := "SELECT TOP 20 * FROM (SELECT TOP (@p1) * FROM users) AS subq"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
