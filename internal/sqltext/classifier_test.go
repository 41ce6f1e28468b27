package sqltext

import "testing"

func TestIsReadOnlyStatement(t *testing.T) {
	cases := []struct {
		dialect Dialect
		sql     string
		want    bool
	}{
		{Postgres, "SELECT * FROM users", true},
		{Postgres, "  -- note\nSELECT 1", true},
		{Postgres, "WITH x AS (SELECT 1) SELECT * FROM x", true},
		{Postgres, "EXPLAIN SELECT 1", true},
		{Postgres, "UPDATE users SET name = 'x'", false},
		{Postgres, "DELETE FROM users", false},
		{Postgres, "INSERT INTO users (name) VALUES ('x')", false},
		{MySQL, "SHOW TABLES", true},
		{MySQL, "DESCRIBE users", true},
		{SQLite, "PRAGMA table_info(users)", true},
		{SQLServer, "SHOW TABLES", false}, // SHOW is not ANSI/sqlserver SQL
		{Oracle, "SELECT * FROM dual", true},
		{DaMeng, "EXPLAIN PLAN FOR SELECT 1", true},
	}

	for _, tc := range cases {
		if got := IsReadOnlyStatement(tc.sql, tc.dialect); got != tc.want {
			t.Errorf("IsReadOnlyStatement(%q, %v) = %v, want %v", tc.sql, tc.dialect, got, tc.want)
		}
	}
}

func TestIsReadOnlyMulti_OneMutatingStatementFailsTheBatch(t *testing.T) {
	sql := "SELECT 1; UPDATE users SET name = 'x'; SELECT 2"
	if IsReadOnlyMulti(sql, Postgres) {
		t.Error("expected batch containing an UPDATE to be classified as not read-only")
	}
}

func TestIsReadOnlyMulti_AllSelectsPasses(t *testing.T) {
	sql := "SELECT 1; SELECT 2; WITH x AS (SELECT 3) SELECT * FROM x"
	if !IsReadOnlyMulti(sql, Postgres) {
		t.Error("expected an all-SELECT batch to be classified as read-only")
	}
}

// Open-question decision: UPDATE ... RETURNING on a readonly source is
// still rejected. RETURNING does not change the statement's leading
// keyword, so the classifier need not special-case it.
func TestIsReadOnlyStatement_UpdateReturningIsNotReadOnly(t *testing.T) {
	sql := "UPDATE users SET name = 'x' WHERE id = 1 RETURNING id"
	if IsReadOnlyStatement(sql, Postgres) {
		t.Error("UPDATE ... RETURNING must not be classified as read-only")
	}
}
