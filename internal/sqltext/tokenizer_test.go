package sqltext

import "testing"

func TestStripCommentsAndStrings_PreservesLength(t *testing.T) {
	cases := []struct {
		dialect Dialect
		sql     string
	}{
		{Postgres, `SELECT * FROM t WHERE name = 'O''Brien' -- trailing comment`},
		{Postgres, `/* block /* nested */ still comment */ SELECT 1`},
		{MySQL, "SELECT `col`, \"lit\" FROM `tbl`"},
		{SQLServer, `SELECT [My Col] FROM [dbo].[Table]`},
		{Postgres, `DO $body$ BEGIN RAISE NOTICE 'a;b'; END $body$; SELECT 1`},
	}

	for _, tc := range cases {
		stripped := StripCommentsAndStrings(tc.sql, tc.dialect)
		if len([]rune(stripped)) != len([]rune(tc.sql)) {
			t.Errorf("dialect=%v sql=%q: stripped length %d != original length %d", tc.dialect, tc.sql, len([]rune(stripped)), len([]rune(tc.sql)))
		}
	}
}

func TestScan_PostgresNestedBlockComment(t *testing.T) {
	sql := `SELECT 1 /* outer /* inner */ still-comment */ + 2`
	toks := Scan(sql, Postgres)
	foundComment := false
	for _, tok := range toks {
		if tok.Kind == Comment {
			text := string([]rune(sql)[tok.Start:tok.End])
			if text == `/* outer /* inner */ still-comment */` {
				foundComment = true
			}
		}
	}
	if !foundComment {
		t.Errorf("expected the whole nested comment to be one token, tokens=%+v", toks)
	}
}

func TestScan_MySQLDoesNotNestBlockComment(t *testing.T) {
	sql := `SELECT 1 /* a /* b */ c */ 2`
	stripped := StripCommentsAndStrings(sql, MySQL)
	// Since MySQL doesn't nest, the comment closes at the first */, leaving
	// "c */ 2" as plain text (with "c" where the comment was not, trailing
	// "*/ 2" as leftover plain SQL).
	if stripped == StripCommentsAndStrings(sql, Postgres) {
		t.Errorf("expected MySQL and Postgres nesting behavior to differ for %q", sql)
	}
}

func TestScan_DollarQuoteNotConfusedWithPlaceholder(t *testing.T) {
	sql := `SELECT * FROM t WHERE id = $1`
	toks := Scan(sql, Postgres)
	for _, tok := range toks {
		if tok.Kind == QuotedBlock {
			t.Errorf("parameter placeholder $1 should not be tokenized as a dollar-quoted block: %+v", toks)
		}
	}
}

func TestSplitStatements_DollarQuoteHidesEmbeddedSemicolon(t *testing.T) {
	sql := `DO $body$ BEGIN RAISE NOTICE 'a;b'; END $body$; SELECT 1`
	stmts := SplitStatements(sql, Postgres)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(stmts), stmts)
	}
	if stmts[1] != "SELECT 1" {
		t.Errorf("second statement = %q, want %q", stmts[1], "SELECT 1")
	}
}

func TestSplitStatements_SemicolonInsideStringLiteral(t *testing.T) {
	sql := `INSERT INTO t (note) VALUES ('a; b'); SELECT 1`
	stmts := SplitStatements(sql, Postgres)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(stmts), stmts)
	}
}

func TestSplitStatements_TrailingEmptySegmentDropped(t *testing.T) {
	stmts := SplitStatements("SELECT 1;", Postgres)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d: %+v", len(stmts), stmts)
	}
}

func TestFirstKeyword_IgnoresLeadingComment(t *testing.T) {
	sql := "-- note\nSELECT 1"
	if got := FirstKeyword(sql, Postgres); got != "select" {
		t.Errorf("FirstKeyword = %q, want select", got)
	}
}
