package param

import (
	"reflect"
	"testing"

	"github.com/dbgateway/gateway/internal/sqltext"
)

func TestEnumerate_Postgres(t *testing.T) {
	ph := Enumerate("SELECT * FROM users WHERE id = $1 AND name = $2", sqltext.Postgres)
	if len(ph) != 2 || ph[0].Index != 1 || ph[1].Index != 2 {
		t.Fatalf("got %+v", ph)
	}
}

func TestEnumerate_IgnoresPlaceholderInsideStringLiteral(t *testing.T) {
	ph := Enumerate("SELECT * FROM t WHERE note = '$1 is not a placeholder' AND id = $1", sqltext.Postgres)
	if len(ph) != 1 {
		t.Fatalf("expected 1 real placeholder, got %d: %+v", len(ph), ph)
	}
}

func TestEnumerate_MySQLOrdinal(t *testing.T) {
	ph := Enumerate("SELECT * FROM t WHERE a = ? AND b = ?", sqltext.MySQL)
	if len(ph) != 2 || ph[0].Index != 1 || ph[1].Index != 2 {
		t.Fatalf("got %+v", ph)
	}
}

func TestEnumerate_SQLServerAtP(t *testing.T) {
	ph := Enumerate("SELECT * FROM t WHERE a = @p1 AND b = @p2", sqltext.SQLServer)
	if len(ph) != 2 || ph[0].Index != 1 || ph[1].Index != 2 {
		t.Fatalf("got %+v", ph)
	}
}

func TestEnumerate_OracleNamed(t *testing.T) {
	ph := Enumerate("SELECT * FROM t WHERE a = :user_id AND b = :status", sqltext.Oracle)
	names := DistinctNames(ph)
	want := []string{"status", "user_id"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestEnumerate_IgnoresPlaceholderInsideComment(t *testing.T) {
	ph := Enumerate("SELECT 1 -- what about $1?\n", sqltext.Postgres)
	if len(ph) != 0 {
		t.Fatalf("expected 0 placeholders, got %+v", ph)
	}
}
