package connector

import (
	"reflect"
	"testing"

	"github.com/dbgateway/gateway/internal/sqltext"
)

func TestBuildArgs_PositionalOrdersByIndex(t *testing.T) {
	args := buildArgs(sqltext.Postgres, map[string]any{"2": "b", "1": "a"})
	want := []any{"a", "b"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("got %+v, want %+v", args, want)
	}
}

func TestBuildArgs_EmptyParamsYieldsNil(t *testing.T) {
	if args := buildArgs(sqltext.Postgres, nil); args != nil {
		t.Errorf("expected nil, got %+v", args)
	}
}

func TestBuildArgs_NamedStyleProducesSQLNamed(t *testing.T) {
	args := buildArgs(sqltext.Oracle, map[string]any{"user_id": 7})
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
}

func TestProducesRows_SelectAlwaysTrue(t *testing.T) {
	if !producesRows(sqltext.Postgres, "SELECT 1", "select") {
		t.Error("expected SELECT to produce rows")
	}
}

func TestProducesRows_UpdateReturningIsTrue(t *testing.T) {
	stmt := "UPDATE users SET name = 'x' WHERE id = 1 RETURNING id"
	if !producesRows(sqltext.Postgres, stmt, "update") {
		t.Error("expected UPDATE ... RETURNING to produce rows")
	}
}

func TestProducesRows_PlainUpdateIsFalse(t *testing.T) {
	if producesRows(sqltext.Postgres, "UPDATE users SET name = 'x'", "update") {
		t.Error("expected plain UPDATE to not produce rows")
	}
}
