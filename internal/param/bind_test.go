package param

import (
	"testing"

	"github.com/dbgateway/gateway/internal/sqltext"
)

func TestValidateSchema_PositionalIndexMatches(t *testing.T) {
	declared := []Spec{{Name: "id", Type: TypeInteger, Required: true}, {Name: "status", Type: TypeString}}
	ph := Enumerate("SELECT * FROM t WHERE id = $1 AND status = $2", sqltext.Postgres)
	if err := ValidateSchema(sqltext.Postgres, declared, ph); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSchema_PositionalCountMismatch(t *testing.T) {
	declared := []Spec{{Name: "id", Type: TypeInteger, Required: true}}
	ph := Enumerate("SELECT * FROM t WHERE id = $1 AND status = $2", sqltext.Postgres)
	err := ValidateSchema(sqltext.Postgres, declared, ph)
	if _, ok := err.(*PlaceholderCountMismatchError); !ok {
		t.Fatalf("expected *PlaceholderCountMismatchError, got %v", err)
	}
}

func TestValidateSchema_NamedMatchesOrderInsensitive(t *testing.T) {
	declared := []Spec{{Name: "status", Type: TypeString}, {Name: "user_id", Type: TypeInteger}}
	ph := Enumerate("SELECT * FROM t WHERE user_id = :user_id AND status = :status", sqltext.Oracle)
	if err := ValidateSchema(sqltext.Oracle, declared, ph); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSchema_NamedMismatch(t *testing.T) {
	declared := []Spec{{Name: "status", Type: TypeString}}
	ph := Enumerate("SELECT * FROM t WHERE user_id = :user_id", sqltext.Oracle)
	err := ValidateSchema(sqltext.Oracle, declared, ph)
	if _, ok := err.(*PlaceholderNameMismatchError); !ok {
		t.Fatalf("expected *PlaceholderNameMismatchError, got %v", err)
	}
}

func TestBind_AppliesDefaultForMissingArg(t *testing.T) {
	declared := []Spec{{Name: "limit", Type: TypeInteger, Default: 10}}
	out, err := Bind(declared, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["limit"] != 10 {
		t.Errorf("got %v, want 10", out["limit"])
	}
}

func TestBind_MissingRequiredFails(t *testing.T) {
	declared := []Spec{{Name: "id", Type: TypeInteger, Required: true}}
	_, err := Bind(declared, map[string]any{})
	if _, ok := err.(*MissingRequiredParameterError); !ok {
		t.Fatalf("expected *MissingRequiredParameterError, got %v", err)
	}
}

func TestBind_CoercesStringToInteger(t *testing.T) {
	declared := []Spec{{Name: "id", Type: TypeInteger}}
	out, err := Bind(declared, map[string]any{"id": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["id"] != 42 {
		t.Errorf("got %v, want 42", out["id"])
	}
}

func TestBind_RejectsValueOutsideAllowedSet(t *testing.T) {
	declared := []Spec{{Name: "status", Type: TypeString, AllowedValues: []any{"active", "archived"}}}
	_, err := Bind(declared, map[string]any{"status": "deleted"})
	if _, ok := err.(*DisallowedValueError); !ok {
		t.Fatalf("expected *DisallowedValueError, got %v", err)
	}
}

func TestBind_RejectsUnknownParameter(t *testing.T) {
	declared := []Spec{{Name: "id", Type: TypeInteger}}
	_, err := Bind(declared, map[string]any{"unexpected": 1})
	if _, ok := err.(*UnknownParameterError); !ok {
		t.Fatalf("expected *UnknownParameterError, got %v", err)
	}
}
