package postgres

import (
	"reflect"
	"testing"
)

func TestRenderWhere_RebindsPlaceholders(t *testing.T) {
	t.Parallel()

	sql, args := renderWhere([]Condition{
		Eq("company_id", "c-1"),
		Between("age", 30, 40),
		In("position", "dev", "ops"),
	}, nil)

	expectedSQL := " WHERE company_id = $1 AND age BETWEEN $2 AND $3 AND position IN ($4, $5)"
	if sql != expectedSQL {
		t.Fatalf("unexpected sql.\nwant %q\ngot  %q", expectedSQL, sql)
	}

	expectedArgs := []any{"c-1", 30, 40, "dev", "ops"}
	if !reflect.DeepEqual(args, expectedArgs) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestRenderWhere_Empty(t *testing.T) {
	t.Parallel()

	sql, args := renderWhere(nil, []any{1})
	if sql != "" {
		t.Fatalf("expected empty where clause, got %q", sql)
	}
	if len(args) != 1 {
		t.Fatalf("existing args must be preserved, got %v", args)
	}
}

func TestIn_EmptyIsAlwaysFalse(t *testing.T) {
	t.Parallel()

	sql, args := renderWhere([]Condition{In("id")}, nil)
	if sql != " WHERE FALSE" || len(args) != 0 {
		t.Fatalf("unexpected rendering: %q %v", sql, args)
	}
}

func TestContains_LowercasesAndEscapes(t *testing.T) {
	t.Parallel()

	c := Contains("name", `John_50%\`)
	if c.sql != "LOWER(name) LIKE ?" {
		t.Fatalf("unexpected sql: %s", c.sql)
	}
	if got := c.args[0]; got != `%john\_50\%\\%` {
		t.Fatalf("unexpected pattern: %v", got)
	}
}
