package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCategoryRegistryOrder(t *testing.T) {
	want := []string{"Food & Drink", "Transport", "Housing", "Entertainment", "Health", "Shopping", "Utilities", "Other"}
	got := CategoryNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, name := range CategoryNames() {
		c, err := ParseCategory(name)
		if err != nil {
			t.Fatalf("ParseCategory(%q): %v", name, err)
		}
		if c.String() != name {
			t.Fatalf("round trip %q -> %q", name, c.String())
		}
	}
	for _, bad := range []string{"", "food & drink", "Groceries", "All"} {
		_, err := ParseCategory(bad)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseCategory(%q) expected validation error, got %v", bad, err)
		}
	}
}

func TestParseCategoryFilter(t *testing.T) {
	for _, in := range []string{"", "All", "  All "} {
		c, err := ParseCategoryFilter(in)
		if err != nil || c != nil {
			t.Fatalf("ParseCategoryFilter(%q) = %v, %v; want nil, nil", in, c, err)
		}
	}
	c, err := ParseCategoryFilter("Health")
	if err != nil || c == nil || *c != Health {
		t.Fatalf("expected Health, got %v, %v", c, err)
	}
	if _, err := ParseCategoryFilter("Nope"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestCategoryZeroValueInvalid(t *testing.T) {
	var c Category
	if c.Valid() {
		t.Fatalf("zero category must be invalid")
	}
	if _, err := json.Marshal(c); err == nil {
		t.Fatalf("expected marshal error for zero category")
	}
}

func TestCategoryMapKeyJSON(t *testing.T) {
	in := map[Category]Money{FoodAndDrink: Cents(1250), Transport: Cents(4000)}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[Category]Money
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	if out[FoodAndDrink].Cents != 1250 || out[Transport].Cents != 4000 || len(out) != 2 {
		t.Fatalf("unexpected decode %v from %s", out, b)
	}
}
