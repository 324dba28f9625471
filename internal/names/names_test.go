package names

import (
	"slices"
	"testing"
)

func TestGetCaseAware(t *testing.T) {
	m := New[int]()
	m.Set("GameUI", 1)
	m.Set("Panel", 2)

	tests := []struct {
		name      string
		lookup    string
		wantValue int
		wantKey   string
		wantMatch Match
	}{
		{name: "exact", lookup: "GameUI", wantValue: 1, wantKey: "GameUI", wantMatch: MatchExact},
		{name: "mismatch", lookup: "gameui", wantValue: 1, wantKey: "GameUI", wantMatch: MatchCaseMismatch},
		{name: "none", lookup: "Missing", wantMatch: MatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, key, match := m.Get(tt.lookup)
			if match != tt.wantMatch {
				t.Fatalf("Get(%q) match = %v, want %v", tt.lookup, match, tt.wantMatch)
			}
			if v != tt.wantValue || key != tt.wantKey {
				t.Fatalf("Get(%q) = (%d, %q), want (%d, %q)", tt.lookup, v, key, tt.wantValue, tt.wantKey)
			}
		})
	}

	if _, ok := m.GetExactCase("panel"); ok {
		t.Fatalf("GetExactCase(panel) ok = true")
	}
	if !m.Has("PANEL") {
		t.Fatalf("Has(PANEL) = false")
	}
}

func TestSetKeepsFirstSpelling(t *testing.T) {
	m := New[string]()
	m.Set("Foo", "a")
	m.Set("FOO", "b")
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	v, key, match := m.Get("FOO")
	if v != "b" || key != "Foo" || match != MatchCaseMismatch {
		t.Fatalf("Get(FOO) = (%q, %q, %v)", v, key, match)
	}
}

func TestOrderAndDelete(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "B", "c", "D"} {
		m.Set(k, i)
	}
	if !m.Delete("b") {
		t.Fatalf("Delete(b) = false")
	}
	if m.Delete("b") {
		t.Fatalf("second Delete(b) = true")
	}
	if got, want := m.Keys(), []string{"a", "c", "D"}; !slices.Equal(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if got := m.Index("d"); got != 2 {
		t.Fatalf("Index(d) = %d, want 2", got)
	}
	key, v, ok := m.At(1)
	if !ok || key != "c" || v != 2 {
		t.Fatalf("At(1) = (%q, %d, %v)", key, v, ok)
	}
	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
	}
	if !slices.Equal(seen, []string{"a", "c", "D"}) {
		t.Fatalf("All() = %v", seen)
	}
}

func TestNilMap(t *testing.T) {
	var m *Map[int]
	if m.Len() != 0 || m.Has("x") || m.Index("x") != -1 {
		t.Fatalf("nil map should behave as empty")
	}
	if _, _, match := m.Get("x"); match != MatchNone {
		t.Fatalf("nil Get match = %v", match)
	}
}
