package graphcycle

import (
	"errors"
	"slices"
	"testing"
)

func TestDetectCycle(t *testing.T) {
	graph := map[int][]int{
		1: {2},
		2: {3},
		3: {1},
	}
	err := Detect(Config[int]{
		Starts:  []int{1},
		Missing: MissingPolicyError,
		Exists: func(n int) bool {
			_, ok := graph[n]
			return ok
		},
		Next: func(n int) ([]int, error) {
			return graph[n], nil
		},
	})
	var cycleError CycleError[int]
	if !errors.As(err, &cycleError) {
		t.Fatalf("Detect() error = %T, want CycleError[int]", err)
	}
	if want := []int{1, 2, 3, 1}; !slices.Equal(cycleError.Path, want) {
		t.Fatalf("cycle path = %v, want %v", cycleError.Path, want)
	}
}

func TestDetectMissingPolicy(t *testing.T) {
	graph := map[string][]string{
		"Button": {"Control"},
	}
	cfg := Config[string]{
		Starts: []string{"Button"},
		Exists: func(n string) bool {
			_, ok := graph[n]
			return ok
		},
		Next: func(n string) ([]string, error) {
			return graph[n], nil
		},
	}

	cfg.Missing = MissingPolicyError
	var missing MissingError[string]
	if err := Detect(cfg); !errors.As(err, &missing) {
		t.Fatalf("Detect() error = %v, want MissingError", err)
	}
	if missing.From != "Button" || missing.Key != "Control" {
		t.Fatalf("missing = %+v", missing)
	}

	cfg.Missing = MissingPolicyIgnore
	if err := Detect(cfg); err != nil {
		t.Fatalf("Detect() with ignore policy error = %v", err)
	}
}

func TestDetectNilNext(t *testing.T) {
	if err := Detect(Config[int]{Starts: []int{1}}); err == nil {
		t.Fatalf("Detect() with nil Next should fail")
	}
}

func TestFollow(t *testing.T) {
	links := map[string]string{"A": "B", "B": "C"}
	next := func(k string) (string, bool) {
		v, ok := links[k]
		return v, ok
	}
	chain, err := Follow("A", next)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if want := []string{"A", "B", "C"}; !slices.Equal(chain, want) {
		t.Fatalf("Follow() = %v, want %v", chain, want)
	}

	links["C"] = "A"
	_, err = Follow("A", next)
	var cycle CycleError[string]
	if !errors.As(err, &cycle) {
		t.Fatalf("Follow() error = %v, want CycleError", err)
	}
	if want := []string{"A", "B", "C", "A"}; !slices.Equal(cycle.Path, want) {
		t.Fatalf("cycle path = %v, want %v", cycle.Path, want)
	}

	links = map[string]string{"X": "X"}
	if _, err := Follow("X", next); !errors.As(err, &cycle) {
		t.Fatalf("self reference should be a cycle, got %v", err)
	}
}
