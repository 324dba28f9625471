// Package graphcycle detects cycles in keyed reference graphs: complex-type
// inheritance in the schema catalogue, template chains and constant chains.
package graphcycle

import "fmt"

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// MissingPolicy controls behavior when a referenced node is missing.
type MissingPolicy uint8

const (
	MissingPolicyIgnore MissingPolicy = iota
	MissingPolicyError
)

// CycleError reports a cycle. Path lists the keys from the first key of the
// cycle back to itself.
type CycleError[K comparable] struct {
	Path []K
}

// Error returns the error string.
func (e CycleError[K]) Error() string {
	return fmt.Sprintf("cycle detected: %v", e.Path)
}

// MissingError reports a missing referenced node.
type MissingError[K comparable] struct {
	From K
	Key  K
}

// Error returns the error string.
func (e MissingError[K]) Error() string {
	return fmt.Sprintf("missing node %v referenced from %v", e.Key, e.From)
}

// Config configures cycle detection traversal.
type Config[K comparable] struct {
	Exists  func(K) bool
	Next    func(K) ([]K, error)
	Starts  []K
	Missing MissingPolicy
}

// Detect walks directed edges from Starts and reports the first cycle or
// traversal error.
func Detect[K comparable](cfg Config[K]) error {
	if cfg.Next == nil {
		return fmt.Errorf("cycle detect: next function is nil")
	}
	states := make(map[K]visitState, len(cfg.Starts))
	var stack []K

	var visit func(key, from K, hasFrom bool) error
	visit = func(key, from K, hasFrom bool) error {
		switch states[key] {
		case stateVisiting:
			return CycleError[K]{Path: cyclePath(stack, key)}
		case stateDone:
			return nil
		}

		exists := true
		if cfg.Exists != nil {
			exists = cfg.Exists(key)
		}
		if !exists {
			if cfg.Missing == MissingPolicyIgnore || !hasFrom {
				return nil
			}
			return MissingError[K]{From: from, Key: key}
		}

		states[key] = stateVisiting
		stack = append(stack, key)
		neighbors, err := cfg.Next(key)
		if err != nil {
			return err
		}
		for _, next := range neighbors {
			if err := visit(next, key, true); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		states[key] = stateDone
		return nil
	}

	var zero K
	for _, start := range cfg.Starts {
		if err := visit(start, zero, false); err != nil {
			return err
		}
	}
	return nil
}

func cyclePath[K comparable](stack []K, key K) []K {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == key {
			path := append([]K(nil), stack[i:]...)
			return append(path, key)
		}
	}
	return []K{key}
}

// Follow walks a chain where every node has at most one successor. next
// reports the successor of a key and whether one exists. The returned chain
// starts with start and ends at the terminal key; a repeated key yields a
// CycleError with the chain walked so far.
func Follow[K comparable](start K, next func(K) (K, bool)) ([]K, error) {
	seen := map[K]bool{start: true}
	chain := []K{start}
	cur := start
	for {
		succ, ok := next(cur)
		if !ok {
			return chain, nil
		}
		if seen[succ] {
			return chain, CycleError[K]{Path: cyclePath(chain, succ)}
		}
		seen[succ] = true
		chain = append(chain, succ)
		cur = succ
	}
}
