package desc

import (
	"errors"
	"slices"
	"strings"

	"github.com/jacoelho/uilayout/internal/graphcycle"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
)

// CaseMismatch records a path segment that resolved with different letter
// case. Correct is the declared spelling.
type CaseMismatch struct {
	Correct string
	Index   int
}

// Resolution is the outcome of resolving a sequence of name segments.
type Resolution struct {
	Desc       *Desc
	Mismatches []CaseMismatch
	// Failed is the index of the first unresolved segment, or -1.
	Failed int
}

// Resolved reports whether every segment resolved.
func (r Resolution) Resolved() bool {
	return r.Failed < 0 && r.Desc != nil
}

// Resolve walks segments from from, or from the namespace root when from is
// nil. On failure Desc is the last descriptor reached.
func (idx *Index) Resolve(from *Desc, segments []string) Resolution {
	if from == nil {
		from = idx.root
	}
	res := Resolution{Desc: from, Failed: -1}
	for i, s := range segments {
		child, key, match := res.Desc.Child(s)
		if !match.Found() {
			res.Failed = i
			return res
		}
		if match == names.MatchCaseMismatch {
			res.Mismatches = append(res.Mismatches, CaseMismatch{Index: i, Correct: key})
		}
		res.Desc = child
	}
	return res
}

// GetMulti resolves segments from from, or from the root when from is nil,
// returning nil at the first segment that does not resolve.
func (idx *Index) GetMulti(from *Desc, segments ...string) *Desc {
	res := idx.Resolve(from, segments)
	if !res.Resolved() {
		return nil
	}
	return res.Desc
}

// Lookup resolves a slash separated fully qualified name from the root.
func (idx *Index) Lookup(fqn string) Resolution {
	return idx.Resolve(nil, SplitPath(fqn))
}

// SplitPath splits a slash separated desc path, ignoring a leading slash.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// File returns the file descriptor named name.
func (idx *Index) File(name string) (*Desc, string, names.Match) {
	return idx.root.Child(name)
}

// Constant returns the declared value of constant name, without following
// references.
func (idx *Index) Constant(name string) (value, key string, match names.Match) {
	e, key, match := idx.constants.Get(name)
	c, ok := e.last()
	if !ok {
		return "", "", names.MatchNone
	}
	return c.value, key, match
}

// ConstantDecl returns the element of the winning declaration of name.
func (idx *Index) ConstantDecl(name string) (*markup.Element, bool) {
	e, _, _ := idx.constants.Get(name)
	c, ok := e.last()
	return c.elem, ok
}

// Constants returns the declared constant names.
func (idx *Index) Constants() []string {
	return idx.constants.Keys()
}

// ConstantChain is the result of following constant references.
type ConstantChain struct {
	// Names lists the constants visited, starting with the requested one,
	// in their declared spelling.
	Names []string
	// Value is the terminal literal; empty when unresolved.
	Value    string
	Resolved bool
}

// ErrConstantCycle reports a chain of constants referring back to itself.
var ErrConstantCycle = errors.New("constant reference cycle")

// ResolveConstantDeep follows "#name" references from constant name to a
// literal. Cycles and references to undeclared constants are unresolved.
func (idx *Index) ResolveConstantDeep(name string) (ConstantChain, error) {
	_, key, match := idx.Constant(name)
	if !match.Found() {
		return ConstantChain{}, nil
	}
	chain, err := graphcycle.Follow(key, func(k string) (string, bool) {
		value, _, _ := idx.Constant(k)
		ref, ok := constantRef(value)
		if !ok {
			return "", false
		}
		_, next, match := idx.Constant(ref)
		return next, match.Found()
	})
	out := ConstantChain{Names: chain}
	if err != nil {
		return out, ErrConstantCycle
	}
	value, _, _ := idx.Constant(chain[len(chain)-1])
	if _, isRef := constantRef(value); isRef {
		return out, nil
	}
	out.Value = value
	out.Resolved = true
	return out, nil
}

func constantRef(value string) (string, bool) {
	if !strings.HasPrefix(value, "#") {
		return "", false
	}
	return strings.TrimLeft(value, "#"), true
}

// Handle returns the frame descriptor declaring custom handle name.
func (idx *Index) Handle(name string) (*Desc, string, names.Match) {
	e, key, match := idx.handles.Get(name)
	c, ok := e.last()
	if !ok {
		return nil, "", names.MatchNone
	}
	return c.value, key, match
}

// TemplateUsers returns the descriptors whose declarations name d as their
// template, in bind order.
func (idx *Index) TemplateUsers(d *Desc) []*Desc {
	e, ok := idx.templates[strings.ToLower(d.FQN())]
	if !ok {
		return nil
	}
	var out []*Desc
	for _, c := range e.items {
		if c.value.Attached() && !slices.Contains(out, c.value) {
			out = append(out, c.value)
		}
	}
	return out
}

// Template resolves the template named by d's last template attribute.
func (idx *Index) Template(d *Desc) (Resolution, bool) {
	name, _, ok := d.Attr("template")
	if !ok || name == "" {
		return Resolution{}, false
	}
	return idx.Lookup(name), true
}
