package hierarchy

import (
	"strings"

	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
	"github.com/jacoelho/uilayout/internal/selector"
)

// DefaultRootFile is the file "$root" refers to when it starts a path.
const DefaultRootFile = "GameUI"

// rootShortPath caps the fragments "$root" resolves directly in the
// namespace, "$root" included.
const rootShortPath = 3

// Navigator evaluates selector paths against a builder's nodes.
type Navigator struct {
	b        *Builder
	rootFile string
}

// NewNavigator returns a navigator over b. An empty rootFile selects
// DefaultRootFile.
func NewNavigator(b *Builder, rootFile string) *Navigator {
	if rootFile == "" {
		rootFile = DefaultRootFile
	}
	return &Navigator{b: b, rootFile: rootFile}
}

// Builder returns the underlying builder.
func (nav *Navigator) Builder() *Builder {
	return nav.b
}

// CaseMismatch records a fragment that resolved with different letter case.
type CaseMismatch struct {
	Correct  string
	Fragment int
}

// Selection is the result of resolving a fragment list. Chain holds the
// node reached after each resolved fragment; Target is set only when every
// fragment resolved.
type Selection struct {
	Chain      []NodeID
	Mismatches []CaseMismatch
	Target     NodeID
	// Failed is the index of the first unresolved fragment, or -1.
	Failed int
}

// Resolved reports whether every fragment resolved.
func (s Selection) Resolved() bool {
	return s.Failed < 0 && s.Target != 0
}

// ResolveSelection folds ResolveFragment over frags starting at id. A
// leading "$root" resolves up to the following two identifiers directly in
// the namespace of the root file when that file is bound.
func (nav *Navigator) ResolveSelection(id NodeID, frags []*selector.Fragment) Selection {
	sel := Selection{Failed: -1}
	cur := id
	start := 0
	if len(frags) > 0 && frags[0].Kind == selector.FragmentRoot {
		if n, consumed, ok := nav.rootShortPath(frags, &sel); ok {
			cur = n
			start = consumed
		}
	}
	for i := start; i < len(frags); i++ {
		next, match := nav.ResolveFragment(cur, frags[i])
		if !match.Found() {
			sel.Failed = i
			return sel
		}
		if match == names.MatchCaseMismatch {
			sel.Mismatches = append(sel.Mismatches, CaseMismatch{Fragment: i, Correct: nav.spelling(frags[i], next)})
		}
		sel.Chain = append(sel.Chain, next)
		cur = next
	}
	sel.Target = cur
	return sel
}

// rootShortPath resolves "$root" and up to two identifiers that follow it
// through the index, bypassing node construction of the root file.
func (nav *Navigator) rootShortPath(frags []*selector.Fragment, sel *Selection) (NodeID, int, bool) {
	idx := nav.b.Index()
	file, _, match := idx.File(nav.rootFile)
	if !match.Found() || !file.Bound() {
		return 0, 0, false
	}
	d := file
	consumed := 1
	var mismatches []CaseMismatch
	for consumed < len(frags) && consumed < rootShortPath {
		f := frags[consumed]
		if f.Kind != selector.FragmentIdentifier || f.IsEmpty() {
			break
		}
		child, key, m := d.Child(f.Name.Name)
		if !m.Found() || !child.Bound() {
			break
		}
		if m == names.MatchCaseMismatch {
			mismatches = append(mismatches, CaseMismatch{Fragment: consumed, Correct: key})
		}
		d = child
		consumed++
	}
	id, ok := nav.b.NodeForDesc(d)
	if !ok {
		return 0, 0, false
	}
	// the chain mirrors one node per consumed fragment
	chain := make([]NodeID, consumed)
	for i := consumed - 1; i >= 0; i-- {
		n, _ := nav.b.Node(id)
		chain[i] = id
		if i > 0 {
			id = n.Parent
		}
	}
	sel.Chain = append(sel.Chain, chain...)
	sel.Mismatches = append(sel.Mismatches, mismatches...)
	return chain[consumed-1], consumed, true
}

// ResolveFragment resolves one fragment relative to id.
func (nav *Navigator) ResolveFragment(id NodeID, f *selector.Fragment) (NodeID, names.Match) {
	n, ok := nav.b.Node(id)
	if !ok || f == nil {
		return 0, names.MatchNone
	}
	switch f.Kind {
	case selector.FragmentIdentifier:
		return nav.b.Child(id, f.Name.Name)
	case selector.FragmentThis:
		return id, names.MatchExact
	case selector.FragmentParent:
		return found(n.Parent)
	case selector.FragmentRoot:
		return found(nav.fileNode(id))
	case selector.FragmentLayer:
		return found(nav.layer(id))
	case selector.FragmentSibling:
		offset := 1
		if f.Sibling != nil {
			offset = f.Sibling.Offset
		}
		return found(nav.sibling(id, offset))
	case selector.FragmentAncestor:
		if f.Ancestor == nil {
			return 0, names.MatchNone
		}
		return found(nav.ancestor(id, f.Ancestor))
	case selector.FragmentCustom:
		d, _, match := nav.b.Index().Handle(f.Name.Name)
		if !match.Found() {
			return 0, names.MatchNone
		}
		target, ok := nav.b.NodeForDesc(d)
		if !ok {
			return 0, names.MatchNone
		}
		return target, match
	default:
		return 0, names.MatchNone
	}
}

// spelling returns the declared name fragment f matched: the handle name
// for custom handles, the node name otherwise.
func (nav *Navigator) spelling(f *selector.Fragment, id NodeID) string {
	if f.Kind == selector.FragmentCustom {
		if _, key, match := nav.b.Index().Handle(f.Name.Name); match.Found() {
			return key
		}
	}
	n, _ := nav.b.Node(id)
	return n.Name
}

func found(id NodeID) (NodeID, names.Match) {
	if id == 0 {
		return 0, names.MatchNone
	}
	return id, names.MatchExact
}

func (nav *Navigator) fileNode(id NodeID) NodeID {
	for n, ok := nav.b.Node(id); ok; n, ok = nav.b.Node(n.Parent) {
		if n.Kind == desc.KindFile {
			return n.ID
		}
	}
	return 0
}

// layer returns the top-level frame containing id, which may be id itself.
func (nav *Navigator) layer(id NodeID) NodeID {
	for n, ok := nav.b.Node(id); ok; n, ok = nav.b.Node(n.Parent) {
		parent, ok := nav.b.Node(n.Parent)
		if !ok {
			return 0
		}
		if parent.Kind == desc.KindFile {
			return n.ID
		}
	}
	return 0
}

func (nav *Navigator) sibling(id NodeID, offset int) NodeID {
	n, ok := nav.b.Node(id)
	if !ok || n.Parent == 0 {
		return 0
	}
	siblings := nav.b.Children(n.Parent)
	for i, s := range siblings {
		if s != id {
			continue
		}
		j := i + offset
		if j < 0 || j >= len(siblings) {
			return 0
		}
		return siblings[j]
	}
	return 0
}

func (nav *Navigator) ancestor(id NodeID, p *selector.AncestorParam) NodeID {
	n, ok := nav.b.Node(id)
	if !ok {
		return 0
	}
	want := p.Value.Name
	var wantClass *schema.FrameClass
	if p.Kind == selector.AncestorOfType {
		reg := nav.b.Registry()
		if reg == nil {
			return 0
		}
		ft, _, match := reg.FrameType(want)
		if !match.Found() {
			return 0
		}
		wantClass = ft.Class
	}
	for a, ok := nav.b.Node(n.Parent); ok; a, ok = nav.b.Node(a.Parent) {
		switch p.Kind {
		case selector.AncestorName:
			if strings.EqualFold(a.Name, want) {
				return a.ID
			}
		case selector.AncestorType:
			if a.Frame != nil && strings.EqualFold(a.Frame.TypeName, want) {
				return a.ID
			}
		case selector.AncestorOfType:
			if cls := a.Frame.Class(); cls != nil && cls.IsA(wantClass) {
				return a.ID
			}
		}
	}
	return 0
}

// ChildrenOfKind returns the children of id whose descriptor kind is kind.
func (nav *Navigator) ChildrenOfKind(id NodeID, kind desc.Kind) []NodeID {
	var out []NodeID
	for _, child := range nav.b.Children(id) {
		if n, ok := nav.b.Node(child); ok && n.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// ContextFrame returns the nearest strict ancestor of id that is a frame.
func (nav *Navigator) ContextFrame(id NodeID) (NodeID, bool) {
	n, ok := nav.b.Node(id)
	if !ok {
		return 0, false
	}
	for a, ok := nav.b.Node(n.Parent); ok; a, ok = nav.b.Node(a.Parent) {
		if a.Kind == desc.KindFrame {
			return a.ID, true
		}
	}
	return 0, false
}

// ResolvePath parses expr and resolves it from id, returning the parsed
// selector alongside the selection.
func (nav *Navigator) ResolvePath(id NodeID, expr string) (Selection, *selector.PathSelector) {
	path, _ := selector.ParsePath(expr)
	return nav.ResolveSelection(id, path.Fragments), path
}

// ResolveHookup resolves hookup h of frame id, honoring an author declared
// alias for its path.
func (nav *Navigator) ResolveHookup(id NodeID, h *schema.Hookup) (NodeID, bool) {
	n, ok := nav.b.Node(id)
	if !ok {
		return 0, false
	}
	expr := h.Path
	if n.Frame != nil {
		if alias, _, match := n.Frame.Aliases.Get(h.Path); match.Found() {
			expr = alias
		}
	}
	sel, _ := nav.ResolvePath(id, expr)
	return sel.Target, sel.Resolved()
}
