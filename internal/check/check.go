// Package check walks bound layout documents and reports diagnostics.
package check

import (
	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/hierarchy"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Checker validates documents against the schema and the namespace they
// are bound into. It shares the index and node cache of its navigator and
// must be serialized with index mutations.
type Checker struct {
	reg *schema.Registry
	idx *desc.Index
	nav *hierarchy.Navigator
}

// New returns a checker over nav. The registry and index are taken from
// the navigator's builder.
func New(nav *hierarchy.Navigator) *Checker {
	b := nav.Builder()
	return &Checker{reg: b.Registry(), idx: b.Index(), nav: nav}
}

// CheckFile reports every diagnostic of doc. doc must be bound into the
// checker's index for namespace checks to apply.
func (c *Checker) CheckFile(doc *markup.Document) errors.List {
	s := &session{
		Checker: c,
		doc:     doc,
		hookups: make(map[*desc.Desc]bool),
	}
	if doc == nil || doc.Root == nil {
		s.errorf(errors.CodeRootMissing, 0, 0, "Root element missing")
		return s.diags
	}
	root := doc.Root
	if root.Def == nil {
		s.errorf(errors.CodeElementUnknown, root.NameStart(), root.NameEnd, "unknown root element %q", root.Name)
		return s.diags
	}
	s.element(root)
	return s.diags
}

// session holds the state of one CheckFile call.
type session struct {
	*Checker
	doc     *markup.Document
	hookups map[*desc.Desc]bool
	diags   errors.List
}

func (s *session) add(cat errors.Category, code errors.Code, start, end int, format string, args ...any) {
	s.diags = append(s.diags, errors.Newf(cat, code, start, end, format, args...))
}

func (s *session) errorf(code errors.Code, start, end int, format string, args ...any) {
	s.add(errors.CategoryError, code, start, end, format, args...)
}

func (s *session) warnf(code errors.Code, start, end int, format string, args ...any) {
	s.add(errors.CategoryWarning, code, start, end, format, args...)
}

func (s *session) messagef(code errors.Code, start, end int, format string, args ...any) {
	s.add(errors.CategoryMessage, code, start, end, format, args...)
}

// element checks el and its subtree in document order.
func (s *session) element(el *markup.Element) {
	s.requiredAttributes(el)
	s.declaration(el)
	s.attributes(el)
	if el.Kind() == schema.ElementDefaultState {
		s.defaultState(el)
	}

	scope := names.New[*markup.Element]()
	for _, child := range el.Children {
		if child.Def == nil {
			s.errorf(errors.CodeElementUnknown, child.NameStart(), child.NameEnd,
				"unknown element %q in %s", child.Name, el.Name)
			continue
		}
		if child.Def.Name != child.Name {
			s.warnf(errors.CodeCaseMismatch, child.NameStart(), child.NameEnd,
				"element %q should be spelled %q", child.Name, child.Def.Name)
		}
		s.redeclared(scope, child)
		s.element(child)
	}
}

func (s *session) requiredAttributes(el *markup.Element) {
	if el.Type == nil {
		return
	}
	for _, a := range el.Type.Attributes() {
		if !a.Required {
			continue
		}
		if _, ok := el.Attr(a.Name); !ok {
			s.errorf(errors.CodeAttributeRequired, el.NameStart(), el.NameEnd,
				"%s requires attribute %q", el.Name, a.Name)
		}
	}
}

// declaration runs the namespace checks of an element declaring a
// descriptor.
func (s *session) declaration(el *markup.Element) {
	kind, ok := desc.KindOf(el.Kind())
	if !ok || kind == desc.KindFile {
		return
	}
	d, ok := s.idx.DescOf(el)
	if !ok {
		return
	}
	if _, ok := el.Attr("file"); ok {
		s.fileOverride(el, d)
	}
	if kind == desc.KindFrame && !s.hookups[d] {
		s.hookups[d] = true
		s.frameHookups(el, d)
	}
}

// contextNode returns the node expressions written on el are resolved
// against: the nearest enclosing frame.
func (s *session) contextNode(el *markup.Element) (hierarchy.NodeID, bool) {
	for e := el; e != nil; e = e.Parent {
		d, ok := s.idx.DescOf(e)
		if !ok || d.Kind == desc.KindFile {
			continue
		}
		id, ok := s.nav.Builder().NodeForDesc(d)
		if !ok {
			return 0, false
		}
		if d.Kind == desc.KindFrame {
			return id, true
		}
		return s.nav.ContextFrame(id)
	}
	return 0, false
}
