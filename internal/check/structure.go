package check

import (
	"strings"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/desc"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// fileOverride checks that the file an override names is bound and
// declares the overridden element itself.
func (s *session) fileOverride(el *markup.Element, d *desc.Desc) {
	attr, _ := el.Attr("file")
	if attr.Value == "" {
		return
	}
	file, key, match := s.idx.File(attr.Value)
	if !match.Found() || !file.Bound() {
		s.errorf(errors.CodeFileDescMissing, attr.ValueStart, attr.ValueEnd,
			"file desc %q not found", attr.Value)
		return
	}
	if match == names.MatchCaseMismatch {
		s.warnf(errors.CodeCaseMismatch, attr.ValueStart, attr.ValueEnd,
			"file %q is declared as %q", attr.Value, key)
	}
	for _, decl := range d.Decls() {
		if decl.Element != el && strings.EqualFold(decl.Document.Name(), file.Name) {
			return
		}
	}
	start, end := el.NameStart(), el.NameEnd
	if name, ok := el.Attr("name"); ok {
		start, end = name.ValueStart, name.ValueEnd
	}
	path := d.Path()
	s.errorf(errors.CodeFileDeclMissing, start, end,
		"%q is not declared in file %q", strings.Join(path[1:], "/"), file.Name)
}

// frameHookups resolves every hookup of the frame's class through the
// merged node, so overrides and templates supply hookups too.
func (s *session) frameHookups(el *markup.Element, d *desc.Desc) {
	id, ok := s.nav.Builder().NodeForDesc(d)
	if !ok {
		return
	}
	n, _ := s.nav.Builder().Node(id)
	cls := n.Frame.Class()
	if cls == nil {
		return
	}
	for _, h := range cls.AllHookups() {
		target, ok := s.nav.ResolveHookup(id, h)
		if !ok {
			if h.Required {
				s.messagef(errors.CodeHookupMissing, el.NameStart(), el.NameEnd,
					"missing hookup %q of type %s in %s %q", h.Path, h.Class.Name, n.Frame.TypeName, n.Name)
			}
			continue
		}
		tn, _ := s.nav.Builder().Node(target)
		found := tn.Frame.Class()
		if found == nil || !found.IsA(h.Class) {
			s.warnf(errors.CodeHookupType, el.NameStart(), el.NameEnd,
				"incorrect hookup type for %q: expected %s, found %s", h.Path, h.Class.Name, className(found))
		}
	}
}

func className(cls *schema.FrameClass) string {
	if cls == nil {
		return "unknown class"
	}
	return cls.Name
}

// redeclared reports a descriptor declared twice under the same parent
// element. Overrides and slash names extending a nested declaration are
// distinct declarations.
func (s *session) redeclared(scope *names.Map[*markup.Element], el *markup.Element) {
	kind, ok := desc.KindOf(el.Kind())
	if !ok || kind == desc.KindFile {
		return
	}
	if file, ok := el.AttrValue("file"); ok && file != "" {
		return
	}
	name, ok := el.Attr("name")
	if !ok || name.Value == "" {
		return
	}
	if _, _, match := scope.Get(name.Value); match.Found() {
		s.errorf(errors.CodeChildRedeclared, name.ValueStart, name.ValueEnd,
			"child %q redeclared", name.Value)
		return
	}
	scope.Set(name.Value, el)
}

// defaultState checks that a DefaultState names a state of its group.
func (s *session) defaultState(el *markup.Element) {
	attr, ok := el.Attr("val")
	if !ok || attr.Value == "" || el.Parent == nil {
		return
	}
	d, ok := s.idx.DescOf(el.Parent)
	if !ok {
		return
	}
	id, ok := s.nav.Builder().NodeForDesc(d)
	if !ok {
		return
	}
	n, _ := s.nav.Builder().Node(id)
	if n.StateGroup == nil {
		return
	}
	_, key, match := n.StateGroup.States.Get(attr.Value)
	switch match {
	case names.MatchNone:
		s.errorf(errors.CodeStateUndeclared, attr.ValueStart, attr.ValueEnd,
			"state %q is not declared in state group %q", attr.Value, n.Name)
	case names.MatchCaseMismatch:
		s.warnf(errors.CodeCaseMismatch, attr.ValueStart, attr.ValueEnd,
			"state %q is declared as %q", attr.Value, key)
	}
}
