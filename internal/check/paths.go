package check

import (
	"strings"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/hierarchy"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
	"github.com/jacoelho/uilayout/internal/selector"
)

// descPath resolves a template name, frame reference or internal desc path
// and reports the exact fragment that failed.
func (s *session) descPath(el *markup.Element, attr *markup.Attr, st *schema.SimpleType) {
	if attr.Value == "" {
		s.errorf(errors.CodeValueInvalid, attr.ValueStart, attr.ValueEnd, "%s cannot be empty", st.Name)
		return
	}
	if st.Kind == schema.BuiltinDescTemplateName {
		s.template(attr)
		return
	}
	path, diags := selector.ParsePath(attr.Value)
	if len(diags) > 0 {
		s.valueDiagnostics(attr, 0, diags)
		return
	}
	ctx, ok := s.contextNode(el)
	if !ok {
		return
	}
	sel := s.nav.ResolveSelection(ctx, path.Fragments)
	if !s.selection(attr, path, sel) {
		return
	}
	if st.Kind != schema.BuiltinFrameReference || st.Class == "" {
		return
	}
	want, ok := s.reg.FrameClass(st.Class)
	if !ok {
		return
	}
	n, _ := s.nav.Builder().Node(sel.Target)
	if found := n.Frame.Class(); found == nil || !found.IsA(want) {
		s.errorf(errors.CodeDescClassMismatch, attr.ValueStart, attr.ValueEnd,
			"%q must reference a frame of class %s, found %s", attr.Value, want.Name, className(found))
	}
}

// selection reports the unresolved fragment and case mismatches of sel. It
// returns whether sel resolved.
func (s *session) selection(attr *markup.Attr, path *selector.PathSelector, sel hierarchy.Selection) bool {
	for _, m := range sel.Mismatches {
		f := path.Fragments[m.Fragment]
		s.warnf(errors.CodeCaseMismatch, attr.Offset(f.Start), attr.Offset(f.End),
			"%q is declared as %q", f.Name.Name, m.Correct)
	}
	if sel.Resolved() {
		return true
	}
	f := path.Fragments[sel.Failed]
	s.errorf(errors.CodeDescUnresolved, attr.Offset(f.Start), attr.Offset(f.End),
		"cannot resolve %q in %q", f.String(), attr.Value)
	return false
}

// template resolves a global template path in the namespace. A leading
// slash is accepted.
func (s *session) template(attr *markup.Attr) {
	text, at := attr.Value, 0
	if strings.HasPrefix(text, "/") {
		text, at = text[1:], 1
	}
	path, diags := selector.ParsePath(text)
	if len(diags) > 0 {
		s.valueDiagnostics(attr, at, diags)
		return
	}
	segments := make([]string, 0, len(path.Fragments))
	for _, f := range path.Fragments {
		if f.IsHandle() {
			s.errorf(errors.CodeDescUnresolved, attr.Offset(at+f.Start), attr.Offset(at+f.End),
				"template paths cannot use %s", f.String())
			return
		}
		segments = append(segments, f.Name.Name)
	}
	res := s.idx.Resolve(nil, segments)
	for _, m := range res.Mismatches {
		f := path.Fragments[m.Index]
		s.warnf(errors.CodeCaseMismatch, attr.Offset(at+f.Start), attr.Offset(at+f.End),
			"%q is declared as %q", f.Name.Name, m.Correct)
	}
	if !res.Resolved() {
		f := path.Fragments[res.Failed]
		s.errorf(errors.CodeDescUnresolved, attr.Offset(at+f.Start), attr.Offset(at+f.End),
			"template %q not found: %q does not exist", attr.Value, f.Name.Name)
		return
	}
	if !res.Desc.Bound() {
		s.errorf(errors.CodeDescUnresolved, attr.ValueStart, attr.ValueEnd,
			"template %q is never declared", attr.Value)
	}
}

// propertyBind checks "{path@Property}" against the bind policy of the
// schema, then resolves the target frame and its property.
func (s *session) propertyBind(el *markup.Element, attr *markup.Attr) {
	if !s.reg.IsPropertyBindAllowed(el.Def, el.Type, attr.Name) {
		s.errorf(errors.CodePropertyBindNotAllowed, attr.ValueStart, attr.ValueEnd,
			"property binds are not allowed in %s/@%s", el.Name, attr.Name)
		return
	}
	bind, diags := selector.ParsePropertyBind(attr.Value)
	if len(diags) > 0 {
		s.valueDiagnostics(attr, 0, diags)
		return
	}
	ctx, ok := s.contextNode(el)
	if !ok {
		return
	}
	sel := s.nav.ResolveSelection(ctx, bind.Path.Fragments)
	if !s.selection(attr, bind.Path, sel) {
		return
	}
	n, _ := s.nav.Builder().Node(sel.Target)
	if n.Frame == nil {
		s.errorf(errors.CodePropertyUnresolved, attr.ValueStart, attr.ValueEnd,
			"%q does not reference a frame", bind.Path.String())
		return
	}
	prop := bind.Property
	def, match := s.reg.Property(n.Frame.Type, prop.Name)
	switch match {
	case names.MatchNone:
		s.errorf(errors.CodePropertyUnresolved, attr.Offset(prop.Start), attr.Offset(prop.End),
			"%s %q has no property %q", n.Frame.TypeName, n.Name, prop.Name)
	case names.MatchCaseMismatch:
		s.warnf(errors.CodeCaseMismatch, attr.Offset(prop.Start), attr.Offset(prop.End),
			"%q is declared as %q", prop.Name, def.Name)
	}
}

// valueDiagnostics reports selector diagnostics whose offsets are relative
// to byte at of attr's value.
func (s *session) valueDiagnostics(attr *markup.Attr, at int, diags errors.List) {
	for _, d := range diags {
		d.Start, d.End = attr.Offset(at+d.Start), attr.Offset(at+d.End)
		s.diags = append(s.diags, d)
	}
}
