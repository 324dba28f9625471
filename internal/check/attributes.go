package check

import (
	"strings"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// racialSuffixes are appended to "##" constant names by the game depending
// on the player's race.
var racialSuffixes = []string{"Terr", "Prot", "Zerg"}

// attributes classifies and validates every attribute of el, then reports
// required indeterminate attributes that were not supplied.
func (s *session) attributes(el *markup.Element) {
	if el.Type == nil {
		return
	}
	indeterminate := el.Type.IndeterminateAttrs()
	matched := make([]bool, len(indeterminate))
	for i := range el.Attrs {
		attr := &el.Attrs[i]
		st, ok := s.attributeType(el, attr, indeterminate, matched)
		if !ok {
			continue
		}
		s.value(el, attr, st)
	}
	for i, ind := range indeterminate {
		if ind.Required && !matched[i] {
			s.errorf(errors.CodeSpecialAttributeMissing, el.NameStart(), el.NameEnd,
				"missing special attribute: %s requires an attribute named by a %s", el.Name, ind.Key.Name)
		}
	}
}

// attributeType returns the simple type of attr, from a declared slot or
// a matching indeterminate pattern.
func (s *session) attributeType(el *markup.Element, attr *markup.Attr, indeterminate []*schema.IndeterminateAttr, matched []bool) (*schema.SimpleType, bool) {
	a, match := el.Type.Attribute(attr.Name)
	if match.Found() {
		if match == names.MatchCaseMismatch {
			s.warnf(errors.CodeCaseMismatch, attr.NameStart, attr.NameEnd,
				"attribute %q should be spelled %q", attr.Name, a.Name)
		}
		return a.Type, true
	}
	for i, ind := range indeterminate {
		if ind.Key.Validate(attr.Name) == nil {
			matched[i] = true
			return ind.Value, true
		}
	}
	if !el.Type.AllowsExtraAttributes() {
		s.messagef(errors.CodeAttributeNoEffect, attr.NameStart, attr.NameEnd,
			"attribute %q has no effect on %s", attr.Name, el.Name)
	}
	return nil, false
}

// value dispatches on the form of the raw attribute text.
func (s *session) value(el *markup.Element, attr *markup.Attr, st *schema.SimpleType) {
	v := attr.Value
	switch {
	case strings.HasPrefix(v, "{"):
		s.propertyBind(el, attr)
	case strings.HasPrefix(v, "#"):
		s.constant(attr, st)
	case strings.HasPrefix(v, "@"):
		if strings.TrimLeft(v, "@") == "" {
			s.errorf(errors.CodeValueInvalid, attr.ValueStart, attr.ValueEnd, "asset reference without a name")
		}
	default:
		s.generic(el, attr, st)
	}
}

// constant resolves "#name", "##name" (racial) and "###name" (factional)
// constant references.
func (s *session) constant(attr *markup.Attr, st *schema.SimpleType) {
	hashes := len(attr.Value) - len(strings.TrimLeft(attr.Value, "#"))
	name := attr.Value[hashes:]
	start := attr.Offset(hashes)
	if name == "" {
		s.errorf(errors.CodeConstantUndeclared, attr.ValueStart, attr.ValueEnd, "constant reference without a name")
		return
	}
	switch {
	case hashes == 2:
		if !s.racialConstant(name) {
			s.errorf(errors.CodeConstantUndeclared, start, attr.ValueEnd, "racial constant %q is not declared", name)
		}
		return
	case hashes >= 3:
		if !s.factionalConstant(name) {
			s.errorf(errors.CodeConstantUndeclared, start, attr.ValueEnd, "factional constant %q is not declared", name)
		}
		return
	}

	_, key, match := s.idx.Constant(name)
	switch match {
	case names.MatchNone:
		s.errorf(errors.CodeConstantUndeclared, start, attr.ValueEnd, "constant %q is not declared", name)
		return
	case names.MatchCaseMismatch:
		s.warnf(errors.CodeCaseMismatch, start, attr.ValueEnd, "constant %q is declared as %q", name, key)
	}
	chain, err := s.idx.ResolveConstantDeep(name)
	if err != nil {
		s.errorf(errors.CodeConstantUndeclared, start, attr.ValueEnd,
			"constant %q cannot be resolved: %v", name, err)
		return
	}
	if !chain.Resolved {
		last := chain.Names[len(chain.Names)-1]
		s.errorf(errors.CodeConstantUndeclared, start, attr.ValueEnd,
			"constant %q refers to an undeclared constant through %q", name, last)
		return
	}
	if st == nil || st.IsDescPath() {
		return
	}
	if err := st.Validate(chain.Value); err != nil {
		s.errorf(errors.CodeValueInvalid, attr.ValueStart, attr.ValueEnd, "constant %q: %v", name, err)
	}
}

func (s *session) racialConstant(name string) bool {
	if _, _, match := s.idx.Constant(name); match.Found() {
		return true
	}
	for _, suffix := range racialSuffixes {
		if _, _, match := s.idx.Constant(name + suffix); match.Found() {
			return true
		}
	}
	return false
}

func (s *session) factionalConstant(name string) bool {
	prefix := strings.ToLower(name)
	for _, c := range s.idx.Constants() {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			return true
		}
	}
	return false
}

// generic validates a plain value against its simple type.
func (s *session) generic(el *markup.Element, attr *markup.Attr, st *schema.SimpleType) {
	if st == nil {
		return
	}
	if st.IsDescPath() {
		s.descPath(el, attr, st)
		return
	}
	switch st.Kind {
	case schema.BuiltinFrameType:
		_, key, match := s.reg.FrameType(attr.Value)
		switch match {
		case names.MatchNone:
			s.errorf(errors.CodeValueInvalid, attr.ValueStart, attr.ValueEnd, "unknown frame type %q", attr.Value)
		case names.MatchCaseMismatch:
			s.warnf(errors.CodeCaseMismatch, attr.ValueStart, attr.ValueEnd, "frame type %q is declared as %q", attr.Value, key)
		}
		return
	case schema.BuiltinEnum:
		if canonical, ok := st.EnumValue(attr.Value); ok && canonical != attr.Value {
			s.warnf(errors.CodeCaseMismatch, attr.ValueStart, attr.ValueEnd, "%q should be spelled %q", attr.Value, canonical)
			return
		}
	}
	if err := st.Validate(attr.Value); err != nil {
		s.errorf(errors.CodeValueInvalid, attr.ValueStart, attr.ValueEnd, "%v", err)
	}
}
