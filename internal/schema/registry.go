package schema

import (
	"github.com/jacoelho/uilayout/internal/names"
)

// Registry is the immutable, resolved schema model. All lookups ignore
// letter case.
type Registry struct {
	simple     *names.Map[*SimpleType]
	complex    *names.Map[*ComplexType]
	roots      *names.Map[*ElementDef]
	classes    *names.Map[*FrameClass]
	frameTypes *names.Map[*FrameType]
}

func newRegistry() *Registry {
	return &Registry{
		simple:     names.New[*SimpleType](),
		complex:    names.New[*ComplexType](),
		roots:      names.New[*ElementDef](),
		classes:    names.New[*FrameClass](),
		frameTypes: names.New[*FrameType](),
	}
}

func lookup[V any](m *names.Map[V], name string) (V, bool) {
	v, _, match := m.Get(name)
	return v, match.Found()
}

// Root returns the definition of a document root element.
func (r *Registry) Root(name string) (*ElementDef, bool) {
	return lookup(r.roots, name)
}

// SimpleType returns a simple type by name.
func (r *Registry) SimpleType(name string) (*SimpleType, bool) {
	return lookup(r.simple, name)
}

// ComplexType returns a complex type by name.
func (r *Registry) ComplexType(name string) (*ComplexType, bool) {
	return lookup(r.complex, name)
}

// FrameClass returns a frame class by name.
func (r *Registry) FrameClass(name string) (*FrameClass, bool) {
	return lookup(r.classes, name)
}

// FrameType returns a frame type by name. match reports whether the
// spelling differs from the catalogue.
func (r *Registry) FrameType(name string) (*FrameType, string, names.Match) {
	return r.frameTypes.Get(name)
}

// FrameTypes returns the frame type names in catalogue order.
func (r *Registry) FrameTypes() []string {
	return r.frameTypes.Keys()
}

// FrameTypeOf returns the frame type whose complex type is ct, following
// the inheritance chain until one is found.
func (r *Registry) FrameTypeOf(ct *ComplexType) (*FrameType, bool) {
	for _, t := range ct.Chain() {
		for ft := range r.frameTypes.Values() {
			if ft.Type == t {
				return ft, true
			}
		}
	}
	return nil, false
}

// ResolveElement returns the definition and effective type of a child
// element named name under parent. attr provides the element's attribute
// values for alternation.
func (r *Registry) ResolveElement(parent *ComplexType, name string, attr func(string) (string, bool)) (*ElementDef, *ComplexType, bool) {
	if parent == nil {
		return nil, nil, false
	}
	def, match := parent.Element(name)
	if !match.Found() {
		return nil, nil, false
	}
	return def, r.EffectiveType(def, attr), true
}

// EffectiveType applies the definition's alternation, falling back to the
// declared type when the selecting attribute is absent or unknown.
func (r *Registry) EffectiveType(def *ElementDef, attr func(string) (string, bool)) *ComplexType {
	if def == nil {
		return nil
	}
	alt := def.Alternation
	if alt == nil || attr == nil {
		return def.Type
	}
	value, ok := attr(alt.Attribute)
	if !ok {
		return def.Type
	}
	if alt.FrameTypes {
		if ft, _, match := r.FrameType(value); match.Found() && ft.Type != nil {
			return ft.Type
		}
		return def.Type
	}
	if ct, _, match := alt.types.Get(value); match.Found() {
		return ct
	}
	return def.Type
}

// IsPropertyBindAllowed reports whether attribute attr of element def with
// type ct may hold a "{...}" property bind.
func (r *Registry) IsPropertyBindAllowed(def *ElementDef, ct *ComplexType, attr string) bool {
	if def != nil && def.Bindable {
		return true
	}
	if ct == nil {
		return false
	}
	a, match := ct.Attribute(attr)
	return match.Found() && a.Bindable
}

// Property returns the property element named name exposed by frames of
// type ft, with MatchCaseMismatch when name differs from it in case only.
func (r *Registry) Property(ft *FrameType, name string) (*ElementDef, names.Match) {
	if ft == nil || ft.Type == nil {
		return nil, names.MatchNone
	}
	def, match := ft.Type.Element(name)
	if !match.Found() || def.Kind != ElementProperty {
		return nil, names.MatchNone
	}
	return def, match
}
