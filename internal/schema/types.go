package schema

import (
	"regexp"
	"slices"
	"strings"

	"github.com/jacoelho/uilayout/internal/names"
)

// Builtin is the primitive kind a simple type validates against.
type Builtin uint8

const (
	BuiltinString Builtin = iota
	BuiltinBoolean
	BuiltinInteger
	BuiltinUnsigned
	BuiltinReal
	BuiltinEnum
	BuiltinFlags
	BuiltinUnion
	BuiltinDescName
	BuiltinDescTemplateName
	BuiltinDescInternal
	BuiltinFrameReference
	BuiltinFrameType
	BuiltinConstantName
	BuiltinStateName
)

var builtinNames = map[string]Builtin{
	"string":           BuiltinString,
	"boolean":          BuiltinBoolean,
	"integer":          BuiltinInteger,
	"unsigned":         BuiltinUnsigned,
	"real":             BuiltinReal,
	"enum":             BuiltinEnum,
	"flags":            BuiltinFlags,
	"union":            BuiltinUnion,
	"descName":         BuiltinDescName,
	"descTemplateName": BuiltinDescTemplateName,
	"descInternal":     BuiltinDescInternal,
	"frameReference":   BuiltinFrameReference,
	"frameType":        BuiltinFrameType,
	"constantName":     BuiltinConstantName,
	"stateName":        BuiltinStateName,
}

// SimpleType constrains an attribute value.
type SimpleType struct {
	Pattern *regexp.Regexp
	enumSet map[string]string
	Name    string
	// Class is the frame class a frame reference must resolve to; empty
	// accepts any frame.
	Class string
	Enum  []string
	Union []*SimpleType
	Kind  Builtin
}

// IsDescPath reports whether values of this type are desc paths resolved
// through the namespace index or the hierarchy.
func (st *SimpleType) IsDescPath() bool {
	if st == nil {
		return false
	}
	switch st.Kind {
	case BuiltinDescTemplateName, BuiltinDescInternal, BuiltinFrameReference:
		return true
	default:
		return false
	}
}

// EnumValue returns the canonical spelling of an enumeration value,
// compared case-insensitively.
func (st *SimpleType) EnumValue(value string) (string, bool) {
	if st == nil {
		return "", false
	}
	v, ok := st.enumSet[strings.ToLower(value)]
	return v, ok
}

func (st *SimpleType) flatten() {
	seen := make(map[string]string, len(st.Enum))
	var values []string
	var walk func(*SimpleType, map[*SimpleType]bool)
	walk = func(t *SimpleType, visited map[*SimpleType]bool) {
		if visited[t] {
			return
		}
		visited[t] = true
		for _, v := range t.Enum {
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = v
			values = append(values, v)
		}
		for _, m := range t.Union {
			walk(m, visited)
		}
	}
	walk(st, make(map[*SimpleType]bool))
	st.Enum = values
	st.enumSet = seen
}

// Attribute is a schema attribute slot of a complex type.
type Attribute struct {
	Type     *SimpleType
	Name     string
	Default  string
	Required bool
	Bindable bool
}

// IndeterminateAttr describes a key/value attribute pattern: any attribute
// whose name validates against Key carries a value validated by Value.
type IndeterminateAttr struct {
	Key      *SimpleType
	Value    *SimpleType
	Required bool
}

// ElementKind classifies element definitions by their role in the layout.
type ElementKind uint8

const (
	ElementGeneric ElementKind = iota
	ElementDesc
	ElementFrame
	ElementAnimation
	ElementStateGroup
	ElementConstant
	ElementHandle
	ElementHookupAlias
	ElementAnchor
	ElementProperty
	ElementEvent
	ElementController
	ElementKey
	ElementState
	ElementDefaultState
	ElementWhen
	ElementAction
)

var elementKindNames = map[string]ElementKind{
	"generic":      ElementGeneric,
	"desc":         ElementDesc,
	"frame":        ElementFrame,
	"animation":    ElementAnimation,
	"stategroup":   ElementStateGroup,
	"constant":     ElementConstant,
	"handle":       ElementHandle,
	"hookupalias":  ElementHookupAlias,
	"anchor":       ElementAnchor,
	"property":     ElementProperty,
	"event":        ElementEvent,
	"controller":   ElementController,
	"key":          ElementKey,
	"state":        ElementState,
	"defaultstate": ElementDefaultState,
	"when":         ElementWhen,
	"action":       ElementAction,
}

// Alternation selects an element's effective type from one of its
// attribute values.
type Alternation struct {
	types      *names.Map[*ComplexType]
	Attribute  string
	FrameTypes bool
}

// ElementDef is the definition of an element in a given parent context.
type ElementDef struct {
	Type        *ComplexType
	Alternation *Alternation
	Name        string
	Kind        ElementKind
	Bindable    bool
}

// ComplexType describes attributes and child elements of an element.
type ComplexType struct {
	Base            *ComplexType
	attrs           *names.Map[*Attribute]
	elems           *names.Map[*ElementDef]
	Name            string
	Indeterminate   []*IndeterminateAttr
	AllowExtraAttrs bool
}

func newComplexType(name string) *ComplexType {
	return &ComplexType{
		Name:  name,
		attrs: names.New[*Attribute](),
		elems: names.New[*ElementDef](),
	}
}

// Chain returns the type followed by its bases, nearest first.
func (ct *ComplexType) Chain() []*ComplexType {
	var chain []*ComplexType
	for t := ct; t != nil; t = t.Base {
		if slices.Contains(chain, t) {
			break
		}
		chain = append(chain, t)
	}
	return chain
}

// IsA reports whether ct is other or derives from it.
func (ct *ComplexType) IsA(other *ComplexType) bool {
	return other != nil && slices.Contains(ct.Chain(), other)
}

// Attribute looks an attribute up through the inheritance chain.
func (ct *ComplexType) Attribute(name string) (*Attribute, names.Match) {
	var fallback *Attribute
	for _, t := range ct.Chain() {
		attr, _, match := t.attrs.Get(name)
		switch match {
		case names.MatchExact:
			return attr, match
		case names.MatchCaseMismatch:
			if fallback == nil {
				fallback = attr
			}
		}
	}
	if fallback != nil {
		return fallback, names.MatchCaseMismatch
	}
	return nil, names.MatchNone
}

// Attributes returns every attribute of the chain, base attributes first.
func (ct *ComplexType) Attributes() []*Attribute {
	chain := ct.Chain()
	var out []*Attribute
	for i := len(chain) - 1; i >= 0; i-- {
		out = slices.AppendSeq(out, chain[i].attrs.Values())
	}
	return out
}

// Element looks a child element definition up through the inheritance chain.
func (ct *ComplexType) Element(name string) (*ElementDef, names.Match) {
	var fallback *ElementDef
	for _, t := range ct.Chain() {
		def, _, match := t.elems.Get(name)
		switch match {
		case names.MatchExact:
			return def, match
		case names.MatchCaseMismatch:
			if fallback == nil {
				fallback = def
			}
		}
	}
	if fallback != nil {
		return fallback, names.MatchCaseMismatch
	}
	return nil, names.MatchNone
}

// IndeterminateAttrs returns the key/value attribute patterns of the chain.
func (ct *ComplexType) IndeterminateAttrs() []*IndeterminateAttr {
	var out []*IndeterminateAttr
	for _, t := range ct.Chain() {
		out = append(out, t.Indeterminate...)
	}
	return out
}

// AllowsExtraAttributes reports whether unknown attributes are accepted.
func (ct *ComplexType) AllowsExtraAttributes() bool {
	for _, t := range ct.Chain() {
		if t.AllowExtraAttrs {
			return true
		}
	}
	return false
}

// Hookup is a child path a frame class requires or permits.
type Hookup struct {
	Class    *FrameClass
	Path     string
	Required bool
}

// FrameClass is a native frame implementation class.
type FrameClass struct {
	Parent  *FrameClass
	Name    string
	Hookups []*Hookup
}

// IsA reports whether fc is other or one of its subclasses.
func (fc *FrameClass) IsA(other *FrameClass) bool {
	if other == nil {
		return false
	}
	seen := 0
	for c := fc; c != nil && seen < 64; c = c.Parent {
		if c == other {
			return true
		}
		seen++
	}
	return false
}

// AllHookups returns the hookups declared by the class and its parents.
// A hookup redeclared by a subclass replaces the inherited one.
func (fc *FrameClass) AllHookups() []*Hookup {
	var chain []*FrameClass
	for c := fc; c != nil && !slices.Contains(chain, c); c = c.Parent {
		chain = append(chain, c)
	}
	byPath := names.New[*Hookup]()
	for i := len(chain) - 1; i >= 0; i-- {
		for _, h := range chain[i].Hookups {
			if byPath.Has(h.Path) {
				byPath.Delete(h.Path)
			}
			byPath.Set(h.Path, h)
		}
	}
	return slices.Collect(byPath.Values())
}

// FrameType is a frame type usable in type="..." and its schema.
type FrameType struct {
	Class *FrameClass
	Type  *ComplexType
	Name  string
}
