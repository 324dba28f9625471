package selector

import (
	"strconv"
	"strings"
)

// Span is a half-open byte range in the expression text.
type Span struct {
	Start int
	End   int
}

// Ident is a name token with its location.
type Ident struct {
	Name string
	Span
}

// FragmentKind discriminates path fragments.
type FragmentKind uint8

const (
	FragmentIdentifier FragmentKind = iota
	FragmentThis
	FragmentParent
	FragmentRoot
	FragmentLayer
	FragmentSibling
	FragmentAncestor
	FragmentCustom
)

var fragmentKindNames = [...]string{
	FragmentIdentifier: "Identifier",
	FragmentThis:       "This",
	FragmentParent:     "Parent",
	FragmentRoot:       "Root",
	FragmentLayer:      "Layer",
	FragmentSibling:    "Sibling",
	FragmentAncestor:   "Ancestor",
	FragmentCustom:     "Custom",
}

// String returns the kind name.
func (k FragmentKind) String() string {
	if int(k) < len(fragmentKindNames) {
		return fragmentKindNames[k]
	}
	return "Unknown"
}

// builtinHandles maps "$name" handles to their kinds. Any other name is a
// custom handle declared by the layout author.
var builtinHandles = map[string]FragmentKind{
	"this":     FragmentThis,
	"parent":   FragmentParent,
	"root":     FragmentRoot,
	"layer":    FragmentLayer,
	"sibling":  FragmentSibling,
	"ancestor": FragmentAncestor,
}

// AncestorKey is the parameter kind of an $ancestor fragment.
type AncestorKey uint8

const (
	AncestorInvalid AncestorKey = iota
	AncestorName
	AncestorType
	AncestorOfType
)

var ancestorKeys = map[string]AncestorKey{
	"name":   AncestorName,
	"type":   AncestorType,
	"oftype": AncestorOfType,
}

// AncestorParam is the "[@key=value]" suffix of $ancestor.
type AncestorParam struct {
	Key   Ident
	Value Ident
	Kind  AncestorKey
	Span
}

// SiblingOffset is the "+N" or "-N" suffix of $sibling.
type SiblingOffset struct {
	Offset int
	Span
}

// Fragment is one slash-separated step of a path selector. For handles Name
// holds the handle name without the leading '$'.
type Fragment struct {
	Ancestor *AncestorParam
	Sibling  *SiblingOffset
	Name     Ident
	Kind     FragmentKind
	Span
}

// IsHandle reports whether the fragment was written with a leading '$'.
func (f *Fragment) IsHandle() bool {
	return f.Kind != FragmentIdentifier
}

// IsEmpty reports whether the fragment was synthesized during error recovery.
func (f *Fragment) IsEmpty() bool {
	return f.Kind == FragmentIdentifier && f.Name.Name == ""
}

// String renders the fragment in source form.
func (f *Fragment) String() string {
	if f == nil {
		return ""
	}
	if !f.IsHandle() {
		return f.Name.Name
	}
	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(f.Name.Name)
	switch {
	case f.Ancestor != nil:
		b.WriteString("[@")
		b.WriteString(f.Ancestor.Key.Name)
		b.WriteByte('=')
		b.WriteString(f.Ancestor.Value.Name)
		b.WriteByte(']')
	case f.Sibling != nil:
		if f.Sibling.Offset >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(f.Sibling.Offset))
	}
	return b.String()
}

// PathSelector is a sequence of fragments.
type PathSelector struct {
	Fragments []*Fragment
	Span
}

// String renders the selector in source form.
func (p *PathSelector) String() string {
	if p == nil {
		return ""
	}
	parts := make([]string, len(p.Fragments))
	for i, f := range p.Fragments {
		parts[i] = f.String()
	}
	return strings.Join(parts, "/")
}

// PropertyBind is "{path@Property[index]}".
type PropertyBind struct {
	Path     *PathSelector
	Property *Ident
	Index    *Ident
	Span
}
