// Package desc maintains the descriptor namespace: one descriptor per
// uniquely named file, frame, animation and state group, merged across every
// bound document.
package desc

import (
	"iter"
	"slices"
	"strings"

	"github.com/jacoelho/uilayout/internal/markup"
	"github.com/jacoelho/uilayout/internal/names"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Kind classifies descriptors.
type Kind uint8

const (
	KindRoot Kind = iota
	KindFile
	KindFrame
	KindAnimation
	KindStateGroup
)

var kindNames = [...]string{
	KindRoot:       "Root",
	KindFile:       "File",
	KindFrame:      "Frame",
	KindAnimation:  "Animation",
	KindStateGroup: "StateGroup",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// KindOf maps a schema element kind to the descriptor kind it declares.
func KindOf(k schema.ElementKind) (Kind, bool) {
	switch k {
	case schema.ElementDesc:
		return KindFile, true
	case schema.ElementFrame:
		return KindFrame, true
	case schema.ElementAnimation:
		return KindAnimation, true
	case schema.ElementStateGroup:
		return KindStateGroup, true
	default:
		return 0, false
	}
}

// Decl is one element contributing to a descriptor.
type Decl struct {
	Element  *markup.Element
	Document *markup.Document
	// Override marks a declaration contributed through file="X" from a
	// document other than the descriptor's own file.
	Override bool
	seq      int
}

func (d Decl) compare(o Decl) int {
	switch {
	case d.Override != o.Override:
		if o.Override {
			return -1
		}
		return 1
	case d.seq != o.seq:
		return d.seq - o.seq
	default:
		return d.Element.Start - o.Element.Start
	}
}

// Desc is a named node of the namespace tree.
type Desc struct {
	parent   *Desc
	children *names.Map[*Desc]
	Name     string
	decls    []Decl
	Kind     Kind
	detached bool
}

func newDesc(parent *Desc, name string, kind Kind) *Desc {
	return &Desc{parent: parent, Name: name, Kind: kind, children: names.New[*Desc]()}
}

// Parent returns the parent descriptor, or nil for the root.
func (d *Desc) Parent() *Desc {
	return d.parent
}

// Child looks a direct child up ignoring case. key is the declared spelling.
func (d *Desc) Child(name string) (child *Desc, key string, match names.Match) {
	return d.children.Get(name)
}

// Children iterates direct children in declaration order.
func (d *Desc) Children() iter.Seq[*Desc] {
	return d.children.Values()
}

// ChildCount returns the number of direct children.
func (d *Desc) ChildCount() int {
	return d.children.Len()
}

// Decls returns the contributing declarations ordered by file load order
// and document order, with overrides last.
func (d *Desc) Decls() []Decl {
	return slices.Clone(d.decls)
}

// Bound reports whether at least one declaration contributes to d. A
// descriptor without declarations only exists as the parent of bound
// descendants, for example when an override is bound before its base file.
func (d *Desc) Bound() bool {
	return d.Kind == KindRoot || len(d.decls) > 0
}

// Attached reports whether d is still part of the namespace tree.
func (d *Desc) Attached() bool {
	return !d.detached
}

// Path returns the names from the file descriptor down to d.
func (d *Desc) Path() []string {
	var path []string
	for c := d; c != nil && c.Kind != KindRoot; c = c.parent {
		path = append(path, c.Name)
	}
	slices.Reverse(path)
	return path
}

// FQN returns the slash joined path of d.
func (d *Desc) FQN() string {
	return strings.Join(d.Path(), "/")
}

// File returns the file descriptor d belongs to.
func (d *Desc) File() *Desc {
	for c := d; c != nil; c = c.parent {
		if c.Kind == KindFile {
			return c
		}
	}
	return nil
}

// Type returns the complex type of the last declaration.
func (d *Desc) Type() *schema.ComplexType {
	for i := len(d.decls) - 1; i >= 0; i-- {
		if t := d.decls[i].Element.Type; t != nil {
			return t
		}
	}
	return nil
}

// Attr returns the value of attribute name from the last declaration that
// carries it.
func (d *Desc) Attr(name string) (string, *Decl, bool) {
	for i := len(d.decls) - 1; i >= 0; i-- {
		if v, ok := d.decls[i].Element.AttrValue(name); ok {
			return v, &d.decls[i], true
		}
	}
	return "", nil, false
}

// IsAncestorOf reports whether d is a strict ancestor of other.
func (d *Desc) IsAncestorOf(other *Desc) bool {
	for c := other.parent; c != nil; c = c.parent {
		if c == d {
			return true
		}
	}
	return false
}

func (d *Desc) addDecl(decl Decl) {
	i := slices.IndexFunc(d.decls, func(x Decl) bool { return x.compare(decl) > 0 })
	if i < 0 {
		i = len(d.decls)
	}
	d.decls = slices.Insert(d.decls, i, decl)
}

func (d *Desc) child(name string, kind Kind) (*Desc, bool) {
	if c, _, match := d.children.Get(name); match.Found() {
		return c, false
	}
	c := newDesc(d, name, kind)
	d.children.Set(name, c)
	return c, true
}

// removeDocument drops the declarations contributed by uri from d and its
// subtree, pruning descendants left with neither declarations nor children.
func (d *Desc) removeDocument(uri string, removed func(*Desc)) {
	d.decls = slices.DeleteFunc(d.decls, func(decl Decl) bool {
		return decl.Document.URI == uri
	})
	for _, key := range d.children.Keys() {
		c, _ := d.children.GetExactCase(key)
		c.removeDocument(uri, removed)
		if len(c.decls) == 0 && c.children.Len() == 0 {
			d.children.Delete(key)
			c.detach(removed)
		}
	}
}

func (d *Desc) detach(removed func(*Desc)) {
	d.detached = true
	removed(d)
	for c := range d.children.Values() {
		c.detach(removed)
	}
}
