// Package markup parses layout documents into an offset-preserving element
// tree with schema definitions assigned to every element.
package markup

import (
	"path"
	"strings"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Document is a parsed layout file.
type Document struct {
	Root  *Element
	URI   string
	Text  string
	lines []int
}

// Name returns the document base name without its extension. File
// descriptors are keyed by this name.
func (d *Document) Name() string {
	base := path.Base(strings.ReplaceAll(d.URI, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Position converts a byte offset into 1-based line and column.
func (d *Document) Position(offset int) (line, column int) {
	if d.lines == nil {
		d.lines = errors.LineStarts(d.Text)
	}
	return errors.PositionOf(d.lines, offset)
}

// Walk visits every element in document order. Returning false from fn
// skips the element's children.
func (d *Document) Walk(fn func(*Element) bool) {
	if d == nil || d.Root == nil {
		return
	}
	d.Root.walk(fn)
}

// Attr is an attribute with the byte ranges of its name and raw value.
// Value has entities expanded; use Offset to map positions in it back to
// the document.
type Attr struct {
	Name       string
	Value      string
	NameStart  int
	NameEnd    int
	ValueStart int
	ValueEnd   int
	// offsets maps each byte of Value, plus its end, to the raw value text.
	// Nil when Value is the raw text.
	offsets []int
}

// Offset returns the document offset of byte i of Value. Bytes produced by
// an entity map to the start of the entity.
func (a *Attr) Offset(i int) int {
	if a.offsets == nil {
		return a.ValueStart + i
	}
	i = min(max(i, 0), len(a.offsets)-1)
	return a.ValueStart + a.offsets[i]
}

// Element is a markup element. Start and End cover the whole element from
// its start tag to its end tag.
type Element struct {
	Parent   *Element
	Def      *schema.ElementDef
	Type     *schema.ComplexType
	Name     string
	Attrs    []Attr
	Children []*Element
	Start    int
	End      int
	NameEnd  int
	// TagEnd is the offset just past the start tag.
	TagEnd int
	// Index is the position among the parent's children.
	Index int
}

// NameStart is the offset of the element name in its start tag.
func (e *Element) NameStart() int {
	return e.Start + 1
}

// Attr returns the attribute named name, compared case-insensitively.
func (e *Element) Attr(name string) (*Attr, bool) {
	if e == nil {
		return nil, false
	}
	for i := range e.Attrs {
		if strings.EqualFold(e.Attrs[i].Name, name) {
			return &e.Attrs[i], true
		}
	}
	return nil, false
}

// AttrValue returns the value of attribute name.
func (e *Element) AttrValue(name string) (string, bool) {
	a, ok := e.Attr(name)
	if !ok {
		return "", false
	}
	return a.Value, true
}

// Kind returns the schema kind of the element, or ElementGeneric when the
// element has no definition.
func (e *Element) Kind() schema.ElementKind {
	if e == nil || e.Def == nil {
		return schema.ElementGeneric
	}
	return e.Def.Kind
}

// Ancestors returns the parent chain, nearest first.
func (e *Element) Ancestors() []*Element {
	var out []*Element
	for p := e.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

func (e *Element) walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.walk(fn)
	}
}
