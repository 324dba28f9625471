package markup

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/schema"
)

// Parse builds the element tree of a layout document. Well-formedness
// problems are reported as diagnostics and the tree built so far is kept,
// with unclosed elements extended to the end of the text. reg may be nil,
// in which case no schema definitions are assigned.
func Parse(uri, text string, reg *schema.Registry) (*Document, errors.List) {
	doc := &Document{URI: uri, Text: text}
	var diags errors.List

	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var stack []*Element
	rootClosed := false

	for {
		start := int(decoder.InputOffset())
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			at := min(int(decoder.InputOffset()), len(text))
			msg := err.Error()
			if se, ok := err.(*xml.SyntaxError); ok {
				msg = se.Msg
			}
			diags = append(diags, errors.New(errors.CategoryError, errors.CodeMarkupSyntax, at, at, msg))
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			end := int(decoder.InputOffset())
			elem := &Element{Name: t.Name.Local, Start: start, TagEnd: end, End: end}
			elem.NameEnd, elem.Attrs = scanTag(text, start, end, t.Attr)
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				elem.Parent = parent
				elem.Index = len(parent.Children)
				parent.Children = append(parent.Children, elem)
			} else if rootClosed || doc.Root != nil {
				diags = append(diags, errors.Newf(errors.CategoryError, errors.CodeMarkupSyntax,
					start, end, "unexpected element %s after document end", t.Name.Local))
			} else {
				doc.Root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].End = int(decoder.InputOffset())
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && doc.Root != nil {
				rootClosed = true
			}
		}
	}

	for _, elem := range stack {
		elem.End = len(text)
	}

	if reg != nil && doc.Root != nil {
		assignRoot(reg, doc.Root)
	}
	return doc, diags
}

// scanTag locates the element name and attribute ranges inside the raw
// start tag text[start:end]. Values are taken from the decoder so entities
// are already expanded.
func scanTag(text string, start, end int, decoded []xml.Attr) (int, []Attr) {
	raw := text[start:end]
	i := 1
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	nameEnd := start + i

	var attrs []Attr
	for i < len(raw) {
		for i < len(raw) && isTagSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] == '/' || raw[i] == '>' {
			break
		}
		nameStart := i
		for i < len(raw) && raw[i] != '=' && !isTagSpace(raw[i]) {
			i++
		}
		attr := Attr{Name: localName(raw[nameStart:i]), NameStart: start + nameStart, NameEnd: start + i}
		for i < len(raw) && (isTagSpace(raw[i]) || raw[i] == '=') {
			i++
		}
		if i >= len(raw) {
			break
		}
		quote := raw[i]
		i++
		valueStart := i
		for i < len(raw) && raw[i] != quote {
			i++
		}
		attr.ValueStart = start + valueStart
		attr.ValueEnd = start + i
		attr.Value = raw[valueStart:i]
		if n := len(attrs); n < len(decoded) && decoded[n].Name.Local == attr.Name && decoded[n].Value != attr.Value {
			attr.offsets = valueOffsets(attr.Value, decoded[n].Value)
			attr.Value = decoded[n].Value
		}
		attrs = append(attrs, attr)
		i++
	}
	return nameEnd, attrs
}

// valueOffsets maps every byte of the decoded attribute value, plus its end,
// to an offset in the raw value it was decoded from.
func valueOffsets(raw, value string) []int {
	offsets := make([]int, 0, len(value)+1)
	r := 0
	for d := 0; d < len(value); {
		width, consumed := 1, 1
		switch {
		case r >= len(raw):
			consumed = 0
		case raw[r] == '&':
			if end := strings.IndexByte(raw[r:], ';'); end > 0 {
				width, consumed = entityWidth(raw[r+1:r+end]), end+1
			}
		case raw[r] == '\r' && value[d] == '\n':
			if r+1 < len(raw) && raw[r+1] == '\n' {
				consumed = 2
			}
		}
		for range min(width, len(value)-d) {
			offsets = append(offsets, r)
		}
		d += width
		r += consumed
	}
	return append(offsets, min(r, len(raw)))
}

// entityWidth returns the number of bytes entity name expands to.
func entityWidth(name string) int {
	if num, ok := strings.CutPrefix(name, "#"); ok {
		base := 10
		if hex, ok := strings.CutPrefix(num, "x"); ok {
			num, base = hex, 16
		}
		if n, err := strconv.ParseUint(num, base, 32); err == nil {
			if w := utf8.RuneLen(rune(n)); w > 0 {
				return w
			}
		}
		return utf8.RuneLen(utf8.RuneError)
	}
	return 1
}

func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isTagSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func attrLookup(e *Element) func(string) (string, bool) {
	return e.AttrValue
}

func assignRoot(reg *schema.Registry, root *Element) {
	def, ok := reg.Root(root.Name)
	if !ok {
		return
	}
	root.Def = def
	root.Type = reg.EffectiveType(def, attrLookup(root))
	assignChildren(reg, root)
}

func assignChildren(reg *schema.Registry, parent *Element) {
	for _, child := range parent.Children {
		if parent.Type != nil {
			if def, ct, ok := reg.ResolveElement(parent.Type, child.Name, attrLookup(child)); ok {
				child.Def = def
				child.Type = ct
			}
		}
		assignChildren(reg, child)
	}
}
