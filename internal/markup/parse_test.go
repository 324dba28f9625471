package markup

import (
	"strings"
	"testing"

	"github.com/jacoelho/uilayout/errors"
	"github.com/jacoelho/uilayout/internal/schema"
)

func mustRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Default()
	if err != nil {
		t.Fatalf("schema.Default() error = %v", err)
	}
	return reg
}

const layout = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>
<Desc>
    <Frame type="Button" name="Ok">
        <Anchor side="Top" relative="$parent" pos="Min" offset="4"/>
        <Text val="a &amp; b"/>
    </Frame>
</Desc>
`

func TestParseOffsets(t *testing.T) {
	doc, diags := Parse("ui/Main.SC2Layout", layout, mustRegistry(t))
	if len(diags) != 0 {
		t.Fatalf("Parse() diagnostics = %v", diags)
	}
	if doc.Name() != "Main" {
		t.Fatalf("Name() = %q, want Main", doc.Name())
	}
	root := doc.Root
	if root == nil || root.Name != "Desc" || len(root.Children) != 1 {
		t.Fatalf("root = %+v", root)
	}
	if got := layout[root.Start:root.End]; got[:6] != "<Desc>" || got[len(got)-7:] != "</Desc>" {
		t.Fatalf("root range = %q", got)
	}

	frame := root.Children[0]
	if layout[frame.NameStart():frame.NameEnd] != "Frame" {
		t.Fatalf("frame name range = %q", layout[frame.NameStart():frame.NameEnd])
	}
	typ, ok := frame.Attr("TYPE")
	if !ok || typ.Value != "Button" || layout[typ.ValueStart:typ.ValueEnd] != "Button" {
		t.Fatalf("type attr = %+v", typ)
	}
	if layout[typ.NameStart:typ.NameEnd] != "type" {
		t.Fatalf("type name range = %q", layout[typ.NameStart:typ.NameEnd])
	}

	anchor := frame.Children[0]
	if layout[anchor.Start:anchor.End] != `<Anchor side="Top" relative="$parent" pos="Min" offset="4"/>` {
		t.Fatalf("self-closing range = %q", layout[anchor.Start:anchor.End])
	}
	if len(anchor.Attrs) != 4 || anchor.Attrs[1].Value != "$parent" {
		t.Fatalf("anchor attrs = %+v", anchor.Attrs)
	}

	text := frame.Children[1]
	val, _ := text.Attr("val")
	if val.Value != "a & b" || layout[val.ValueStart:val.ValueEnd] != "a &amp; b" {
		t.Fatalf("entity value = %+v", val)
	}
	if text.Index != 1 || text.Parent != frame {
		t.Fatalf("text links = index %d parent %v", text.Index, text.Parent)
	}

	line, col := doc.Position(frame.Start)
	if line != 3 || col != 5 {
		t.Fatalf("Position(frame) = %d:%d, want 3:5", line, col)
	}
}

func TestAttrOffset(t *testing.T) {
	tests := []struct {
		raw   string
		value string
		want  []int
	}{
		{raw: "$parent/Ok", value: "$parent/Ok", want: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{raw: "a&amp;b/c", value: "a&b/c", want: []int{0, 1, 6, 7, 8, 9}},
		{raw: "&lt;&gt;", value: "<>", want: []int{0, 4, 8}},
		{raw: "&#xe9;x", value: "\u00e9x", want: []int{0, 0, 6, 7}},
		{raw: "&#36;this", value: "$this", want: []int{0, 5, 6, 7, 8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			text := `<Desc><Frame type="Frame" name="A" relative="` + tt.raw + `"/></Desc>`
			doc, diags := Parse("T.SC2Layout", text, nil)
			if len(diags) != 0 {
				t.Fatalf("Parse() diagnostics = %v", diags)
			}
			attr, ok := doc.Root.Children[0].Attr("relative")
			if !ok || attr.Value != tt.value {
				t.Fatalf("relative = %+v, want value %q", attr, tt.value)
			}
			for i, want := range tt.want {
				if got := attr.Offset(i) - attr.ValueStart; got != want {
					t.Fatalf("Offset(%d) = %d, want %d", i, got, want)
				}
			}
			if end := attr.Offset(len(attr.Value)); end != attr.ValueEnd {
				t.Fatalf("Offset(end) = %d, want ValueEnd %d", end, attr.ValueEnd)
			}
		})
	}
}

func TestParseAssignsSchema(t *testing.T) {
	doc, _ := Parse("Main.SC2Layout", layout, mustRegistry(t))
	if doc.Root.Kind() != schema.ElementDesc {
		t.Fatalf("root kind = %v", doc.Root.Kind())
	}
	frame := doc.Root.Children[0]
	if frame.Kind() != schema.ElementFrame || frame.Type.Name != "Button" {
		t.Fatalf("frame def = %v type = %v", frame.Def, frame.Type)
	}
	text := frame.Children[1]
	if text.Kind() != schema.ElementProperty {
		t.Fatalf("Text kind = %v", text.Kind())
	}
}

func TestParseUnknownElementHasNoDefinition(t *testing.T) {
	doc, diags := Parse("a.SC2Layout", `<Desc><Widget name="x"><Frame/></Widget></Desc>`, mustRegistry(t))
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	widget := doc.Root.Children[0]
	if widget.Def != nil || widget.Type != nil {
		t.Fatalf("Widget should have no definition")
	}
	if widget.Children[0].Def != nil {
		t.Fatalf("children of unknown elements should have no definition")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantRoot bool
	}{
		{name: "unclosed", text: `<Desc><Frame name="a" type="Frame">`, wantRoot: true},
		{name: "mismatched", text: `<Desc><Frame></Desc>`, wantRoot: true},
		{name: "second root", text: `<Desc/><Desc/>`, wantRoot: true},
		{name: "garbage", text: `<<`, wantRoot: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, diags := Parse("bad.SC2Layout", tt.text, mustRegistry(t))
			if len(diags) == 0 {
				t.Fatalf("Parse(%q) diagnostics = none", tt.text)
			}
			if diags[0].Code != errors.CodeMarkupSyntax {
				t.Fatalf("code = %v", diags[0].Code)
			}
			if (doc.Root != nil) != tt.wantRoot {
				t.Fatalf("root = %v, want present=%v", doc.Root, tt.wantRoot)
			}
			if doc.Root != nil && doc.Root.End > len(tt.text) {
				t.Fatalf("root end %d past text", doc.Root.End)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	doc, diags := Parse("empty.SC2Layout", "", nil)
	if doc.Root != nil || len(diags) != 0 {
		t.Fatalf("Parse(empty) = %v, %v", doc.Root, diags)
	}
}

func TestWalkOrder(t *testing.T) {
	doc, _ := Parse("w.SC2Layout", `<a><b><c/></b><d/></a>`, nil)
	var got []string
	doc.Walk(func(e *Element) bool {
		got = append(got, e.Name)
		return e.Name != "b"
	})
	if want := "a,b,d"; strings.Join(got, ",") != want {
		t.Fatalf("Walk() = %s, want %s", strings.Join(got, ","), want)
	}
}
