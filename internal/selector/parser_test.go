package selector

import (
	"slices"
	"testing"

	"github.com/jacoelho/uilayout/errors"
)

func fragmentKinds(path *PathSelector) []FragmentKind {
	kinds := make([]FragmentKind, len(path.Fragments))
	for i, f := range path.Fragments {
		kinds[i] = f.Kind
	}
	return kinds
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantKinds []FragmentKind
		wantDiags int
	}{
		{
			name:      "this then ancestor by name",
			expr:      "$this/$ancestor[@name=m]",
			wantKinds: []FragmentKind{FragmentThis, FragmentAncestor},
		},
		{
			name:      "plain child chain",
			expr:      "Panel/Button/Label",
			wantKinds: []FragmentKind{FragmentIdentifier, FragmentIdentifier, FragmentIdentifier},
		},
		{
			name:      "builtin handles",
			expr:      "$parent/$root/$layer/$sibling+2",
			wantKinds: []FragmentKind{FragmentParent, FragmentRoot, FragmentLayer, FragmentSibling},
		},
		{
			name:      "custom handle",
			expr:      "$MyHandle/Child",
			wantKinds: []FragmentKind{FragmentCustom, FragmentIdentifier},
		},
		{
			name:      "whitespace is skipped",
			expr:      " $parent / Child ",
			wantKinds: []FragmentKind{FragmentParent, FragmentIdentifier},
		},
		{
			name:      "trailing slash synthesizes a fragment",
			expr:      "Panel/",
			wantKinds: []FragmentKind{FragmentIdentifier, FragmentIdentifier},
			wantDiags: 1,
		},
		{
			name:      "ancestor without parameter",
			expr:      "$ancestor",
			wantKinds: []FragmentKind{FragmentAncestor},
			wantDiags: 1,
		},
		{
			name:      "unknown ancestor key keeps parsing",
			expr:      "$ancestor[@class=Button]/Child",
			wantKinds: []FragmentKind{FragmentAncestor, FragmentIdentifier},
			wantDiags: 1,
		},
		{
			name:      "sibling without offset",
			expr:      "$sibling",
			wantKinds: []FragmentKind{FragmentSibling},
			wantDiags: 1,
		},
		{
			name:      "unknown character is reported once",
			expr:      "Pa%nel",
			wantKinds: []FragmentKind{FragmentIdentifier},
			wantDiags: 1,
		},
		{
			name:      "unknown character as fragment",
			expr:      "Panel/%",
			wantKinds: []FragmentKind{FragmentIdentifier, FragmentIdentifier},
			wantDiags: 1,
		},
		{
			name:      "closing brace outside a bind",
			expr:      "}",
			wantKinds: []FragmentKind{FragmentIdentifier},
			wantDiags: 1,
		},
		{
			name:      "empty expression",
			expr:      "",
			wantKinds: []FragmentKind{FragmentIdentifier},
			wantDiags: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, diags := ParsePath(tt.expr)
			if got := fragmentKinds(path); !slices.Equal(got, tt.wantKinds) {
				t.Fatalf("ParsePath(%q) kinds = %v, want %v", tt.expr, got, tt.wantKinds)
			}
			if len(diags) != tt.wantDiags {
				t.Fatalf("ParsePath(%q) diagnostics = %v, want %d", tt.expr, diags, tt.wantDiags)
			}
		})
	}
}

func TestParseAncestorParam(t *testing.T) {
	path, diags := ParsePath("$this/$ancestor[@name=m]")
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	anc := path.Fragments[1].Ancestor
	if anc == nil {
		t.Fatalf("ancestor parameter missing")
	}
	if anc.Kind != AncestorName || anc.Key.Name != "name" || anc.Value.Name != "m" {
		t.Fatalf("ancestor = %+v", anc)
	}
	if anc.Start != 15 || anc.End != 24 {
		t.Fatalf("ancestor span = %d..%d, want 15..24", anc.Start, anc.End)
	}
	if got := path.String(); got != "$this/$ancestor[@name=m]" {
		t.Fatalf("String() = %q", got)
	}

	for expr, want := range map[string]AncestorKey{
		"$ancestor[@type=Button]":   AncestorType,
		"$ancestor[@oftype=Button]": AncestorOfType,
	} {
		path, diags := ParsePath(expr)
		if len(diags) != 0 || path.Fragments[0].Ancestor.Kind != want {
			t.Fatalf("ParsePath(%q) = %v, %v", expr, path.Fragments[0].Ancestor, diags)
		}
	}
}

func TestParseFragmentSpans(t *testing.T) {
	path, _ := ParsePath("$parent/Label")
	if f := path.Fragments[0]; f.Start != 0 || f.End != 7 {
		t.Fatalf("fragment 0 span = %d..%d, want 0..7", f.Start, f.End)
	}
	if f := path.Fragments[1]; f.Start != 8 || f.End != 13 || f.Name.Name != "Label" {
		t.Fatalf("fragment 1 = %+v", f)
	}
	if path.Start != 0 || path.End != 13 {
		t.Fatalf("path span = %d..%d", path.Start, path.End)
	}
}

func TestParseSiblingOffset(t *testing.T) {
	tests := []struct {
		expr       string
		wantOffset int
		wantDiags  int
	}{
		{expr: "$sibling+1", wantOffset: 1},
		{expr: "$sibling-3", wantOffset: -3},
		{expr: "$sibling-1.5", wantOffset: 1, wantDiags: 1},
		{expr: "$sibling+", wantOffset: 1, wantDiags: 1},
	}
	for _, tt := range tests {
		path, diags := ParsePath(tt.expr)
		sib := path.Fragments[0].Sibling
		if sib == nil || sib.Offset != tt.wantOffset {
			t.Fatalf("ParsePath(%q) sibling = %+v, want offset %d", tt.expr, sib, tt.wantOffset)
		}
		if len(diags) != tt.wantDiags {
			t.Fatalf("ParsePath(%q) diagnostics = %v, want %d", tt.expr, diags, tt.wantDiags)
		}
	}
}

func TestParsePropertyBind(t *testing.T) {
	tests := []struct {
		name         string
		expr         string
		wantPath     []string
		wantProperty string
		wantIndex    string
		wantDiags    int
	}{
		{
			name:         "slash before property",
			expr:         "{el/@prop}",
			wantPath:     []string{"el"},
			wantProperty: "prop",
		},
		{
			name:         "no slash before property",
			expr:         "{$parent@Text}",
			wantPath:     []string{"$parent"},
			wantProperty: "Text",
		},
		{
			name:         "sibling offset",
			expr:         "{$parent/$sibling-1/@prop}",
			wantPath:     []string{"$parent", "$sibling-1"},
			wantProperty: "prop",
		},
		{
			name:         "indexed property",
			expr:         "{$this/@Value[2]}",
			wantPath:     []string{"$this"},
			wantProperty: "Value",
			wantIndex:    "2",
		},
		{
			name:      "trailing slash without property",
			expr:      "{$this/}",
			wantPath:  []string{"$this", ""},
			wantDiags: 2,
		},
		{
			name:         "missing target",
			expr:         "{@Text}",
			wantPath:     []string{},
			wantProperty: "Text",
			wantDiags:    1,
		},
		{
			name:         "missing closing brace",
			expr:         "{Panel/@Text",
			wantPath:     []string{"Panel"},
			wantProperty: "Text",
			wantDiags:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bind, diags := ParsePropertyBind(tt.expr)
			got := make([]string, 0, len(bind.Path.Fragments))
			for _, f := range bind.Path.Fragments {
				got = append(got, f.String())
			}
			if !slices.Equal(got, tt.wantPath) {
				t.Fatalf("path = %q, want %q", got, tt.wantPath)
			}
			prop := ""
			if bind.Property != nil {
				prop = bind.Property.Name
			}
			if prop != tt.wantProperty {
				t.Fatalf("property = %q, want %q", prop, tt.wantProperty)
			}
			idx := ""
			if bind.Index != nil {
				idx = bind.Index.Name
			}
			if idx != tt.wantIndex {
				t.Fatalf("index = %q, want %q", idx, tt.wantIndex)
			}
			if len(diags) != tt.wantDiags {
				t.Fatalf("diagnostics = %v, want %d", diags, tt.wantDiags)
			}
		})
	}
}

func TestPropertyBindMissingTargetSpansExpression(t *testing.T) {
	_, diags := ParsePropertyBind("{@Text}")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", diags)
	}
	d := diags[0]
	if d.Start != 0 || d.End != 7 || d.Message != "target frame isn't specified" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Category != errors.CategoryError || d.Code != errors.CodeSelectorSyntax {
		t.Fatalf("diagnostic classification = %v/%v", d.Category, d.Code)
	}
}

func TestParserReuseHasNoResidualState(t *testing.T) {
	var p Parser
	if _, diags := p.ParsePath("a/%"); len(diags) == 0 {
		t.Fatalf("expected diagnostics for a/%%")
	}
	path, diags := p.ParsePath("a/b")
	if len(diags) != 0 || len(path.Fragments) != 2 {
		t.Fatalf("reused parser: path = %v, diagnostics = %v", path, diags)
	}
	bind, diags := p.ParsePropertyBind("{a/@b}")
	if len(diags) != 0 || bind.Property.Name != "b" {
		t.Fatalf("reused parser bind = %+v, diagnostics = %v", bind, diags)
	}
}

func TestTokenize(t *testing.T) {
	toks, diags := Tokenize("{## @@ # @ 12.5 x_1 = + - . | ] [ }")
	want := []TokenKind{
		TokenLeftBrace, TokenHashHash, TokenAtAt, TokenHash, TokenAt, TokenNumeric,
		TokenIdentifier, TokenEquals, TokenPlus, TokenMinus, TokenDot, TokenPipe,
		TokenRightBracket, TokenLeftBracket, TokenRightBrace, TokenEOF,
	}
	got := make([]TokenKind, len(toks))
	for i, tok := range toks {
		got[i] = tok.Kind
	}
	if !slices.Equal(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if len(diags) != 0 {
		t.Fatalf("diagnostics = %v", diags)
	}
	if toks[5].Text != "12.5" {
		t.Fatalf("numeric text = %q", toks[5].Text)
	}

	toks, diags = Tokenize("aéb")
	if len(diags) != 1 || toks[1].Kind != TokenUnknown || toks[1].Text != "é" {
		t.Fatalf("unknown rune scan = %v, %v", toks, diags)
	}
}
