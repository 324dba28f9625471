package selector

import (
	"fmt"
	"strconv"

	"github.com/jacoelho/uilayout/errors"
)

// Parser is a recursive-descent parser for selector expressions. A Parser
// may be reused; every Parse call starts from a clean state.
type Parser struct {
	diags    errors.List
	sc       scanner
	tok      Token
	input    string
	bindMode bool
}

// ParsePath parses a path selector with a fresh parser.
func ParsePath(text string) (*PathSelector, errors.List) {
	var p Parser
	return p.ParsePath(text)
}

// ParsePropertyBind parses a property bind expression with a fresh parser.
func ParsePropertyBind(text string) (*PropertyBind, errors.List) {
	var p Parser
	return p.ParsePropertyBind(text)
}

// ParsePath parses text as "Fragment ('/' Fragment)* ['/']".
func (p *Parser) ParsePath(text string) (*PathSelector, errors.List) {
	p.reset(text, false)
	path := p.parsePath()
	if p.tok.Kind != TokenEOF && !p.reportedAt(p.tok.Start) {
		p.errorf(p.tok.Start, len(p.input), "unexpected %s", p.tok.Kind)
	}
	return path, p.finish()
}

// ParsePropertyBind parses text as "'{' Path '@' Property ['[' Index ']'] '}'".
func (p *Parser) ParsePropertyBind(text string) (*PropertyBind, errors.List) {
	p.reset(text, true)
	bind := &PropertyBind{Span: Span{Start: p.tok.Start}}

	p.expect(TokenLeftBrace)
	bind.Path = p.parsePath()

	if p.tok.Kind == TokenAt {
		p.advance()
		if name, ok := p.expect(TokenIdentifier); ok {
			bind.Property = &Ident{Name: name.Text, Span: name.Span}
		}
		if p.tok.Kind == TokenLeftBracket {
			p.advance()
			switch p.tok.Kind {
			case TokenNumeric, TokenIdentifier:
				bind.Index = &Ident{Name: p.tok.Text, Span: p.tok.Span}
				p.advance()
			default:
				p.errorf(p.tok.Start, p.tok.End, "expected property index, found %s", p.tok.Kind)
			}
			p.expect(TokenRightBracket)
		}
	} else {
		p.errorf(p.tok.Start, p.tok.End, "expected '@' followed by a property name, found %s", p.tok.Kind)
	}

	p.expect(TokenRightBrace)
	if p.tok.Kind != TokenEOF {
		p.errorf(p.tok.Start, len(p.input), "unexpected %s after property bind", p.tok.Kind)
	}
	bind.End = len(p.input)

	if len(bind.Path.Fragments) == 0 && bind.Property != nil {
		p.errorf(0, len(p.input), "target frame isn't specified")
	}
	return bind, p.finish()
}

func (p *Parser) reset(text string, bindMode bool) {
	p.input = text
	p.bindMode = bindMode
	p.diags = nil
	p.sc.reset(text, &p.diags)
	p.advance()
}

func (p *Parser) finish() errors.List {
	diags := p.diags
	p.diags = nil
	p.sc.reset("", nil)
	p.input = ""
	return diags
}

func (p *Parser) advance() {
	p.tok = p.sc.next()
}

func (p *Parser) errorf(start, end int, format string, args ...any) {
	p.diags = append(p.diags, errors.New(errors.CategoryError, errors.CodeSelectorSyntax, start, end, fmt.Sprintf(format, args...)))
}

// reportedAt reports whether the last diagnostic starts at offset.
func (p *Parser) reportedAt(offset int) bool {
	n := len(p.diags)
	return n > 0 && p.diags[n-1].Start == offset
}

// expect consumes the current token when it has the given kind and reports
// a diagnostic otherwise, leaving the token in place for recovery.
func (p *Parser) expect(kind TokenKind) (Token, bool) {
	if p.tok.Kind == kind {
		tok := p.tok
		p.advance()
		return tok, true
	}
	p.errorf(p.tok.Start, p.tok.End, "expected %s, found %s", kind, p.tok.Kind)
	return Token{}, false
}

func (p *Parser) parsePath() *PathSelector {
	path := &PathSelector{Span: Span{Start: p.tok.Start, End: p.tok.Start}}
	if p.bindMode && p.tok.Kind == TokenAt {
		return path
	}
	for {
		frag := p.parseFragment()
		path.Fragments = append(path.Fragments, frag)
		path.End = frag.End
		if p.tok.Kind != TokenSlash {
			return path
		}
		path.End = p.tok.End
		p.advance()
		// "{path/@prop}" ends the path at the slash.
		if p.bindMode && p.tok.Kind == TokenAt {
			return path
		}
	}
}

func (p *Parser) parseFragment() *Fragment {
	switch p.tok.Kind {
	case TokenIdentifier:
		frag := &Fragment{
			Kind: FragmentIdentifier,
			Name: Ident{Name: p.tok.Text, Span: p.tok.Span},
			Span: p.tok.Span,
		}
		p.advance()
		return frag
	case TokenDollar:
		return p.parseHandle()
	}

	frag := &Fragment{
		Kind: FragmentIdentifier,
		Name: Ident{Span: Span{Start: p.tok.Start, End: p.tok.Start}},
		Span: Span{Start: p.tok.Start, End: p.tok.Start},
	}
	// the scanner already reported unknown characters
	if p.tok.Kind != TokenUnknown {
		p.errorf(p.tok.Start, p.tok.End, "expected path fragment, found %s", p.tok.Kind)
	}
	switch p.tok.Kind {
	case TokenSlash, TokenRightBrace, TokenAt, TokenEOF:
	default:
		frag.End = p.tok.End
		p.advance()
	}
	return frag
}

func (p *Parser) parseHandle() *Fragment {
	frag := &Fragment{Kind: FragmentCustom, Span: p.tok.Span}
	p.advance()

	name, ok := p.expect(TokenIdentifier)
	if !ok {
		frag.Name = Ident{Span: Span{Start: frag.End, End: frag.End}}
		return frag
	}
	frag.Name = Ident{Name: name.Text, Span: name.Span}
	frag.End = name.End
	if kind, builtin := builtinHandles[name.Text]; builtin {
		frag.Kind = kind
	}

	switch frag.Kind {
	case FragmentAncestor:
		if p.tok.Kind != TokenLeftBracket {
			p.errorf(frag.Start, frag.End, "$ancestor requires a parameter such as [@name=...]")
			return frag
		}
		frag.Ancestor = p.parseAncestorParam()
		frag.End = frag.Ancestor.End
	case FragmentSibling:
		frag.Sibling = p.parseSiblingOffset(frag)
		frag.End = frag.Sibling.End
	}
	return frag
}

func (p *Parser) parseAncestorParam() *AncestorParam {
	param := &AncestorParam{Span: p.tok.Span}
	p.advance()

	p.expect(TokenAt)
	if key, ok := p.expect(TokenIdentifier); ok {
		param.Key = Ident{Name: key.Text, Span: key.Span}
		param.End = key.End
		param.Kind = ancestorKeys[key.Text]
		if param.Kind == AncestorInvalid {
			p.errorf(key.Start, key.End, "unknown $ancestor parameter %q, expected name, type or oftype", key.Text)
		}
	}
	if _, ok := p.expect(TokenEquals); ok {
		if value, ok := p.expect(TokenIdentifier); ok {
			param.Value = Ident{Name: value.Text, Span: value.Span}
			param.End = value.End
		}
	}
	if closing, ok := p.expect(TokenRightBracket); ok {
		param.End = closing.End
	}
	return param
}

func (p *Parser) parseSiblingOffset(frag *Fragment) *SiblingOffset {
	off := &SiblingOffset{Offset: 1, Span: Span{Start: frag.End, End: frag.End}}
	sign := 1
	switch p.tok.Kind {
	case TokenPlus:
	case TokenMinus:
		sign = -1
	default:
		p.errorf(frag.Start, frag.End, "$sibling requires an offset such as +1 or -1")
		return off
	}
	off.Start = p.tok.Start
	off.End = p.tok.End
	p.advance()

	num, ok := p.expect(TokenNumeric)
	if !ok {
		return off
	}
	off.End = num.End
	n, err := strconv.Atoi(num.Text)
	if err != nil {
		p.errorf(num.Start, num.End, "sibling offset must be an integer, found %q", num.Text)
		return off
	}
	off.Offset = sign * n
	return off
}
