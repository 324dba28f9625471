package selector

import (
	"fmt"
	"unicode/utf8"

	"github.com/jacoelho/uilayout/errors"
)

// TokenKind identifies the lexical class of a token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenUnknown
	TokenIdentifier
	TokenNumeric
	TokenLeftBrace
	TokenRightBrace
	TokenLeftBracket
	TokenRightBracket
	TokenDot
	TokenSlash
	TokenPipe
	TokenDollar
	TokenAt
	TokenAtAt
	TokenHash
	TokenHashHash
	TokenEquals
	TokenPlus
	TokenMinus
)

var tokenKindNames = [...]string{
	TokenEOF:          "end of expression",
	TokenUnknown:      "unknown character",
	TokenIdentifier:   "identifier",
	TokenNumeric:      "number",
	TokenLeftBrace:    "'{'",
	TokenRightBrace:   "'}'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
	TokenDot:          "'.'",
	TokenSlash:        "'/'",
	TokenPipe:         "'|'",
	TokenDollar:       "'$'",
	TokenAt:           "'@'",
	TokenAtAt:         "'@@'",
	TokenHash:         "'#'",
	TokenHashHash:     "'##'",
	TokenEquals:       "'='",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
}

// String returns a human readable token description used in diagnostics.
func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token"
}

// Token is a lexical token with its source range.
type Token struct {
	Text string
	Kind TokenKind
	Span
}

var punctuation = map[byte]TokenKind{
	'{': TokenLeftBrace,
	'}': TokenRightBrace,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	'.': TokenDot,
	'/': TokenSlash,
	'|': TokenPipe,
	'$': TokenDollar,
	'=': TokenEquals,
	'+': TokenPlus,
	'-': TokenMinus,
}

// scanner tokenizes an expression in a single pass. Unknown characters are
// reported and skipped one byte at a time.
type scanner struct {
	diags *errors.List
	input string
	pos   int
}

func (s *scanner) reset(input string, diags *errors.List) {
	s.input = input
	s.pos = 0
	s.diags = diags
}

func (s *scanner) next() Token {
	s.skipSpace()
	start := s.pos
	if s.pos >= len(s.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}
	ch := s.input[s.pos]
	switch {
	case isIdentStart(ch):
		s.pos++
		for s.pos < len(s.input) && isIdentPart(s.input[s.pos]) {
			s.pos++
		}
		return s.token(TokenIdentifier, start)
	case isDigit(ch):
		s.scanNumber()
		return s.token(TokenNumeric, start)
	case ch == '@':
		s.pos++
		if s.peek('@') {
			s.pos++
			return s.token(TokenAtAt, start)
		}
		return s.token(TokenAt, start)
	case ch == '#':
		s.pos++
		if s.peek('#') {
			s.pos++
			return s.token(TokenHashHash, start)
		}
		return s.token(TokenHash, start)
	}
	if kind, ok := punctuation[ch]; ok {
		s.pos++
		return s.token(kind, start)
	}
	_, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size
	tok := s.token(TokenUnknown, start)
	*s.diags = append(*s.diags, errors.New(errors.CategoryError, errors.CodeSelectorSyntax,
		tok.Start, tok.End, fmt.Sprintf("unexpected character %q", tok.Text)))
	return tok
}

func (s *scanner) scanNumber() {
	for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
		s.pos++
	}
	if s.pos+1 < len(s.input) && s.input[s.pos] == '.' && isDigit(s.input[s.pos+1]) {
		s.pos++
		for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
			s.pos++
		}
	}
}

func (s *scanner) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: s.input[start:s.pos], Span: Span{Start: start, End: s.pos}}
}

func (s *scanner) peek(ch byte) bool {
	return s.pos < len(s.input) && s.input[s.pos] == ch
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize returns every token of input up to and including EOF, together
// with scan diagnostics.
func Tokenize(input string) ([]Token, errors.List) {
	var diags errors.List
	var s scanner
	s.reset(input, &diags)
	var toks []Token
	for {
		tok := s.next()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, diags
		}
	}
}
