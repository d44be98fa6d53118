package dsl

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokParam
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokParam:
		return "parameter"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "punctuation"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}

const punctuation = ";:~()[],=+-*/^"

// lexer turns source text into tokens. It tracks line and column so every
// token and every error carries a position.
type lexer struct {
	src  []rune
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

func (l *lexer) peekRune() rune {
	if l.off >= len(l.src) {
		return -1
	}
	return l.src[l.off]
}

func (l *lexer) advance() rune {
	r := l.src[l.off]
	l.off++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for {
		r := l.peekRune()
		switch {
		case r == '#':
			for r != -1 && r != '\n' {
				l.advance()
				r = l.peekRune()
			}
		case r != -1 && unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return isIdentStart(r) || unicode.IsDigit(r) }

func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	pos := Pos{Line: l.line, Column: l.col}
	r := l.peekRune()
	switch {
	case r == -1:
		return token{kind: tokEOF, pos: pos}, nil
	case r == '$':
		l.advance()
		if !isIdentStart(l.peekRune()) {
			return token{}, &SyntaxError{Pos: pos, Msg: "expected parameter name after '$'"}
		}
		return token{kind: tokParam, text: l.ident(), pos: pos}, nil
	case isIdentStart(r):
		return token{kind: tokIdent, text: l.ident(), pos: pos}, nil
	case unicode.IsDigit(r) || r == '.':
		return l.number(pos)
	case r == '"':
		return l.str(pos)
	default:
		for _, p := range punctuation {
			if r == p {
				l.advance()
				return token{kind: tokPunct, text: string(r), pos: pos}, nil
			}
		}
		return token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

func (l *lexer) ident() string {
	start := l.off
	for isIdentPart(l.peekRune()) {
		l.advance()
	}
	return string(l.src[start:l.off])
}

func (l *lexer) digits() {
	for unicode.IsDigit(l.peekRune()) {
		l.advance()
	}
}

func (l *lexer) number(pos Pos) (token, error) {
	start := l.off
	l.digits()
	if l.peekRune() == '.' {
		l.advance()
		l.digits()
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		l.advance()
		if r := l.peekRune(); r == '+' || r == '-' {
			l.advance()
		}
		l.digits()
	}
	text := string(l.src[start:l.off])
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("malformed number %q", text)}
	}
	return token{kind: tokNumber, text: text, pos: pos}, nil
}

func (l *lexer) str(pos Pos) (token, error) {
	l.advance()
	start := l.off
	for {
		r := l.peekRune()
		if r == -1 || r == '\n' {
			return token{}, &SyntaxError{Pos: pos, Msg: "unterminated string"}
		}
		if r == '"' {
			text := string(l.src[start:l.off])
			l.advance()
			return token{kind: tokString, text: text, pos: pos}, nil
		}
		l.advance()
	}
}
