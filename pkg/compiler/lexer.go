package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Lexer holds all mutable state for scanning one statement's text.
type Lexer struct {
	src    []rune
	pos    int // index of the next rune to consume
	line   int // 1-based physical line
	offset int // column of src[0] within the physical line
	text   string
}

func newLexer(src string, line, colOffset int, lineText string) *Lexer {
	return &Lexer{src: []rune(src), line: line, offset: colOffset, text: lineText}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) col() int { return l.offset + l.pos }

func (l *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(string(l.src[l.pos:]), s)
}

func (l *Lexer) emit(tt TokenType, n int) Token {
	tok := Token{Type: tt, Lexeme: string(l.src[l.pos : l.pos+n]), Line: l.line, Col: l.col()}
	l.pos += n
	return tok
}

// relational operators, two-character forms first
var relops = []string{"==", "!=", ">=", "<=", ">", "<"}

// next returns the next token. A rune that belongs to no token class is
// consumed and reported through err.
func (l *Lexer) next() (tok Token, err *Diagnostic) {
	for _, op := range relops {
		if l.hasPrefix(op) {
			return l.emit(RELOP, len(op)), nil
		}
	}

	ch := l.peek()
	switch {
	case ch >= '0' && ch <= '9':
		n := 0
		for l.pos+n < len(l.src) && l.src[l.pos+n] >= '0' && l.src[l.pos+n] <= '9' {
			n++
		}
		tok := l.emit(NUMBER, n)
		if _, convErr := strconv.Atoi(tok.Lexeme); convErr != nil {
			return Token{}, newDiag(PhaseLexical, l.line, tok.Col, l.text, "number out of range: %s", tok.Lexeme)
		}
		return tok, nil

	case ch >= 'a' && ch <= 'z':
		for _, kw := range keywords {
			if l.hasPrefix(kw) {
				return l.emit(KEYWORD, len(kw)), nil
			}
		}
		return l.emit(NAME, 1), nil

	case ch == '=':
		return l.emit(ASSIGN, 1), nil
	case ch == '+':
		return l.emit(PLUS, 1), nil
	case ch == '-':
		return l.emit(MINUS, 1), nil
	case ch == '*':
		return l.emit(STAR, 1), nil
	case ch == '/':
		return l.emit(SLASH, 1), nil
	case ch == '%':
		return l.emit(PERCENT, 1), nil
	}

	col := l.col()
	l.pos++
	if unicode.IsUpper(ch) {
		return Token{}, newDiag(PhaseLexical, l.line, col, l.text, "uppercase letter not allowed: %q", ch)
	}
	return Token{}, newDiag(PhaseLexical, l.line, col, l.text, "invalid character: %q", ch)
}

// Tokenize scans one statement's text. colOffset is the 1-based column of
// the first rune of text within lineText; token columns are reported
// against the full physical line. Scanning never stops early: every
// invalid character on the line is reported.
func Tokenize(text string, line, colOffset int, lineText string) ([]Token, []*Diagnostic) {
	l := newLexer(text, line, colOffset, lineText)
	var tokens []Token
	var errs []*Diagnostic
	for l.pos < len(l.src) {
		if ch := l.peek(); ch == ' ' || ch == '\t' {
			l.pos++
			continue
		}
		tok, err := l.next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, errs
}

// Lex is the convenience form of Tokenize for a bare statement starting at
// column 1.
func Lex(text string) ([]Token, error) {
	tokens, errs := Tokenize(text, 1, 1, text)
	if len(errs) > 0 {
		return tokens, Diagnostics(errs)
	}
	return tokens, nil
}

func (t Token) describe() string {
	return fmt.Sprintf("'%s'", t.Lexeme)
}
