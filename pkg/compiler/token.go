package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	INVALID TokenType = iota // never returned; reported as a lexical error

	NUMBER  // unsigned decimal literal
	NAME    // single lowercase letter
	KEYWORD // rem input let print goto if end

	RELOP   // == != < <= > >=
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	WHITESPACE // recognised and discarded
)

var tokenNames = [...]string{
	INVALID:    "INVALID",
	NUMBER:     "NUMBER",
	NAME:       "NAME",
	KEYWORD:    "KEYWORD",
	RELOP:      "RELOP",
	ASSIGN:     "ASSIGN",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PERCENT:    "PERCENT",
	WHITESPACE: "WHITESPACE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// isArith reports whether tt is one of the five binary arithmetic operators.
func (tt TokenType) isArith() bool {
	switch tt {
	case PLUS, MINUS, STAR, SLASH, PERCENT:
		return true
	}
	return false
}

// Statement keywords.
const (
	KwRem   = "rem"
	KwInput = "input"
	KwLet   = "let"
	KwPrint = "print"
	KwGoto  = "goto"
	KwIf    = "if"
	KwEnd   = "end"
)

// keywords is tried in order at every letter, before single-letter names.
var keywords = []string{KwRem, KwInput, KwLet, KwPrint, KwGoto, KwIf, KwEnd}

// Token is a single lexical unit produced by Tokenize.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based column within the physical line
}

func (t Token) String() string {
	return fmt.Sprintf("%-8s %-8q line %d col %d", t.Type, t.Lexeme, t.Line, t.Col)
}

// is reports whether t is the keyword kw.
func (t Token) is(kw string) bool {
	return t.Type == KEYWORD && t.Lexeme == kw
}
