package compiler

import (
	"fmt"
	"strconv"
)

// astBuilder re-walks token slices that Validate has accepted. It assumes
// the shape is correct and only fails on an internal inconsistency.
type astBuilder struct {
	tokens []Token
	pos    int
}

func (b *astBuilder) peek() Token {
	if b.pos >= len(b.tokens) {
		return Token{}
	}
	return b.tokens[b.pos]
}

func (b *astBuilder) advance() Token {
	tok := b.peek()
	if b.pos < len(b.tokens) {
		b.pos++
	}
	return tok
}

func (b *astBuilder) number() (int, error) {
	tok := b.advance()
	if tok.Type != NUMBER {
		return 0, fmt.Errorf("line %d col %d: expected number, got %s", tok.Line, tok.Col, tok.Type)
	}
	return strconv.Atoi(tok.Lexeme)
}

func (b *astBuilder) operand() (Expr, error) {
	tok := b.advance()
	switch tok.Type {
	case NUMBER:
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, err
		}
		return &NumberLit{Value: v}, nil
	case NAME:
		return &VarRef{Name: tok.Lexeme}, nil
	case MINUS:
		inner, err := b.operand()
		if err != nil {
			return nil, err
		}
		return &NegExpr{Operand: inner}, nil
	}
	return nil, fmt.Errorf("line %d col %d: unexpected %s in expression", tok.Line, tok.Col, tok.Type)
}

func (b *astBuilder) expression() (Expr, error) {
	left, err := b.operand()
	if err != nil {
		return nil, err
	}
	if !b.peek().Type.isArith() {
		return left, nil
	}
	op := b.advance().Type
	right, err := b.operand()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func (b *astBuilder) statement(pos Pos) (Stmt, error) {
	kw := b.advance()
	switch kw.Lexeme {
	case KwInput:
		return &InputStmt{Pos: pos, Var: b.advance().Lexeme}, nil
	case KwPrint:
		return &PrintStmt{Pos: pos, Var: b.advance().Lexeme}, nil
	case KwEnd:
		return &EndStmt{Pos: pos}, nil
	case KwGoto:
		col := b.peek().Col
		target, err := b.number()
		if err != nil {
			return nil, err
		}
		return &GotoStmt{Pos: pos, Target: target, TargetCol: col}, nil
	case KwLet:
		name := b.advance().Lexeme
		b.advance() // =
		value, err := b.expression()
		if err != nil {
			return nil, err
		}
		return &LetStmt{Pos: pos, Var: name, Value: value}, nil
	case KwIf:
		left, err := b.expression()
		if err != nil {
			return nil, err
		}
		op := RelOp(b.advance().Lexeme)
		right, err := b.expression()
		if err != nil {
			return nil, err
		}
		b.advance() // goto
		col := b.peek().Col
		target, err := b.number()
		if err != nil {
			return nil, err
		}
		return &IfGotoStmt{Pos: pos, Left: left, Op: op, Right: right, Target: target, TargetCol: col}, nil
	}
	return nil, fmt.Errorf("line %d: unknown statement %q", kw.Line, kw.Lexeme)
}

// BuildStmt turns one validated token slice into a statement node.
func BuildStmt(tokens []Token, label, line int) (Stmt, error) {
	b := &astBuilder{tokens: tokens}
	stmt, err := b.statement(Pos{Label: label, Line: line})
	if err != nil {
		return nil, err
	}
	if b.pos != len(tokens) {
		return nil, fmt.Errorf("line %d: %d unconsumed token(s)", line, len(tokens)-b.pos)
	}
	return stmt, nil
}
