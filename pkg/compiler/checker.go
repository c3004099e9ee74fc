package compiler

// Grammar checked by Validate, one statement per line:
//
//	statement = "input" NAME
//	          | "print" NAME
//	          | "goto" NUMBER
//	          | "end"
//	          | "let" NAME "=" expr
//	          | "if" expr RELOP expr "goto" NUMBER
//	expr      = operand ( ("+" | "-" | "*" | "/" | "%") operand )?
//	operand   = NUMBER | NAME | "-" ( NUMBER | NAME )
//
// An expression holds at most one binary operator.

// stopSet is the set of token types that legitimately end an expression.
type stopSet map[TokenType]bool

type checker struct {
	tokens []Token
	line   int
	text   string
}

// errAt builds a syntax diagnostic at token i, or just past the last token
// when i is out of range.
func (c *checker) errAt(i int, format string, args ...any) *Diagnostic {
	return newDiag(PhaseSyntax, c.line, c.colAt(i), c.text, format, args...)
}

func (c *checker) colAt(i int) int {
	if i < len(c.tokens) {
		return c.tokens[i].Col
	}
	if len(c.tokens) == 0 {
		return 1
	}
	last := c.tokens[len(c.tokens)-1]
	return last.Col + len([]rune(last.Lexeme))
}

func (c *checker) operand(p int) (int, *Diagnostic) {
	if p >= len(c.tokens) {
		return p, c.errAt(p, "operand expected")
	}
	t := c.tokens[p]
	switch t.Type {
	case NUMBER, NAME:
		return p + 1, nil
	case MINUS:
		if p+1 >= len(c.tokens) || (c.tokens[p+1].Type != NUMBER && c.tokens[p+1].Type != NAME) {
			return p + 1, c.errAt(p+1, "operand expected after '-'")
		}
		return p + 2, nil
	}
	return p, c.errAt(p, "invalid operand: %s", t.describe())
}

// parseExpr validates one expression starting at pos and returns the index
// of the first token after it.
func (c *checker) parseExpr(pos int, stop stopSet) (int, *Diagnostic) {
	p, err := c.operand(pos)
	if err != nil {
		return p, err
	}
	if p >= len(c.tokens) || stop[c.tokens[p].Type] || !c.tokens[p].Type.isArith() {
		return p, nil
	}
	p, err = c.operand(p + 1)
	if err != nil {
		return p, err
	}
	if p < len(c.tokens) && !stop[c.tokens[p].Type] {
		if c.tokens[p].Type.isArith() {
			return p, c.errAt(p, "only one operation allowed, found %s", c.tokens[p].describe())
		}
		return p, c.errAt(p, "unexpected %s after expression", c.tokens[p].describe())
	}
	return p, nil
}

func (c *checker) statement() *Diagnostic {
	if len(c.tokens) == 0 {
		return c.errAt(0, "empty statement")
	}
	kw := c.tokens[0]
	if kw.Type != KEYWORD {
		return c.errAt(0, "expected a command, found %s", kw.describe())
	}
	n := len(c.tokens)

	switch kw.Lexeme {
	case KwInput, KwPrint:
		if n < 2 || c.tokens[1].Type != NAME {
			return c.errAt(1, "'%s' requires a variable", kw.Lexeme)
		}
		if n > 2 {
			return c.errAt(2, "unexpected %s after '%s %s'", c.tokens[2].describe(), kw.Lexeme, c.tokens[1].Lexeme)
		}

	case KwGoto:
		if n < 2 || c.tokens[1].Type != NUMBER {
			return c.errAt(1, "'goto' requires a line number")
		}
		if n > 2 {
			return c.errAt(2, "unexpected %s after 'goto %s'", c.tokens[2].describe(), c.tokens[1].Lexeme)
		}

	case KwEnd:
		if n != 1 {
			return c.errAt(1, "'end' takes no arguments")
		}

	case KwLet:
		if n < 2 || c.tokens[1].Type != NAME {
			return c.errAt(1, "format: let <var> = <expr>")
		}
		if n < 3 || c.tokens[2].Type != ASSIGN {
			return c.errAt(2, "'=' expected after 'let %s'", c.tokens[1].Lexeme)
		}
		p, err := c.parseExpr(3, nil)
		if err != nil {
			return err
		}
		if p != n {
			return c.errAt(p, "invalid expression")
		}

	case KwIf:
		p, err := c.parseExpr(1, stopSet{RELOP: true})
		if err != nil {
			return err
		}
		if p >= n || c.tokens[p].Type != RELOP {
			return c.errAt(p, "relational operator expected")
		}
		p, err = c.parseExpr(p+1, stopSet{KEYWORD: true})
		if err != nil {
			return err
		}
		if p >= n || !c.tokens[p].is(KwGoto) {
			return c.errAt(p, "'goto' expected")
		}
		if p+1 >= n || c.tokens[p+1].Type != NUMBER {
			return c.errAt(p+1, "line number expected after 'goto'")
		}
		if p+2 != n {
			return c.errAt(p+2, "unexpected %s after line number", c.tokens[p+2].describe())
		}

	case KwRem:
		return c.errAt(0, "'rem' must be separated from the comment text")

	default:
		return c.errAt(0, "unknown command %s", kw.describe())
	}
	return nil
}

// Validate checks that tokens form one of the six statement shapes. It
// returns nil for a valid statement.
func Validate(tokens []Token, line int, lineText string) *Diagnostic {
	c := &checker{tokens: tokens, line: line, text: lineText}
	return c.statement()
}
