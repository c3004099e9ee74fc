package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node that produces a value.
// genExpr always leaves the result in the accumulator.
type Expr interface {
	exprNode()
	String() string
}

// NumberLit is a compile-time integer constant.
//
//	let x = 10
//	        ^^  NumberLit{Value: 10}
type NumberLit struct {
	Value int
}

func (*NumberLit) exprNode()        {}
func (n *NumberLit) String() string { return fmt.Sprintf("%d", n.Value) }

// VarRef is a read of a single-letter variable.
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// NegExpr is unary minus applied to a literal or a variable.
//
//	let y = -x
//	        ^^  NegExpr{Operand: VarRef{x}}
type NegExpr struct {
	Operand Expr
}

func (*NegExpr) exprNode()        {}
func (n *NegExpr) String() string { return fmt.Sprintf("(-%s)", n.Operand) }

// BinaryExpr represents Left Op Right. Neither side is itself a BinaryExpr.
//
//	a * 3
//	^ ^ ^
//	| | Right
//	| Op (STAR)
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opSymbol(b.Op), b.Right)
}

func opSymbol(tt TokenType) string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	}
	return tt.String()
}

// RelOp is a relational operator in an if statement.
type RelOp string

const (
	RelEQ RelOp = "=="
	RelNE RelOp = "!="
	RelLT RelOp = "<"
	RelLE RelOp = "<="
	RelGT RelOp = ">"
	RelGE RelOp = ">="
)

//  Statement nodes

// Pos locates a statement: its label and the physical line it came from.
type Pos struct {
	Label int
	Line  int
}

func (p Pos) Position() Pos { return p }

// Stmt is implemented by the six statement kinds.
type Stmt interface {
	stmtNode()
	Position() Pos
	String() string
}

// InputStmt reads the next input word into Var.
type InputStmt struct {
	Pos
	Var string
}

// PrintStmt writes the value of Var. Known is set by the optimizer when the
// value at this point is a compile-time constant.
type PrintStmt struct {
	Pos
	Var   string
	Known *NumberLit
}

// LetStmt assigns Value to Var.
type LetStmt struct {
	Pos
	Var   string
	Value Expr
}

// GotoStmt jumps unconditionally to Target.
type GotoStmt struct {
	Pos
	Target    int
	TargetCol int // column of the target number, for diagnostics
}

// IfGotoStmt jumps to Target when Left Op Right holds.
//
//	if a < 10 goto 50
type IfGotoStmt struct {
	Pos
	Left      Expr
	Op        RelOp
	Right     Expr
	Target    int
	TargetCol int
}

// EndStmt halts the machine.
type EndStmt struct {
	Pos
}

func (*InputStmt) stmtNode()  {}
func (*PrintStmt) stmtNode()  {}
func (*LetStmt) stmtNode()    {}
func (*GotoStmt) stmtNode()   {}
func (*IfGotoStmt) stmtNode() {}
func (*EndStmt) stmtNode()    {}

func (s *InputStmt) String() string { return fmt.Sprintf("%d input %s", s.Label, s.Var) }
func (s *PrintStmt) String() string { return fmt.Sprintf("%d print %s", s.Label, s.Var) }
func (s *LetStmt) String() string   { return fmt.Sprintf("%d let %s = %s", s.Label, s.Var, s.Value) }
func (s *GotoStmt) String() string  { return fmt.Sprintf("%d goto %d", s.Label, s.Target) }
func (s *IfGotoStmt) String() string {
	return fmt.Sprintf("%d if %s %s %s goto %d", s.Label, s.Left, s.Op, s.Right, s.Target)
}
func (s *EndStmt) String() string { return fmt.Sprintf("%d end", s.Label) }

// Comment is a rem line. It owns a label but generates no code.
type Comment struct {
	Pos
	Text string
}

// Program is the analysed source: statements in source order plus the
// comment lines whose labels still take part in ordering checks.
type Program struct {
	Stmts    []Stmt
	Comments []Comment

	lines map[int]string // physical line number -> text, for diagnostics
}

// lineText returns the physical text of line n.
func (p *Program) lineText(n int) string {
	return p.lines[n]
}
