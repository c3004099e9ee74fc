package compiler

import (
	"fmt"
	"math"
	"sort"
)

// VarUsage describes how one variable is defined and read across the
// program. Statement positions are indices into Program.Stmts.
type VarUsage struct {
	Name    string
	Defs    []int // let and input statements assigning the variable
	Reads   []int // statements reading the variable, each listed once
	Input   bool  // assigned by some input statement
	Const   bool  // every read site saw a compile-time value
	Storage bool  // the variable needs a memory cell
}

// Adjacent reports whether the variable's only read is the statement right
// after its only definition.
func (u *VarUsage) Adjacent() bool {
	return len(u.Defs) == 1 && len(u.Reads) == 1 && u.Reads[0] == u.Defs[0]+1
}

func (u *VarUsage) String() string {
	return fmt.Sprintf("%s: defs=%v reads=%v input=%t const=%t storage=%t",
		u.Name, u.Defs, u.Reads, u.Input, u.Const, u.Storage)
}

// Optimizer folds constant expressions in place and decides which variables
// need a memory cell.
type Optimizer struct {
	prog    *Program
	targets map[int]bool // labels some goto or if jumps to
	vars    map[string]*VarUsage
}

func NewOptimizer(p *Program) *Optimizer {
	o := &Optimizer{prog: p, targets: make(map[int]bool), vars: make(map[string]*VarUsage)}
	for _, s := range p.Stmts {
		switch n := s.(type) {
		case *GotoStmt:
			o.targets[n.Target] = true
		case *IfGotoStmt:
			o.targets[n.Target] = true
		}
	}
	return o
}

func (o *Optimizer) usage(name string) *VarUsage {
	u, ok := o.vars[name]
	if !ok {
		u = &VarUsage{Name: name, Const: true}
		o.vars[name] = u
	}
	return u
}

// read records a read of name at statement i and whether its value was
// known there.
func (o *Optimizer) read(name string, i int, known bool) {
	u := o.usage(name)
	if n := len(u.Reads); n == 0 || u.Reads[n-1] != i {
		u.Reads = append(u.Reads, i)
	}
	if !known {
		u.Const = false
	}
}

func (o *Optimizer) def(name string, i int) {
	u := o.usage(name)
	u.Defs = append(u.Defs, i)
}

// Run folds every expression and computes storage needs. Constant values
// flow forward through straight-line code only: the environment is cleared
// at each jump target, and a variable that was ever the target of input
// is never treated as constant again.
func (o *Optimizer) Run() {
	env := make(map[string]int)
	inputSeen := make(map[string]bool)

	for i, s := range o.prog.Stmts {
		if o.targets[s.Position().Label] {
			clear(env)
		}
		fold := func(e Expr) Expr {
			return foldExpr(e, env, func(name string, known bool) { o.read(name, i, known) })
		}

		switch n := s.(type) {
		case *InputStmt:
			o.def(n.Var, i)
			o.usage(n.Var).Input = true
			inputSeen[n.Var] = true
			delete(env, n.Var)

		case *PrintStmt:
			v, known := env[n.Var]
			o.read(n.Var, i, known)
			n.Known = nil
			if known {
				n.Known = &NumberLit{Value: v}
			}

		case *LetStmt:
			n.Value = fold(n.Value)
			o.def(n.Var, i)
			if lit, ok := n.Value.(*NumberLit); ok && !inputSeen[n.Var] {
				env[n.Var] = lit.Value
			} else {
				delete(env, n.Var)
			}

		case *IfGotoStmt:
			n.Left = fold(n.Left)
			n.Right = fold(n.Right)

		case *GotoStmt, *EndStmt:
			// Nothing to fold.
		}
	}

	for _, u := range o.vars {
		u.Storage = needsStorage(u)
	}
}

func needsStorage(u *VarUsage) bool {
	switch {
	case u.Input:
		return true
	case len(u.Reads) == 0:
		return false
	case !u.Adjacent():
		return true
	default:
		return !u.Const
	}
}

// NeedsStorage reports whether name must occupy a memory cell.
func (o *Optimizer) NeedsStorage(name string) bool {
	u, ok := o.vars[name]
	return ok && u.Storage
}

// Usage returns the analysis for every variable mentioned, by name.
func (o *Optimizer) Usage() []*VarUsage {
	out := make([]*VarUsage, 0, len(o.vars))
	for _, u := range o.vars {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Optimize folds p in place and returns the finished analysis.
func Optimize(p *Program) *Optimizer {
	o := NewOptimizer(p)
	o.Run()
	return o
}

// Fold evaluates constant subtrees of e. Variables found in env are replaced
// by their values. Folding an already folded expression returns it as is.
func Fold(e Expr, env map[string]int) Expr {
	return foldExpr(e, env, nil)
}

func foldExpr(e Expr, env map[string]int, onRead func(name string, known bool)) Expr {
	switch n := e.(type) {
	case *NumberLit:
		return n
	case *VarRef:
		v, ok := env[n.Name]
		if onRead != nil {
			onRead(n.Name, ok)
		}
		if ok {
			return &NumberLit{Value: v}
		}
		return n
	case *NegExpr:
		n.Operand = foldExpr(n.Operand, env, onRead)
		if lit, ok := n.Operand.(*NumberLit); ok && lit.Value != math.MinInt {
			return &NumberLit{Value: -lit.Value}
		}
		return n
	case *BinaryExpr:
		n.Left = foldExpr(n.Left, env, onRead)
		n.Right = foldExpr(n.Right, env, onRead)
		l, lok := n.Left.(*NumberLit)
		r, rok := n.Right.(*NumberLit)
		if lok && rok {
			if v, ok := evalBinary(n.Op, l.Value, r.Value); ok {
				return &NumberLit{Value: v}
			}
		}
		return n
	}
	return e
}

// evalBinary computes a op b the way the machine does: division truncates
// toward zero and the remainder takes the dividend's sign. Division and
// modulo by zero yield 0. ok is false when the result does not fit in an
// int, in which case the expression is left unfolded.
func evalBinary(op TokenType, a, b int) (v int, ok bool) {
	switch op {
	case PLUS:
		if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
			return 0, false
		}
		return a + b, true
	case MINUS:
		if (b < 0 && a > math.MaxInt+b) || (b > 0 && a < math.MinInt+b) {
			return 0, false
		}
		return a - b, true
	case STAR:
		if a == 0 || b == 0 {
			return 0, true
		}
		c := a * b
		if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
			return 0, false
		}
		return c, true
	case SLASH:
		if b == 0 {
			return 0, true
		}
		if a == math.MinInt && b == -1 {
			return 0, false
		}
		return a / b, true
	case PERCENT:
		if b == 0 {
			return 0, true
		}
		return a % b, true
	}
	return 0, false
}
