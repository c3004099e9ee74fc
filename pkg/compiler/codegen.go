package compiler

import (
	"fmt"

	"simplec/pkg/sml"
)

// Instruction is one emitted word before resolution. Addr is its position
// in memory; Line is the physical source line of the statement it belongs
// to.
type Instruction struct {
	Addr int
	Op   sml.Opcode
	Ref  Ref
	Line int
}

func (in Instruction) String() string {
	if in.Ref.Kind == RefNone {
		return fmt.Sprintf("%02d  %s", in.Addr, in.Op)
	}
	return fmt.Sprintf("%02d  %s %s", in.Addr, in.Op, in.Ref)
}

var arithOps = map[TokenType]sml.Opcode{
	PLUS:    sml.OpADD,
	MINUS:   sml.OpSUBTRACT,
	STAR:    sml.OpMULTIPLY,
	SLASH:   sml.OpDIVIDE,
	PERCENT: sml.OpMODULO,
}

// CodeGen walks a folded Program and emits symbolic instructions.
type CodeGen struct {
	syms *SymbolTable
	opt  *Optimizer
	code []Instruction
	line int
}

func newCodeGen(syms *SymbolTable, opt *Optimizer) *CodeGen {
	return &CodeGen{syms: syms, opt: opt}
}

// cursor is the address the next instruction will occupy.
func (cg *CodeGen) cursor() int { return len(cg.code) }

func (cg *CodeGen) emit(op sml.Opcode, ref Ref) {
	cg.code = append(cg.code, Instruction{Addr: cg.cursor(), Op: op, Ref: ref, Line: cg.line})
}

// operand returns the reference for a leaf expression.
func (cg *CodeGen) operand(e Expr) (Ref, error) {
	switch n := e.(type) {
	case *NumberLit:
		return cg.syms.Const(n.Value), nil
	case *VarRef:
		return cg.syms.Var(n.Name), nil
	}
	return Ref{}, fmt.Errorf("line %d: %s is not an operand", cg.line, e)
}

// genExpr leaves the value of e in the accumulator.
func (cg *CodeGen) genExpr(e Expr) error {
	switch n := e.(type) {
	case *NumberLit, *VarRef:
		ref, err := cg.operand(n)
		if err != nil {
			return err
		}
		cg.emit(sml.OpLOAD, ref)
		return nil

	case *NegExpr:
		ref, err := cg.operand(n.Operand)
		if err != nil {
			return err
		}
		cg.emit(sml.OpLOAD, cg.syms.Const(0))
		cg.emit(sml.OpSUBTRACT, ref)
		return nil

	case *BinaryExpr:
		op, ok := arithOps[n.Op]
		if !ok {
			return fmt.Errorf("line %d: unknown operator %s", cg.line, n.Op)
		}
		var right Ref
		if neg, isNeg := n.Right.(*NegExpr); isNeg {
			if err := cg.genExpr(neg); err != nil {
				return err
			}
			right = cg.syms.Temp(TempRight)
			cg.emit(sml.OpSTORE, right)
		} else {
			var err error
			if right, err = cg.operand(n.Right); err != nil {
				return err
			}
		}
		if err := cg.genExpr(n.Left); err != nil {
			return err
		}
		cg.emit(op, right)
		return nil
	}
	return fmt.Errorf("line %d: unsupported expression %T", cg.line, e)
}

func (cg *CodeGen) genIf(n *IfGotoStmt) error {
	left := cg.syms.Temp(TempLeft)
	right := cg.syms.Temp(TempRight)
	if err := cg.genExpr(n.Left); err != nil {
		return err
	}
	cg.emit(sml.OpSTORE, left)
	if err := cg.genExpr(n.Right); err != nil {
		return err
	}
	cg.emit(sml.OpSTORE, right)
	cg.emit(sml.OpLOAD, left)
	cg.emit(sml.OpSUBTRACT, right)

	// accumulator = left - right
	target := cg.syms.Label(n.Target)
	switch n.Op {
	case RelEQ:
		cg.emit(sml.OpBRANCHZERO, target)
	case RelNE:
		skip := Literal(cg.cursor() + 2)
		cg.emit(sml.OpBRANCHZERO, skip)
		cg.emit(sml.OpBRANCH, target)
	case RelLT:
		cg.emit(sml.OpBRANCHNEG, target)
	case RelLE:
		cg.emit(sml.OpBRANCHNEG, target)
		cg.emit(sml.OpBRANCHZERO, target)
	case RelGT:
		skip := Literal(cg.cursor() + 3)
		cg.emit(sml.OpBRANCHNEG, skip)
		cg.emit(sml.OpBRANCHZERO, skip)
		cg.emit(sml.OpBRANCH, target)
	case RelGE:
		skip := Literal(cg.cursor() + 2)
		cg.emit(sml.OpBRANCHNEG, skip)
		cg.emit(sml.OpBRANCH, target)
	default:
		return fmt.Errorf("line %d: unknown relational operator %q", cg.line, n.Op)
	}
	return nil
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {
	case *InputStmt:
		cg.emit(sml.OpREAD, cg.syms.Var(n.Var))

	case *PrintStmt:
		if n.Known != nil && !cg.opt.NeedsStorage(n.Var) {
			tmp := cg.syms.Temp(TempLeft)
			cg.emit(sml.OpLOAD, cg.syms.Const(n.Known.Value))
			cg.emit(sml.OpSTORE, tmp)
			cg.emit(sml.OpWRITE, tmp)
			return nil
		}
		cg.emit(sml.OpWRITE, cg.syms.Var(n.Var))

	case *LetStmt:
		if err := cg.genExpr(n.Value); err != nil {
			return err
		}
		if cg.opt.NeedsStorage(n.Var) {
			cg.emit(sml.OpSTORE, cg.syms.Var(n.Var))
		}

	case *GotoStmt:
		cg.emit(sml.OpBRANCH, cg.syms.Label(n.Target))

	case *IfGotoStmt:
		return cg.genIf(n)

	case *EndStmt:
		cg.emit(sml.OpHALT, Ref{})

	default:
		return fmt.Errorf("line %d: unsupported statement %T", cg.line, s)
	}
	return nil
}

// Generate emits code for every statement in order. Each label is bound to
// the address of the first instruction of its statement.
func Generate(p *Program, opt *Optimizer, syms *SymbolTable) ([]Instruction, error) {
	cg := newCodeGen(syms, opt)
	for _, s := range p.Stmts {
		pos := s.Position()
		cg.line = pos.Line
		syms.DefineLabel(pos.Label, cg.cursor())
		if err := cg.genStmt(s); err != nil {
			return nil, err
		}
	}
	return cg.code, nil
}
