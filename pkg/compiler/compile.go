package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"simplec/pkg/sml"
)

// LevelPhase is the slog level used for pipeline progress messages.
const LevelPhase = slog.LevelDebug

func logPhase(phase string, args ...any) {
	slog.Log(context.Background(), LevelPhase, "simplec: "+phase, args...)
}

// Analyze runs the front end: lexing, grammar checks and AST building per
// line, then the whole-program semantic checks. Every diagnostic found is
// returned together as Diagnostics. Semantic checks only run when every
// line lexed and parsed cleanly.
func Analyze(src string) (*Program, error) {
	lines, diags := SplitSource(src)
	prog := &Program{lines: make(map[int]string)}
	for _, d := range diags {
		prog.lines[d.Line] = d.Text
	}

	for _, ln := range lines {
		prog.lines[ln.Number] = ln.Text
		pos := Pos{Label: ln.Label, Line: ln.Number}
		if ln.Comment {
			prog.Comments = append(prog.Comments, Comment{Pos: pos, Text: strings.TrimSpace(ln.Stmt[len(KwRem):])})
			continue
		}

		tokens, lexErrs := Tokenize(ln.Stmt, ln.Number, ln.StmtCol, ln.Text)
		if len(lexErrs) > 0 {
			diags = append(diags, lexErrs...)
			continue
		}
		if d := Validate(tokens, ln.Number, ln.Text); d != nil {
			diags = append(diags, d)
			continue
		}
		stmt, err := BuildStmt(tokens, ln.Label, ln.Number)
		if err != nil {
			return nil, fmt.Errorf("build line %d: %w", ln.Number, err)
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	logPhase("front end", "lines", len(lines), "stmts", len(prog.Stmts), "comments", len(prog.Comments), "errors", len(diags))

	if len(diags) > 0 {
		diags.sortByPosition()
		return nil, diags
	}
	if diags := Check(prog); len(diags) > 0 {
		logPhase("semantic", "errors", len(diags))
		return nil, diags
	}
	return prog, nil
}

// Cell is one word of the compiled memory image with enough context to
// print it.
type Cell struct {
	Addr    int
	Word    sml.Word
	Line    int    // physical source line, 0 for data
	Source  string // statement text on the first word of a statement
	Operand string // symbolic operand, e.g. "const 5"; for data, the cell's role, e.g. "var a"
}

// Stats summarises memory use.
type Stats struct {
	Instructions int
	Vars         int
	Temps        int
	Consts       int
}

// Total is the number of words the program occupies.
func (s Stats) Total() int { return s.Instructions + s.Vars + s.Temps + s.Consts }

func (s Stats) String() string {
	return fmt.Sprintf("%d instructions, %d var, %d temp, %d const: %d/%d words",
		s.Instructions, s.Vars, s.Temps, s.Consts, s.Total(), sml.MemorySize)
}

// Result is a successful compilation.
type Result struct {
	Program *Program
	Code    []Instruction
	Symbols *SymbolTable
	Usage   []*VarUsage
	Words   []sml.Word
	Cells   []Cell
	Stats   Stats
}

// Compile translates SIMPLE source into an SML memory image. Analysis
// failures come back as Diagnostics; a program that does not fit in memory
// fails with a single allocation *Diagnostic.
func Compile(src string) (*Result, error) {
	prog, err := Analyze(src)
	if err != nil {
		return nil, err
	}
	return CompileProgram(prog)
}

// CompileProgram runs the back end on a program returned by Analyze. The
// program's expressions are folded in place.
func CompileProgram(prog *Program) (*Result, error) {
	opt := Optimize(prog)
	logPhase("optimize", "vars", len(opt.vars))

	syms := NewSymbolTable()
	code, err := Generate(prog, opt, syms)
	if err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	logPhase("codegen", "instructions", len(code))

	if err := syms.Allocate(len(code)); err != nil {
		logPhase("allocate", "error", err)
		return nil, err
	}
	words, err := syms.Resolve(code)
	if err != nil {
		return nil, err
	}

	vars, temps, consts := syms.Counts()
	res := &Result{
		Program: prog,
		Code:    code,
		Symbols: syms,
		Usage:   opt.Usage(),
		Words:   words,
		Stats:   Stats{Instructions: len(code), Vars: vars, Temps: temps, Consts: consts},
	}
	res.Cells = buildCells(prog, code, syms.Data(), words)
	logPhase("done", "words", len(words))
	return res, nil
}

func buildCells(p *Program, code []Instruction, data []DataCell, words []sml.Word) []Cell {
	text := make(map[int]string, len(p.Stmts))
	for _, s := range p.Stmts {
		text[s.Position().Line] = s.String()
	}
	cells := make([]Cell, 0, len(words))
	prev := 0
	for i, in := range code {
		c := Cell{Addr: in.Addr, Word: words[i], Line: in.Line, Operand: in.Ref.String()}
		if in.Line != prev {
			c.Source = text[in.Line]
			prev = in.Line
		}
		cells = append(cells, c)
	}
	for i, d := range data {
		cells = append(cells, Cell{Addr: d.Addr, Word: words[len(code)+i], Operand: d.String()})
	}
	return cells
}

// IsDiagnostic reports whether err carries compiler diagnostics rather than
// an internal failure.
func IsDiagnostic(err error) bool {
	var ds Diagnostics
	var d *Diagnostic
	return errors.As(err, &ds) || errors.As(err, &d)
}
