package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Phase tags the pipeline stage that produced a Diagnostic.
type Phase string

const (
	PhaseLexical    Phase = "lexical"
	PhaseSyntax     Phase = "syntax"
	PhaseSemantic   Phase = "semantic"
	PhaseAllocation Phase = "allocation"
)

// Diagnostic is a located compile error. Line and Col are 1-based; an
// allocation failure has neither and leaves both at zero.
type Diagnostic struct {
	Phase Phase
	Line  int
	Col   int
	Msg   string
	Text  string // the offending physical source line
}

func (d *Diagnostic) Error() string {
	if d.Line == 0 {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(string(d.Phase)), d.Msg)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] line %d, col %d: %s", strings.ToUpper(string(d.Phase)), d.Line, d.Col, d.Msg)
	if d.Text != "" {
		col := d.Col
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(&b, "\n  %s\n  %s^", d.Text, strings.Repeat(" ", col-1))
	}
	return b.String()
}

func newDiag(phase Phase, line, col int, text, format string, args ...any) *Diagnostic {
	return &Diagnostic{Phase: phase, Line: line, Col: col, Msg: fmt.Sprintf(format, args...), Text: text}
}

// Diagnostics is the full set of errors collected by the analysis phases.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Error()
	}
	return fmt.Sprintf("%d error(s):\n%s", len(ds), strings.Join(parts, "\n"))
}

// sortByPosition orders diagnostics by line, then column. Ties keep the order
// in which they were found.
func (ds Diagnostics) sortByPosition() {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Line != ds[j].Line {
			return ds[i].Line < ds[j].Line
		}
		return ds[i].Col < ds[j].Col
	})
}

// Count returns how many diagnostics carry the given phase.
func (ds Diagnostics) Count(phase Phase) int {
	n := 0
	for _, d := range ds {
		if d.Phase == phase {
			n++
		}
	}
	return n
}
