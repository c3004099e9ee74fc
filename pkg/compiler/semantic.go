package compiler

import "sort"

// numbered is any labelled line taking part in label ordering: statements
// and comments alike.
type numbered struct {
	label int
	line  int
}

func (p *Program) numberedLines() []numbered {
	out := make([]numbered, 0, len(p.Stmts)+len(p.Comments))
	for _, s := range p.Stmts {
		pos := s.Position()
		out = append(out, numbered{label: pos.Label, line: pos.Line})
	}
	for _, c := range p.Comments {
		out = append(out, numbered{label: c.Label, line: c.Line})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].line < out[j].line })
	return out
}

// Labels returns the set of statement labels, which are the only valid jump
// targets. Comment labels are excluded.
func (p *Program) Labels() map[int]bool {
	labels := make(map[int]bool, len(p.Stmts))
	for _, s := range p.Stmts {
		labels[s.Position().Label] = true
	}
	return labels
}

// Check runs the whole-program rules and returns every violation found:
// labels strictly increasing, labels unique, jump targets defined, and at
// most one end which must be the final statement.
func Check(p *Program) Diagnostics {
	var diags Diagnostics
	errAt := func(line, col int, format string, args ...any) {
		diags = append(diags, newDiag(PhaseSemantic, line, col, p.lineText(line), format, args...))
	}

	lines := p.numberedLines()
	for i := 1; i < len(lines); i++ {
		if lines[i].label <= lines[i-1].label {
			errAt(lines[i].line, 1, "label %d does not increase after %d", lines[i].label, lines[i-1].label)
		}
	}

	seen := make(map[int]bool, len(lines))
	for _, n := range lines {
		if seen[n.label] {
			errAt(n.line, 1, "duplicate label %d", n.label)
		}
		seen[n.label] = true
	}

	labels := p.Labels()
	for _, s := range p.Stmts {
		switch n := s.(type) {
		case *GotoStmt:
			if !labels[n.Target] {
				errAt(n.Line, n.TargetCol, "goto to undefined label %d", n.Target)
			}
		case *IfGotoStmt:
			if !labels[n.Target] {
				errAt(n.Line, n.TargetCol, "goto to undefined label %d", n.Target)
			}
		}
	}

	var ends []*EndStmt
	for _, s := range p.Stmts {
		if e, ok := s.(*EndStmt); ok {
			ends = append(ends, e)
		}
	}
	if len(ends) > 1 {
		for _, e := range ends {
			errAt(e.Line, 1, "multiple 'end' statements")
		}
	}
	if len(ends) > 0 && p.Stmts[len(p.Stmts)-1] != Stmt(ends[0]) {
		errAt(ends[0].Line, 1, "'end' must be the last statement")
	}

	diags.sortByPosition()
	return diags
}
