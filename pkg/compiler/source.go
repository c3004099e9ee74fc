package compiler

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	labelledLine = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)
	commentStmt  = regexp.MustCompile(`^rem(\W|$)`)
)

// SourceLine is one non-blank physical line split into label and statement.
type SourceLine struct {
	Number  int    // 1-based physical line
	Label   int    // leading integer
	Text    string // the whole physical line
	Stmt    string // text after the label
	StmtCol int    // 1-based column where Stmt starts
	Comment bool   // statement is a rem comment
}

// SplitSource breaks src into labelled lines. Blank lines are dropped;
// lines without a usable label produce syntax diagnostics.
func SplitSource(src string) ([]SourceLine, Diagnostics) {
	var lines []SourceLine
	var diags Diagnostics
	for i, raw := range strings.Split(src, "\n") {
		num := i + 1
		text := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		m := labelledLine.FindStringSubmatchIndex(text)
		if m == nil {
			diags = append(diags, newDiag(PhaseSyntax, num, 1, text, "line must start with a label"))
			continue
		}
		label, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			diags = append(diags, newDiag(PhaseSyntax, num, utf8.RuneCountInString(text[:m[2]])+1, text, "label out of range: %s", text[m[2]:m[3]]))
			continue
		}
		stmt := text[m[4]:m[5]]
		lines = append(lines, SourceLine{
			Number:  num,
			Label:   label,
			Text:    text,
			Stmt:    stmt,
			StmtCol: utf8.RuneCountInString(text[:m[4]]) + 1,
			Comment: commentStmt.MatchString(stmt),
		})
	}
	return lines, diags
}
