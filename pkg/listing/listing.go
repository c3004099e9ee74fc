// Package listing renders a compiled program as a table of memory cells.
package listing

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"simplec/pkg/asm"
	"simplec/pkg/compiler"
)

// Table builds the listing of res: one row per memory word, code then
// data.
func Table(res *compiler.Result) table.Writer {
	t := table.NewWriter()
	t.SetTitle("SML program")
	t.AppendHeader(table.Row{"Addr", "Word", "Instruction", "Operand", "Source"})
	for _, c := range res.Cells {
		src := c.Source
		if c.Line == 0 {
			src = ""
		}
		t.AppendRow(table.Row{fmt.Sprintf("%02d", c.Addr), c.Word.String(), asm.DisassembleWord(c.Word), c.Operand, src})
	}
	return t
}

// Write renders the listing of res to w followed by a memory summary.
func Write(w io.Writer, res *compiler.Result) error {
	if _, err := fmt.Fprintln(w, Table(res).Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, res.Stats)
	return err
}

// Usage renders the optimizer's per-variable decisions.
func Usage(w io.Writer, res *compiler.Result) error {
	t := table.NewWriter()
	t.SetTitle("Variables")
	t.AppendHeader(table.Row{"Name", "Defs", "Reads", "Input", "Constant", "Adjacent", "Storage"})
	for _, u := range res.Usage {
		t.AppendRow(table.Row{u.Name, len(u.Defs), len(u.Reads), u.Input, u.Const, u.Adjacent(), u.Storage})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
