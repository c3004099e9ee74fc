package simpletron

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Dump writes the registers and a 10x10 memory grid to w.
func (m *Machine) Dump(w io.Writer) error {
	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"Register", "Value"})
	regTable.AppendRows([]table.Row{
		{"accumulator", m.Accumulator.String()},
		{"instructionCounter", fmt.Sprintf("%02d", m.IC)},
		{"instructionRegister", m.IR.String()},
		{"operationCode", fmt.Sprintf("%02d", int(m.Opcode))},
		{"operand", fmt.Sprintf("%02d", m.Operand)},
	})
	if _, err := fmt.Fprintln(w, regTable.Render()); err != nil {
		return err
	}

	memTable := table.NewWriter()
	memTable.SetTitle("Memory")
	header := table.Row{""}
	for col := 0; col < 10; col++ {
		header = append(header, col)
	}
	memTable.AppendHeader(header)
	for row := 0; row < len(m.Memory); row += 10 {
		r := table.Row{row}
		for col := 0; col < 10; col++ {
			r = append(r, m.Memory[row+col].String())
		}
		memTable.AppendRow(r)
	}
	_, err := fmt.Fprintln(w, memTable.Render())
	return err
}
