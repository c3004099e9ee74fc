package peripherals

import (
	"fmt"
	"io"

	"simplec/pkg/sml"
)

// Printer writes each WRITE word on its own line, e.g. "output: +0005".
type Printer struct {
	w      io.Writer
	Prefix string

	// Printed keeps every word in output order.
	Printed []sml.Word
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, Prefix: "output: "}
}

func (p *Printer) Print(w sml.Word) error {
	p.Printed = append(p.Printed, w)
	if p.w == nil {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "%s%s\n", p.Prefix, w)
	return err
}
