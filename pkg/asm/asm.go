// Package asm translates SML mnemonic text to words and back.
//
//	loop: LOAD n      ; comment
//	      BRANCHZERO done
//	done: HALT
//	n:    DATA 5
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"simplec/pkg/sml"
)

// Assembler resolves labels in a first pass and encodes in a second.
type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]int)}
}

// Assemble encodes code and returns the words plus a map from address to
// source line.
func Assemble(code string) ([]sml.Word, map[int]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]sml.Word, map[int]int, error) {
	lines := strings.Split(code, "\n")
	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}
	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := 0
	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}
		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = address
		}
		if p.mnemonic == "" {
			continue
		}
		if p.mnemonic != "DATA" {
			if _, ok := sml.LookupOpcode(p.mnemonic); !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
		}
		address++
		if address > sml.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []string) ([]sml.Word, map[int]int, error) {
	var program []sml.Word
	sourceMap := make(map[int]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}
		if p.mnemonic == "" {
			continue
		}
		sourceMap[len(program)] = lineNo

		if p.mnemonic == "DATA" {
			if len(p.operands) != 1 {
				return nil, nil, fmt.Errorf("DATA expects exactly one operand on line %d", lineNo)
			}
			w, err := sml.ParseWord(p.operands[0])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			program = append(program, w)
			continue
		}

		op, _ := sml.LookupOpcode(p.mnemonic)
		addr := 0
		switch len(p.operands) {
		case 0:
			if op != sml.OpHALT {
				return nil, nil, fmt.Errorf("%s expects an operand on line %d", op, lineNo)
			}
		case 1:
			addr, err = a.resolveOperand(p.operands[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("%s expects one operand on line %d", op, lineNo)
		}

		w, err := sml.Encode(op, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		program = append(program, w)
	}
	return program, sourceMap, nil
}

func (a *Assembler) resolveOperand(s string, lineNo int) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	if !isIdentifier(s) {
		return 0, fmt.Errorf("invalid operand '%s' on line %d", s, lineNo)
	}
	addr, ok := a.labels[normalizeLabel(s)]
	if !ok {
		return 0, fmt.Errorf("undefined label '%s' on line %d", s, lineNo)
	}
	return addr, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	for {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			break
		}
		label := strings.TrimSpace(line[:colon])
		if !isIdentifier(label) {
			return p, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		p.labels = append(p.labels, label)
		line = strings.TrimSpace(line[colon+1:])
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}
	p.mnemonic = strings.ToUpper(fields[0])
	p.operands = fields[1:]
	return p, nil
}

func stripComments(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}

// DisassembleWord renders w as "LOAD 07", or as "DATA +0005" when it is not
// an instruction.
func DisassembleWord(w sml.Word) string {
	op, addr := w.Decode()
	if w < 0 || !op.Valid() {
		return "DATA " + w.String()
	}
	if op == sml.OpHALT {
		return op.String()
	}
	return fmt.Sprintf("%s %02d", op, addr)
}

// Disassemble renders words one per line with their addresses.
func Disassemble(words []sml.Word) string {
	var b strings.Builder
	for i, w := range words {
		fmt.Fprintf(&b, "%02d  %s  %s\n", i, w, DisassembleWord(w))
	}
	return b.String()
}
