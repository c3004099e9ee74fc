// Package sml describes the Simpletron Machine Language: the opcode set,
// the signed four-digit word format, and the one-word-per-line text form
// a compiled program is stored in.
package sml

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode is the high part of an instruction word (word / 100).
type Opcode int

const (
	OpREAD       Opcode = 10
	OpWRITE      Opcode = 11
	OpLOAD       Opcode = 20
	OpSTORE      Opcode = 21
	OpADD        Opcode = 30
	OpSUBTRACT   Opcode = 31
	OpDIVIDE     Opcode = 32
	OpMULTIPLY   Opcode = 33
	OpMODULO     Opcode = 34
	OpBRANCH     Opcode = 40
	OpBRANCHNEG  Opcode = 41
	OpBRANCHZERO Opcode = 42
	OpHALT       Opcode = 43
)

const (
	MemorySize = 100   // addressable words
	MaxWord    = 9999  // largest value a word can hold
	MinWord    = -9999 // smallest value a word can hold
)

var opcodeNames = map[Opcode]string{
	OpREAD:       "READ",
	OpWRITE:      "WRITE",
	OpLOAD:       "LOAD",
	OpSTORE:      "STORE",
	OpADD:        "ADD",
	OpSUBTRACT:   "SUBTRACT",
	OpDIVIDE:     "DIVIDE",
	OpMULTIPLY:   "MULTIPLY",
	OpMODULO:     "MODULO",
	OpBRANCH:     "BRANCH",
	OpBRANCHNEG:  "BRANCHNEG",
	OpBRANCHZERO: "BRANCHZERO",
	OpHALT:       "HALT",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Valid reports whether op belongs to the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// IsBranch reports whether op transfers control to its operand.
func (op Opcode) IsBranch() bool {
	return op == OpBRANCH || op == OpBRANCHNEG || op == OpBRANCHZERO
}

// LookupOpcode maps a mnemonic (case-insensitive) to its opcode.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	m := strings.ToUpper(mnemonic)
	for op, name := range opcodeNames {
		if name == m {
			return op, true
		}
	}
	return 0, false
}

// Word is one memory cell: an instruction or a data value.
type Word int

// Encode builds the instruction word opcode*100 + addr.
func Encode(op Opcode, addr int) (Word, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("unknown opcode %d", int(op))
	}
	if addr < 0 || addr >= MemorySize {
		return 0, fmt.Errorf("operand %d outside memory (0-%d)", addr, MemorySize-1)
	}
	return Word(int(op)*100 + addr), nil
}

// Decode splits w into its opcode and operand address.
func (w Word) Decode() (Opcode, int) {
	return Opcode(int(w) / 100), int(w) % 100
}

// InRange reports whether w fits the signed four-digit format.
func (w Word) InRange() bool {
	return w >= MinWord && w <= MaxWord
}

// String renders w with an explicit sign and four digits, e.g. +2007, -0005.
func (w Word) String() string {
	v := int(w)
	sign := '+'
	if v < 0 {
		sign = '-'
		v = -v
	}
	return fmt.Sprintf("%c%04d", sign, v)
}

// ParseWord accepts "+2007", "-0005" or a bare integer.
func ParseWord(s string) (Word, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid word %q", s)
	}
	w := Word(v)
	if !w.InRange() {
		return 0, fmt.Errorf("word %q outside %d..%d", s, MinWord, MaxWord)
	}
	return w, nil
}
