// Package simpletron emulates the Simpletron: a 100-word decimal machine
// with one accumulator, executing SML words.
package simpletron

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"simplec/pkg/sml"
)

// Keyboard supplies one line of text per READ.
type Keyboard interface {
	ReadLine(prompt string) (string, error)
}

// Printer receives the word of every WRITE.
type Printer interface {
	Print(w sml.Word) error
}

var (
	ErrOverflow      = errors.New("accumulator overflow")
	ErrDivideByZero  = errors.New("attempt to divide by zero")
	ErrUnknownOpcode = errors.New("unknown operation code")
	ErrAddress       = errors.New("instruction counter outside memory")
	ErrStepLimit     = errors.New("step limit reached")
	ErrNoDevice      = errors.New("no device attached")
)

// MachineError reports a fatal execution fault at instruction IC.
type MachineError struct {
	IC   int
	Word sml.Word
	Err  error
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("simpletron: %v at %02d (%s)", e.Err, e.IC, e.Word)
}

func (e *MachineError) Unwrap() error { return e.Err }

// DefaultPrompt is shown when the machine asks for input.
const DefaultPrompt = "? "

// Machine is the complete processor state.
type Machine struct {
	Memory      [sml.MemorySize]sml.Word
	Accumulator sml.Word
	IC          int      // instruction counter
	IR          sml.Word // instruction register
	Opcode      sml.Opcode
	Operand     int

	Halted bool
	Steps  int

	// MaxSteps stops Run after that many instructions. Zero means no limit.
	MaxSteps int

	Keyboard Keyboard
	Printer  Printer
	Prompt   string
}

func NewMachine(kb Keyboard, pr Printer) *Machine {
	return &Machine{Keyboard: kb, Printer: pr, Prompt: DefaultPrompt}
}

// Reset clears memory and registers. Attached devices are kept.
func (m *Machine) Reset() {
	m.Memory = [sml.MemorySize]sml.Word{}
	m.Accumulator = 0
	m.IC = 0
	m.IR = 0
	m.Opcode = 0
	m.Operand = 0
	m.Halted = false
	m.Steps = 0
}

// Load resets the machine and copies words into memory from address 0.
func (m *Machine) Load(words []sml.Word) error {
	if len(words) > sml.MemorySize {
		return fmt.Errorf("program of %d words does not fit in %d", len(words), sml.MemorySize)
	}
	m.Reset()
	for i, w := range words {
		if !w.InRange() {
			return fmt.Errorf("word %d at %02d outside %d..%d", int(w), i, sml.MinWord, sml.MaxWord)
		}
		m.Memory[i] = w
	}
	return nil
}

func (m *Machine) fault(err error) error {
	m.Halted = true
	return &MachineError{IC: m.IC, Word: m.IR, Err: err}
}

func (m *Machine) setAccumulator(v int) error {
	if v < sml.MinWord || v > sml.MaxWord {
		return m.fault(fmt.Errorf("%w: %d", ErrOverflow, v))
	}
	m.Accumulator = sml.Word(v)
	return nil
}

// readWord prompts until the keyboard yields an integer that fits a word.
func (m *Machine) readWord() (sml.Word, error) {
	if m.Keyboard == nil {
		return 0, ErrNoDevice
	}
	for {
		line, err := m.Keyboard.ReadLine(m.Prompt)
		if err != nil {
			return 0, err
		}
		text := strings.TrimSpace(line)
		v, err := strconv.Atoi(text)
		if err != nil || v < sml.MinWord || v > sml.MaxWord {
			slog.Warn("simpletron: rejected input", "text", text, "min", sml.MinWord, "max", sml.MaxWord)
			continue
		}
		return sml.Word(v), nil
	}
}

// Step fetches, decodes and executes one instruction. It does nothing once
// the machine has halted.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.IC < 0 || m.IC >= sml.MemorySize {
		return m.fault(ErrAddress)
	}

	m.IR = m.Memory[m.IC]
	m.Opcode, m.Operand = m.IR.Decode()
	if m.IR < 0 || !m.Opcode.Valid() {
		return m.fault(ErrUnknownOpcode)
	}
	m.Steps++

	acc := int(m.Accumulator)
	val := int(m.Memory[m.Operand])
	next := m.IC + 1

	switch m.Opcode {
	case sml.OpREAD:
		w, err := m.readWord()
		if err != nil {
			return m.fault(fmt.Errorf("read: %w", err))
		}
		m.Memory[m.Operand] = w

	case sml.OpWRITE:
		if m.Printer == nil {
			return m.fault(fmt.Errorf("write: %w", ErrNoDevice))
		}
		if err := m.Printer.Print(m.Memory[m.Operand]); err != nil {
			return m.fault(fmt.Errorf("write: %w", err))
		}

	case sml.OpLOAD:
		m.Accumulator = m.Memory[m.Operand]

	case sml.OpSTORE:
		m.Memory[m.Operand] = m.Accumulator

	case sml.OpADD:
		if err := m.setAccumulator(acc + val); err != nil {
			return err
		}

	case sml.OpSUBTRACT:
		if err := m.setAccumulator(acc - val); err != nil {
			return err
		}

	case sml.OpMULTIPLY:
		if err := m.setAccumulator(acc * val); err != nil {
			return err
		}

	case sml.OpDIVIDE, sml.OpMODULO:
		if val == 0 {
			return m.fault(ErrDivideByZero)
		}
		if m.Opcode == sml.OpDIVIDE {
			m.Accumulator = sml.Word(acc / val)
		} else {
			m.Accumulator = sml.Word(acc % val)
		}

	case sml.OpBRANCH:
		next = m.Operand

	case sml.OpBRANCHNEG:
		if acc < 0 {
			next = m.Operand
		}

	case sml.OpBRANCHZERO:
		if acc == 0 {
			next = m.Operand
		}

	case sml.OpHALT:
		m.Halted = true
		return nil
	}

	if m.Opcode.IsBranch() && next == m.Operand {
		slog.Debug("simpletron: branch", "from", m.IC, "to", next)
	}
	m.IC = next
	return nil
}

// Run executes until HALT or a fault.
func (m *Machine) Run() error {
	for !m.Halted {
		if m.MaxSteps > 0 && m.Steps >= m.MaxSteps {
			return m.fault(ErrStepLimit)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	slog.Debug("simpletron: halted", "ic", m.IC, "steps", m.Steps)
	return nil
}
