package compiler

import (
	"fmt"
	"sort"
	"strings"

	"simplec/pkg/sml"
)

// RefKind tags what an instruction operand refers to before addresses are
// known.
type RefKind int

const (
	RefNone    RefKind = iota // operand unused (HALT)
	RefLiteral                // address already known, e.g. a fallthrough branch
	RefVar
	RefConst
	RefTemp
	RefLabel
)

// TempSlot names one of the two scratch cells shared by all statements.
type TempSlot int

const (
	TempLeft TempSlot = iota
	TempRight
)

func (t TempSlot) String() string {
	if t == TempLeft {
		return "left"
	}
	return "right"
}

// Ref is a symbolic operand. Name is set for RefVar; Value holds the literal
// address, constant value, temp slot or label for the other kinds.
type Ref struct {
	Kind  RefKind
	Name  string
	Value int
}

func (r Ref) String() string {
	switch r.Kind {
	case RefLiteral:
		return fmt.Sprintf("%02d", r.Value)
	case RefVar:
		return r.Name
	case RefConst:
		return fmt.Sprintf("const %d", r.Value)
	case RefTemp:
		return "temp " + TempSlot(r.Value).String()
	case RefLabel:
		return fmt.Sprintf("line %d", r.Value)
	}
	return ""
}

// Literal makes an operand whose address is fixed at emission time.
func Literal(addr int) Ref { return Ref{Kind: RefLiteral, Value: addr} }

// DataCell is one allocated data word that follows the code.
type DataCell struct {
	Addr  int
	Kind  RefKind // RefVar, RefTemp or RefConst
	Name  string
	Value int // initial contents: 0 for vars and temps, the literal for consts
}

func (d DataCell) String() string {
	switch d.Kind {
	case RefVar:
		return "var " + d.Name
	case RefTemp:
		return "temp " + TempSlot(d.Value).String()
	}
	return fmt.Sprintf("const %d", d.Value)
}

// SymbolTable collects every variable, temporary, constant and label the
// code generator references, then assigns them addresses in one pass.
// After Allocate the table is frozen.
type SymbolTable struct {
	vars   map[string]int
	consts map[int]int
	temps  []TempSlot // discovery order
	labels map[int]int

	tempAddr map[TempSlot]int
	data     []DataCell
	codeLen  int
	frozen   bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		vars:     make(map[string]int),
		consts:   make(map[int]int),
		labels:   make(map[int]int),
		tempAddr: make(map[TempSlot]int),
	}
}

func (s *SymbolTable) mustBeOpen() {
	if s.frozen {
		panic("symbol table modified after Allocate")
	}
}

// Var records a reference to variable name.
func (s *SymbolTable) Var(name string) Ref {
	if _, ok := s.vars[name]; !ok {
		s.mustBeOpen()
		s.vars[name] = -1
	}
	return Ref{Kind: RefVar, Name: name}
}

// Const records a reference to the cell holding value v. Equal values share
// one cell.
func (s *SymbolTable) Const(v int) Ref {
	if _, ok := s.consts[v]; !ok {
		s.mustBeOpen()
		s.consts[v] = -1
	}
	return Ref{Kind: RefConst, Value: v}
}

// Temp records a reference to a scratch slot.
func (s *SymbolTable) Temp(slot TempSlot) Ref {
	for _, t := range s.temps {
		if t == slot {
			return Ref{Kind: RefTemp, Value: int(slot)}
		}
	}
	s.mustBeOpen()
	s.temps = append(s.temps, slot)
	return Ref{Kind: RefTemp, Value: int(slot)}
}

// Label references the first instruction of the statement labelled n.
func (s *SymbolTable) Label(n int) Ref {
	return Ref{Kind: RefLabel, Value: n}
}

// DefineLabel records that statement label n starts at addr.
func (s *SymbolTable) DefineLabel(n, addr int) {
	s.mustBeOpen()
	s.labels[n] = addr
}

// LabelAddr returns the instruction address of label n.
func (s *SymbolTable) LabelAddr(n int) (int, bool) {
	addr, ok := s.labels[n]
	return addr, ok
}

// Allocate places data after codeLen instructions: variables in name order,
// then temporaries in discovery order, then distinct constants in ascending
// order. It fails when the image would exceed memory or a constant does not
// fit in a word. The table is frozen either way.
func (s *SymbolTable) Allocate(codeLen int) error {
	s.mustBeOpen()
	s.frozen = true
	s.codeLen = codeLen

	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]int, 0, len(s.consts))
	for v := range s.consts {
		values = append(values, v)
	}
	sort.Ints(values)

	next := codeLen
	for _, name := range names {
		s.vars[name] = next
		s.data = append(s.data, DataCell{Addr: next, Kind: RefVar, Name: name})
		next++
	}
	for _, t := range s.temps {
		s.tempAddr[t] = next
		s.data = append(s.data, DataCell{Addr: next, Kind: RefTemp, Value: int(t)})
		next++
	}
	for _, v := range values {
		s.consts[v] = next
		s.data = append(s.data, DataCell{Addr: next, Kind: RefConst, Value: v})
		next++
	}

	if next > sml.MemorySize {
		return newDiag(PhaseAllocation, 0, 0, "",
			"memory overflow: program needs %d words (%d code, %d var, %d temp, %d const), only %d available",
			next, codeLen, len(names), len(s.temps), len(values), sml.MemorySize)
	}
	for _, v := range values {
		if v < sml.MinWord || v > sml.MaxWord {
			return newDiag(PhaseAllocation, 0, 0, "", "constant %d does not fit in a word", v)
		}
	}
	return nil
}

// Addr returns the resolved address of r.
func (s *SymbolTable) Addr(r Ref) (int, error) {
	if !s.frozen {
		return 0, fmt.Errorf("symbol table not allocated")
	}
	var addr int
	var ok bool
	switch r.Kind {
	case RefNone:
		return 0, nil
	case RefLiteral:
		return r.Value, nil
	case RefVar:
		addr, ok = s.vars[r.Name]
	case RefConst:
		addr, ok = s.consts[r.Value]
	case RefTemp:
		addr, ok = s.tempAddr[TempSlot(r.Value)]
	case RefLabel:
		addr, ok = s.labels[r.Value]
	}
	if !ok {
		return 0, fmt.Errorf("unresolved operand %s", r)
	}
	return addr, nil
}

// Resolve turns code into the final memory image: one word per instruction
// followed by the data cells. It reads the frozen table and changes nothing.
func (s *SymbolTable) Resolve(code []Instruction) ([]sml.Word, error) {
	if !s.frozen {
		return nil, fmt.Errorf("resolve before allocate")
	}
	if len(code) != s.codeLen {
		return nil, fmt.Errorf("resolve: %d instructions, allocated for %d", len(code), s.codeLen)
	}
	words := make([]sml.Word, 0, len(code)+len(s.data))
	for _, in := range code {
		addr, err := s.Addr(in.Ref)
		if err != nil {
			return nil, fmt.Errorf("address %02d: %w", in.Addr, err)
		}
		if addr < 0 || addr >= sml.MemorySize {
			return nil, newDiag(PhaseAllocation, 0, 0, "",
				"operand %d of instruction %02d (%s) is outside memory", addr, in.Addr, in.Op)
		}
		w, err := sml.Encode(in.Op, addr)
		if err != nil {
			return nil, fmt.Errorf("address %02d: %w", in.Addr, err)
		}
		words = append(words, w)
	}
	for _, d := range s.data {
		v := d.Value
		if d.Kind != RefConst {
			v = 0
		}
		words = append(words, sml.Word(v))
	}
	return words, nil
}

// Data returns the allocated data cells in address order.
func (s *SymbolTable) Data() []DataCell {
	return s.data
}

// Counts reports how many variable, temporary and constant cells are in use.
func (s *SymbolTable) Counts() (vars, temps, consts int) {
	return len(s.vars), len(s.temps), len(s.consts)
}

// String prints the table in address order for debugging.
func (s *SymbolTable) String() string {
	var b strings.Builder
	b.WriteString("Labels:\n")
	labels := make([]int, 0, len(s.labels))
	for n := range s.labels {
		labels = append(labels, n)
	}
	sort.Ints(labels)
	for _, n := range labels {
		fmt.Fprintf(&b, "  %-6d -> %02d\n", n, s.labels[n])
	}
	b.WriteString("Data:\n")
	for _, d := range s.data {
		fmt.Fprintf(&b, "  %02d  %s\n", d.Addr, d)
	}
	return b.String()
}
