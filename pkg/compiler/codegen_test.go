package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"simplec/pkg/sml"
)

func mustCompile(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile:\n%s\nerror: %v", src, err)
	}
	return res
}

func words(ws ...int) []sml.Word {
	out := make([]sml.Word, len(ws))
	for i, w := range ws {
		out[i] = sml.Word(w)
	}
	return out
}

func TestCompileAddTwoInputs(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 input b\n30 let c = a + b\n40 print c\n50 end\n")
	want := words(
		1007, // READ a
		1008, // READ b
		2007, // LOAD a
		3008, // ADD b
		2109, // STORE c
		1109, // WRITE c
		4300, // HALT
		0, 0, 0,
	)
	if !reflect.DeepEqual(res.Words, want) {
		t.Errorf("words = %v, want %v", res.Words, want)
	}
	if res.Stats.Vars != 3 || res.Stats.Instructions != 7 || res.Stats.Temps != 0 || res.Stats.Consts != 0 {
		t.Errorf("stats = %s", res.Stats)
	}
}

func TestCompileElidedPrint(t *testing.T) {
	res := mustCompile(t, "10 let x = 5\n20 print x\n30 end\n")
	want := words(
		2006, // LOAD const 5
		2006, // LOAD const 5
		2105, // STORE temp left
		1105, // WRITE temp left
		4300,
		0, // temp left
		5, // const 5
	)
	if !reflect.DeepEqual(res.Words, want) {
		t.Errorf("words = %v, want %v", res.Words, want)
	}
	if res.Stats.Vars != 0 {
		t.Errorf("x was allocated: %s", res.Stats)
	}
}

func TestCompileNegatedOperands(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 input b\n30 let c = a * -b\n40 let d = -a - b\n50 print c\n60 print d\n70 end\n")
	var got []string
	for _, in := range res.Code[2:] {
		got = append(got, fmt.Sprintf("%s %s", in.Op, in.Ref))
	}
	want := []string{
		"LOAD const 0", "SUBTRACT b", "STORE temp right", "LOAD a", "MULTIPLY temp right", "STORE c",
		"LOAD const 0", "SUBTRACT a", "SUBTRACT b", "STORE d",
		"WRITE c", "WRITE d", "HALT ",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("code =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestCompileBranches(t *testing.T) {
	// 0: READ a, 1-6: compare, 7: first branch
	tests := []struct {
		op   string
		want []sml.Word
	}{
		{"==", words(4200)},
		{"!=", words(4209, 4000)},
		{"<", words(4100)},
		{"<=", words(4100, 4200)},
		{">", words(4110, 4210, 4000)},
		{">=", words(4109, 4000)},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			res := mustCompile(t, fmt.Sprintf("10 input a\n20 if a %s 0 goto 10\n30 end\n", tt.op))
			got := res.Words[7 : 7+len(tt.want)]
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("branches = %v, want %v", got, tt.want)
			}
			if halt := res.Words[7+len(tt.want)]; halt != 4300 {
				t.Errorf("fallthrough cell holds %s, want HALT", halt)
			}
		})
	}
}

func TestCompileCompareSequence(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 if a > 0 goto 10\n30 end\n")
	want := words(
		1011, 2011, 2112, 2014, 2113, 2012, 3113,
		4110, 4210, 4000, 4300,
		0, 0, 0, 0,
	)
	if !reflect.DeepEqual(res.Words, want) {
		t.Errorf("words = %v, want %v", res.Words, want)
	}
}

func TestCompileNoEnd(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 print a\n")
	if !reflect.DeepEqual(res.Words, words(1002, 1102, 0)) {
		t.Errorf("words = %v", res.Words)
	}
}

func TestCompileMemoryLimit(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 99; i++ {
		fmt.Fprintf(&b, "%d print a\n", i)
	}
	res := mustCompile(t, b.String())
	if res.Stats.Total() != 100 || len(res.Words) != 100 {
		t.Errorf("stats = %s, words = %d", res.Stats, len(res.Words))
	}

	b.WriteString("100 print a\n")
	_, err := Compile(b.String())
	var d *Diagnostic
	if !errors.As(err, &d) || d.Phase != PhaseAllocation {
		t.Fatalf("expected allocation error, got %v", err)
	}
	if !strings.Contains(d.Error(), "memory overflow") {
		t.Errorf("error = %v", d)
	}
}

func TestCompileFoldedConstantOutOfRange(t *testing.T) {
	_, err := Compile("10 let x = 9999 * 2\n20 print x\n30 end\n")
	var d *Diagnostic
	if !errors.As(err, &d) || d.Phase != PhaseAllocation {
		t.Fatalf("expected allocation error, got %v", err)
	}
}

func TestCompileOverflowingFoldKeepsOperands(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
	}{
		{"10 let x = 4294967296 * 4294967296\n20 print x\n30 end\n", "constant 4294967296 does not fit"},
		{"10 let x = 9223372036854775807 + 1\n20 print x\n30 end\n", "constant 9223372036854775807 does not fit"},
	}
	for _, tt := range tests {
		_, err := Compile(tt.src)
		var d *Diagnostic
		if !errors.As(err, &d) || d.Phase != PhaseAllocation {
			t.Fatalf("Compile(%q): expected allocation error, got %v", tt.src, err)
		}
		if !strings.Contains(d.Msg, tt.wantMsg) {
			t.Errorf("Compile(%q) message = %q, want %q", tt.src, d.Msg, tt.wantMsg)
		}
	}
}

func TestCompileConstantDeduplication(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 let b = a + 1\n30 let c = b * 1\n40 if c == 1 goto 60\n50 print c\n60 end\n")
	seen := 0
	for _, d := range res.Symbols.Data() {
		if d.Kind == RefConst && d.Value == 1 {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("const 1 allocated %d times", seen)
	}
}

// Every code word decodes to a known opcode with an in-range operand, and
// every label branch lands on the first instruction of its statement.
func TestCompiledWordsAreWellFormed(t *testing.T) {
	programs := []string{
		"10 input n\n20 let s = 0\n30 if n <= 0 goto 70\n40 let s = s + n\n50 let n = n - 1\n60 goto 30\n70 print s\n80 end\n",
		"10 input a\n20 input b\n30 if a >= b goto 60\n40 print b\n50 goto 70\n60 print a\n70 end\n",
		"10 rem countdown\n20 let i = 10\n30 print i\n40 let i = i - 1\n50 if i != 0 goto 30\n60 end\n",
		"10 input x\n20 let y = x % 7\n30 let z = -y\n40 if z > -3 goto 10\n50 print z\n60 end\n",
	}
	for i, src := range programs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			res := mustCompile(t, src)
			for _, in := range res.Code {
				w := res.Words[in.Addr]
				op, addr := w.Decode()
				if !op.Valid() || addr < 0 || addr > 99 {
					t.Errorf("word %s at %02d is malformed", w, in.Addr)
				}
				if in.Ref.Kind != RefLabel {
					continue
				}
				want, ok := res.Symbols.LabelAddr(in.Ref.Value)
				if !ok || addr != want {
					t.Errorf("branch at %02d goes to %02d, label %d is at %02d", in.Addr, addr, in.Ref.Value, want)
				}
			}
		})
	}
}

func TestCompileCells(t *testing.T) {
	res := mustCompile(t, "10 input a\n20 print a\n30 end\n")
	if len(res.Cells) != len(res.Words) {
		t.Fatalf("%d cells for %d words", len(res.Cells), len(res.Words))
	}
	c := res.Cells[0]
	if c.Operand != "a" || c.Source != "10 input a" || c.Line != 1 {
		t.Errorf("cell 0 = %+v", c)
	}
	if last := res.Cells[len(res.Cells)-1]; last.Operand != "var a" || last.Line != 0 {
		t.Errorf("data cell = %+v", last)
	}
	if halt := res.Cells[2]; halt.Operand != "" {
		t.Errorf("HALT operand = %q", halt.Operand)
	}
}
