package asm

import (
	"reflect"
	"strings"
	"testing"

	"simplec/pkg/sml"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}
	if got := normalizeLabel("label"); got != "LABEL" {
		t.Errorf("normalizeLabel(\"label\") = %q; want \"LABEL\"", got)
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []sml.Word
	}{
		{
			name: "Numeric Operands",
			src:  "READ 07\nWRITE 7\nHALT",
			want: []sml.Word{1007, 1107, 4300},
		},
		{
			name: "Lower Case And Comments",
			src:  "  load 10 ; fetch\n\n; only a comment\nhalt 00",
			want: []sml.Word{2010, 4300},
		},
		{
			name: "Forward And Backward Labels",
			src: "loop: LOAD n\n" +
				"      BRANCHZERO done\n" +
				"      SUBTRACT one\n" +
				"      STORE n\n" +
				"      BRANCH loop\n" +
				"done: HALT\n" +
				"n:    DATA 3\n" +
				"one:  DATA +0001\n",
			want: []sml.Word{2006, 4205, 3107, 2106, 4000, 4300, 3, 1},
		},
		{
			name: "Negative Data",
			src:  "DATA -0005\nDATA -9999",
			want: []sml.Word{-5, -9999},
		},
		{
			name: "Label On Its Own Line",
			src:  "start:\nBRANCH start",
			want: []sml.Word{4000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Assemble(tt.src)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Assemble() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssembleSourceMap(t *testing.T) {
	_, sm, err := Assemble("; header\nREAD 02\n\nHALT\nDATA 0")
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]int{0: 2, 1: 4, 2: 5}
	if !reflect.DeepEqual(sm, want) {
		t.Errorf("source map = %v, want %v", sm, want)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"Unknown Instruction", "JUMP 10", "unknown instruction on line 1"},
		{"Duplicate Label", "a: HALT\na: HALT", "duplicate label 'a' on line 2"},
		{"Undefined Label", "BRANCH nowhere", "undefined label 'nowhere'"},
		{"Missing Operand", "LOAD", "expects an operand"},
		{"Extra Operand", "LOAD 1 2", "expects one operand"},
		{"Operand Range", "LOAD 100", "outside memory"},
		{"Data Range", "DATA 10000", "outside"},
		{"Bad Label", "1x: HALT", "invalid label"},
		{"Too Large", strings.Repeat("HALT\n", 101), "program too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Assemble(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.msg)
			}
		})
	}
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		word sml.Word
		want string
	}{
		{1007, "READ 07"},
		{2199, "STORE 99"},
		{4300, "HALT"},
		{0, "DATA +0000"},
		{-5, "DATA -0005"},
		{9999, "DATA +9999"},
	}
	for _, tt := range tests {
		if got := DisassembleWord(tt.word); got != tt.want {
			t.Errorf("DisassembleWord(%d) = %q, want %q", tt.word, got, tt.want)
		}
	}

	words := []sml.Word{2003, 1103, 4300, 42}
	text := Disassemble(words)
	if !strings.Contains(text, "00  +2003  LOAD 03\n") || !strings.Contains(text, "03  +0042  DATA +0042\n") {
		t.Errorf("Disassemble() =\n%s", text)
	}

	// Mnemonic columns assemble back to the same words.
	var src strings.Builder
	for _, w := range words {
		src.WriteString(DisassembleWord(w) + "\n")
	}
	again, _, err := Assemble(src.String())
	if err != nil || !reflect.DeepEqual(again, words) {
		t.Errorf("reassembled %v, %v", again, err)
	}
}
