package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"simplec/pkg/asm"
	"simplec/pkg/peripherals"
	"simplec/pkg/simpletron"
	"simplec/pkg/sml"
	"simplec/pkg/utils"
)

const help = `commands:
  run      run until HALT or a fault
  step     execute one instruction
  dump     print registers and memory
  list     disassemble the loaded program
  reset    reload the program
  quit     leave the console`

func main() {
	logLevel := flag.String("log-level", utils.DefaultLogLevel(), "log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] program.sml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if err := utils.InitLogger(os.Stderr, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		atexit.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	program, err := sml.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read program: %v\n", err)
		atexit.Exit(1)
	}

	term := peripherals.NewTerminal()
	atexit.Register(func() { term.Close() })

	m := simpletron.NewMachine(term, peripherals.NewPrinter(os.Stdout))
	if err := m.Load(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	fmt.Printf("loaded %d words from %s\n%s\n", len(program), fullPath, help)

	for {
		line, err := term.ReadLine("sml> ")
		if errors.Is(err, io.EOF) || errors.Is(err, peripherals.ErrAborted) {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		if quit := command(m, program, strings.TrimSpace(line)); quit {
			break
		}
	}
	atexit.Exit(0)
}

func command(m *simpletron.Machine, program []sml.Word, cmd string) (quit bool) {
	report := func(err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	switch cmd {
	case "":
	case "run":
		report(m.Run())
		fmt.Printf("executed %d instructions\n", m.Steps)
	case "step":
		if m.Halted {
			fmt.Println("halted")
			return false
		}
		fmt.Printf("%02d  %s\n", m.IC, asm.DisassembleWord(m.Memory[m.IC%sml.MemorySize]))
		report(m.Step())
	case "dump":
		report(m.Dump(os.Stdout))
	case "list":
		fmt.Print(asm.Disassemble(m.Memory[:len(program)]))
	case "reset":
		report(m.Load(program))
	case "quit", "exit":
		return true
	default:
		fmt.Println(help)
	}
	return false
}
