package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"
	"github.com/xyproto/env/v2"

	"simplec/pkg/compiler"
	"simplec/pkg/listing"
	"simplec/pkg/peripherals"
	"simplec/pkg/simpletron"
	"simplec/pkg/sml"
	"simplec/pkg/utils"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(code)
}

func main() {
	inPath := flag.String("in", "", "input SIMPLE source file path")
	outPath := flag.String("out", "", "output SML file path (default: input with .sml extension)")
	showListing := flag.Bool("listing", env.Bool("SIMPLEC_LISTING"), "print the compiled program as a table")
	runProgram := flag.Bool("run", false, "run the compiled program on the Simpletron")
	runSMLPath := flag.String("run-sml", "", "run an existing SML file on the Simpletron")
	inputFile := flag.String("input", "", "read program input from this file instead of the terminal")
	dump := flag.Bool("dump", false, "print registers and memory after running")
	logLevel := flag.String("log-level", utils.DefaultLogLevel(), "log level: debug, info, warn or error")
	flag.Parse()

	if err := utils.InitLogger(os.Stderr, *logLevel); err != nil {
		fail(exitUsage, "%v", err)
	}
	if *runProgram && *runSMLPath != "" {
		fail(exitUsage, "use either -run or -run-sml, not both")
	}
	if *inPath == "" && *runSMLPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to compile, -run to run the compiled output, or -run-sml <file> to run an existing program")
		flag.Usage()
		atexit.Exit(exitUsage)
	}

	var program []sml.Word
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fail(exitFailure, "failed to read input file %q: %v", *inPath, err)
		}

		res, err := compiler.Compile(string(source))
		if err != nil {
			if compiler.IsDiagnostic(err) {
				fail(exitUsage, "%s: %v", *inPath, err)
			}
			fail(exitFailure, "compilation failed: %v", err)
		}

		output := *outPath
		if output == "" {
			output = utils.DefaultOutputPath(*inPath, ".sml")
		}
		if err := sml.WriteFile(output, res.Words); err != nil {
			fail(exitFailure, "failed to write %q: %v", output, err)
		}
		fmt.Printf("compiled %s -> %s (%s)\n", *inPath, output, res.Stats)

		if *showListing {
			if err := listing.Write(os.Stdout, res); err != nil {
				fail(exitFailure, "listing: %v", err)
			}
		}
		if !*runProgram {
			atexit.Exit(exitOK)
		}
		program = res.Words
	}

	if *runSMLPath != "" {
		words, err := sml.ReadFile(*runSMLPath)
		if err != nil {
			fail(exitFailure, "failed to read %q: %v", *runSMLPath, err)
		}
		program = words
	}

	if err := run(program, *inputFile, *dump); err != nil {
		fail(exitFailure, "run failed: %v", err)
	}
	atexit.Exit(exitOK)
}

func run(program []sml.Word, inputFile string, dump bool) error {
	var kb simpletron.Keyboard
	var script *peripherals.Scripted
	if inputFile != "" {
		var err error
		if script, err = peripherals.LoadScript(inputFile); err != nil {
			return err
		}
		script.Echo = os.Stdout
		kb = script
	} else {
		term := peripherals.NewTerminal()
		atexit.Register(func() { term.Close() })
		kb = term
	}

	m := simpletron.NewMachine(kb, peripherals.NewPrinter(os.Stdout))
	if err := m.Load(program); err != nil {
		return err
	}
	err := m.Run()
	if errors.Is(err, peripherals.ErrAborted) {
		fmt.Fprintln(os.Stderr, "interrupted")
	}
	if script != nil && script.Remaining() > 0 {
		slog.Warn("input lines left unread", "file", inputFile, "count", script.Remaining())
	}
	if dump {
		if derr := m.Dump(os.Stdout); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}
