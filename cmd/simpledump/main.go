// Command simpledump shows every stage of compiling a SIMPLE program:
// tokens, grammar verdict per line, the AST, storage decisions and the
// final listing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sanity-io/litter"
	"github.com/tebeka/atexit"

	"simplec/pkg/compiler"
	"simplec/pkg/listing"
	"simplec/pkg/utils"
)

func main() {
	showTokens := flag.Bool("tokens", true, "print tokens per line")
	showAST := flag.Bool("ast", true, "print the AST")
	logLevel := flag.String("log-level", utils.DefaultLogLevel(), "log level: debug, info, warn or error")
	flag.Parse()
	if err := utils.InitLogger(os.Stderr, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] program.simple\n", os.Args[0])
		atexit.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		atexit.Exit(1)
	}
	src := string(data)

	if *showTokens {
		dumpLines(src)
	}

	prog, err := compiler.Analyze(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}
	if *showAST {
		fmt.Println("AST")
		litter.Config.HidePrivateFields = true
		litter.Dump(prog.Stmts)
		fmt.Println()
	}

	res, err := compiler.CompileProgram(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}
	fmt.Println("Folded")
	for _, s := range res.Program.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	if err := listing.Usage(os.Stdout, res); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	if err := listing.Write(os.Stdout, res); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	fmt.Print(res.Symbols)
	atexit.Exit(0)
}

// dumpLines prints the tokens and grammar verdict of each labelled line.
func dumpLines(src string) {
	fmt.Println("Tokens")
	lines, diags := compiler.SplitSource(src)
	for _, d := range diags {
		fmt.Printf("  line %d: %s\n", d.Line, d.Msg)
	}
	for _, ln := range lines {
		if ln.Comment {
			fmt.Printf("  line %d: comment\n", ln.Number)
			continue
		}
		tokens, errs := compiler.Tokenize(ln.Stmt, ln.Number, ln.StmtCol, ln.Text)
		fmt.Printf("  line %d:", ln.Number)
		for _, tok := range tokens {
			fmt.Printf(" %s", tok)
		}
		fmt.Println()
		for _, e := range errs {
			fmt.Println("   ", e.Msg)
		}
		if len(errs) == 0 {
			if d := compiler.Validate(tokens, ln.Number, ln.Text); d != nil {
				fmt.Println("   ", d.Msg)
			}
		}
	}
	fmt.Println()
}
