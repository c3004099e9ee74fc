// Package compiler translates SIMPLE, a line-numbered teaching language,
// into SML words for the 100-word Simpletron machine.
//
// Pipeline: source → Tokenize → Validate → BuildStmt → Check → Optimize →
// Generate → SymbolTable.Allocate → SymbolTable.Resolve → []sml.Word
//
// Analyze runs the front end and collects every diagnostic; Compile runs
// the whole pipeline.
package compiler
