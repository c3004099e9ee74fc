package sml

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Write emits one word per line in address order.
func Write(w io.Writer, words []Word) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintln(bw, word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a word file. Blank lines are skipped; anything else must be a
// word in range, and the file may not exceed MemorySize words.
func Read(r io.Reader) ([]Word, error) {
	var words []Word
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		w, err := ParseWord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(words) == MemorySize {
			return nil, fmt.Errorf("line %d: program exceeds %d words", lineNo, MemorySize)
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func WriteFile(path string, words []Word) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, words); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadFile(path string) ([]Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
