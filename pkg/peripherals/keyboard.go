package peripherals

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user cancels input with Ctrl-C.
var ErrAborted = errors.New("input aborted")

// Scripted feeds a fixed list of lines to the machine, one per READ.
type Scripted struct {
	lines []string
	next  int
	Echo  io.Writer // when set, prompts and answers are echoed here
}

func NewScripted(lines ...string) *Scripted {
	return &Scripted{lines: lines}
}

// LoadScript reads the input lines of the file at path.
func LoadScript(path string) (*Scripted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := NewScriptedReader(f)
	if err != nil {
		return nil, fmt.Errorf("read input %q: %w", path, err)
	}
	return s, nil
}

// NewScriptedReader reads every line of r up front.
func NewScriptedReader(r io.Reader) (*Scripted, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewScripted(lines...), nil
}

func (s *Scripted) ReadLine(prompt string) (string, error) {
	if s.next >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.next]
	s.next++
	if s.Echo != nil {
		fmt.Fprintf(s.Echo, "%s%s\n", prompt, line)
	}
	return line, nil
}

// Remaining reports how many lines have not been read yet.
func (s *Scripted) Remaining() int {
	return len(s.lines) - s.next
}

// Terminal reads input interactively with line editing and history.
type Terminal struct {
	ln *liner.State
}

func NewTerminal() *Terminal {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	return &Terminal{ln: ln}
}

func (t *Terminal) ReadLine(prompt string) (string, error) {
	line, err := t.ln.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		t.ln.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	return t.ln.Close()
}
