// Package prompt asks the operator yes/no questions on the console, with a
// mock for tests.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	// Confirm displays question and returns the answer. Empty input yields
	// defaultYes.
	Confirm(question string, defaultYes bool) (bool, error)
}

// StdinConfirmer implements Confirmer over a reader and writer.
type StdinConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// NewStdinConfirmer creates a StdinConfirmer that reads from r and writes to w.
func NewStdinConfirmer(r io.Reader, w io.Writer) *StdinConfirmer {
	return &StdinConfirmer{In: r, Out: w}
}

// Confirm writes question followed by a [Y/n] or [y/N] hint and reads one
// line. Accepts y/yes and n/no in any case.
func (c *StdinConfirmer) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	_, _ = fmt.Fprintf(c.Out, "%s %s: ", question, hint)

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid input %q: expected y/n", strings.TrimSpace(line))
	}
}

// MockConfirmer implements Confirmer for testing.
type MockConfirmer struct {
	// Answers is a queue of answers for successive calls. When exhausted,
	// the default is returned.
	Answers []bool
	// Err, if set, is returned by every call.
	Err error
	// Questions records each question asked.
	Questions []string
}

// NewMockConfirmer creates a MockConfirmer with the given answers.
func NewMockConfirmer(answers ...bool) *MockConfirmer {
	return &MockConfirmer{Answers: answers}
}

// Confirm returns the next configured answer.
func (m *MockConfirmer) Confirm(question string, defaultYes bool) (bool, error) {
	m.Questions = append(m.Questions, question)
	if m.Err != nil {
		return false, m.Err
	}
	if len(m.Answers) == 0 {
		return defaultYes, nil
	}
	answer := m.Answers[0]
	m.Answers = m.Answers[1:]
	return answer, nil
}

// IsTerminal reports whether r is a file attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
