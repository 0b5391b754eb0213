// Package prompt reads free-form answers from the operator.
//
// Answers are deliberately unvalidated: the operator is root and the values
// land in a configuration file they own.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Prompter asks the operator one question and returns the raw answer
type Prompter interface {
	Ask(label string) (string, error)
}

// Console prompts on the terminal, one line per question
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console over stdin/stdout
func NewConsole() *Console {
	return &Console{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewConsoleWith creates a Console over explicit streams
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and reads a single line. A final line without a
// trailing newline still counts as an answer.
func (c *Console) Ask(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)

	line, err := c.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", errors.Wrapf(err, errors.ErrPromptRead, "failed to read %s", label)
	}

	return strings.TrimSpace(line), nil
}

// Scripted replays canned answers in order. Tests use it to drive the
// pipeline without a terminal; Asked keeps the question order for
// assertions.
type Scripted struct {
	Answers []string
	Asked   []string

	next int
}

// Ask records the question and returns the next scripted answer
func (s *Scripted) Ask(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	if s.next >= len(s.Answers) {
		return "", errors.Newf(errors.ErrPromptRead, "no scripted answer for %q", label)
	}
	answer := s.Answers[s.next]
	s.next++
	return answer, nil
}
