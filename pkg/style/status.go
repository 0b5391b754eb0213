package style

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/RaubJo/nixzfs/pkg/errors"
)

// Status is the outcome shown on a step's status line
type Status string

const (
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
	StatusRun  Status = "run"
	StatusSkip Status = "skip"
)

// statusStyle returns the pterm style for a status word
func statusStyle(s Status) *pterm.Style {
	switch s {
	case StatusOK:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack)
	case StatusFail:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case StatusRun:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Display writes step status lines, notes, and error blocks
type Display struct {
	out     io.Writer
	noColor bool
}

// NewDisplay creates a Display, downgrading to plain text when out is not
// a terminal, NO_COLOR is set, or the terminal reports no color support.
func NewDisplay(out io.Writer) *Display {
	return &Display{out: out, noColor: !colorCapable(out)}
}

// NewPlainDisplay creates a Display that never emits escape sequences
func NewPlainDisplay(out io.Writer) *Display {
	return &Display{out: out, noColor: true}
}

func colorCapable(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// Step prints one status line for a pipeline step
func (d *Display) Step(status Status, label string) {
	if d == nil {
		return
	}
	if d.noColor {
		fmt.Fprintf(d.out, "%4s  %s\n", string(status), label)
		return
	}
	word := statusStyle(status).Sprintf(" %-4s ", string(status))
	fmt.Fprintf(d.out, "%s %s\n", word, GetStyle("label").Render(label))
}

// Note prints a secondary line (summaries, hints)
func (d *Display) Note(msg string) {
	if d == nil {
		return
	}
	if d.noColor {
		fmt.Fprintln(d.out, msg)
		return
	}
	fmt.Fprintln(d.out, GetStyle("note").Render(msg))
}

// Error prints the final error block: the coded message, and for delegate
// failures the failing command line and its captured stderr.
func (d *Display) Error(err error) {
	if d == nil || err == nil {
		return
	}

	var detailLines []string
	if details := errors.GetErrorDetails(err); details != nil {
		if name, ok := details["command"].(string); ok {
			argv := name
			if args, ok := details["args"].([]string); ok && len(args) > 0 {
				argv += " " + strings.Join(args, " ")
			}
			detailLines = append(detailLines, "command: "+argv)
		}
		if stderr, ok := details["stderr"].(string); ok {
			if s := strings.TrimSpace(stderr); s != "" {
				detailLines = append(detailLines, "stderr: "+s)
			}
		}
	}

	if d.noColor {
		fmt.Fprintf(d.out, "error: %s\n", err.Error())
		for _, line := range detailLines {
			fmt.Fprintf(d.out, "       %s\n", line)
		}
		return
	}

	fmt.Fprintln(d.out, GetStyle("errorHeader").Render("error: "+err.Error()))
	for _, line := range detailLines {
		fmt.Fprintln(d.out, GetStyle("errorDetail").Render(line))
	}
}
