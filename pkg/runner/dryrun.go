package runner

import (
	"context"
	"fmt"
	"io"
)

// DryRunner prints each command it is asked to run and executes nothing.
// It backs the plan command.
type DryRunner struct {
	Out      io.Writer
	Commands []Command
}

// NewDryRunner creates a DryRunner writing its transcript to out
func NewDryRunner(out io.Writer) *DryRunner {
	return &DryRunner{Out: out}
}

// Run records the command, prints it, and reports success
func (r *DryRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.Commands = append(r.Commands, cmd)
	if r.Out != nil {
		fmt.Fprintf(r.Out, "$ %s\n", cmd.String())
	}
	return Result{ExitCode: 0}, nil
}
