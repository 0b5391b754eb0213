// Package runner executes the external tools the installer delegates to.
//
// Every disk and filesystem mutation flows through a Runner, so the full
// command sequence can be previewed with the dry runner, recorded in tests,
// and executed for real with the command runner. Stages never call os/exec
// directly.
package runner

import (
	"context"
	"strings"
)

// Command is a single external tool invocation
type Command struct {
	Name string
	Args []string

	// Interactive wires the operator's terminal through to the child
	// process. Needed for tools that prompt (zfs passphrase entry) or
	// stream long-running progress (nixos-install). Interactive commands
	// run without a timeout.
	Interactive bool
}

// String renders the invocation the way a shell transcript would show it
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures the outcome of one invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs external commands and captures their outcome
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}
