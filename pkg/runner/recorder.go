package runner

import (
	"context"
)

// Recorder is a Runner for tests. It records every invocation and can be
// scripted to fail on a matching command, which is how delegate failures
// are simulated without touching a real device.
type Recorder struct {
	Commands []Command

	// FailOn, when set, is consulted for every command; a non-nil return
	// aborts that invocation with the given error.
	FailOn func(Command) error

	// Results, when set, supplies canned results keyed by command name.
	Results map[string]Result
}

// Run records the command and returns the scripted outcome
func (r *Recorder) Run(_ context.Context, cmd Command) (Result, error) {
	r.Commands = append(r.Commands, cmd)

	if r.FailOn != nil {
		if err := r.FailOn(cmd); err != nil {
			return Result{ExitCode: 1}, err
		}
	}

	if r.Results != nil {
		if res, ok := r.Results[cmd.Name]; ok {
			return res, nil
		}
	}

	return Result{ExitCode: 0}, nil
}

// Lines returns the recorded invocations as transcript strings
func (r *Recorder) Lines() []string {
	lines := make([]string, 0, len(r.Commands))
	for _, cmd := range r.Commands {
		lines = append(lines, cmd.String())
	}
	return lines
}
