package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaubJo/nixzfs/pkg/errors"
	"github.com/RaubJo/nixzfs/pkg/logging"
)

// CommandRunner executes commands for real via os/exec
type CommandRunner struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// New creates a CommandRunner. The timeout bounds each non-interactive
// command; zero disables it.
func New(timeout time.Duration) *CommandRunner {
	return &CommandRunner{
		logger:  logging.GetLogger("runner"),
		timeout: timeout,
	}
}

// Run executes the command, capturing stdout and stderr. Interactive
// commands inherit the process terminal instead; their stderr is still
// teed into the result so failures carry context.
func (r *CommandRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	r.logger.Debug().
		Str("command", cmd.Name).
		Strs("args", cmd.Args).
		Bool("interactive", cmd.Interactive).
		Msg("Executing command")

	if !cmd.Interactive && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)

	var stdout, stderr bytes.Buffer
	if cmd.Interactive {
		execCmd.Stdin = os.Stdin
		execCmd.Stdout = os.Stdout
		execCmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	} else {
		execCmd.Stdout = &stdout
		execCmd.Stderr = &stderr
	}

	err := execCmd.Run()

	result := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if execCmd.ProcessState != nil {
		result.ExitCode = execCmd.ProcessState.ExitCode()
	}

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("command", cmd.Name).
			Strs("args", cmd.Args).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command execution failed")

		return result, errors.Wrapf(err, errors.ErrDelegateFailed, "%s failed", cmd.String()).
			WithDetail("command", cmd.Name).
			WithDetail("args", cmd.Args).
			WithDetail("exitCode", result.ExitCode).
			WithDetail("stderr", result.Stderr)
	}

	r.logger.Debug().
		Str("command", cmd.Name).
		Msg("Command executed successfully")

	return result, nil
}
