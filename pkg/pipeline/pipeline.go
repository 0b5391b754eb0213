// Package pipeline orchestrates the installation as a fixed sequence of
// steps: preconditions, partitioning, pool and dataset provisioning,
// mounts, configuration materialization, and the installer hand-off.
//
// Every disk mutation delegates to an external tool through runner.Runner,
// so the same step list drives a real install, a recorded test run, and
// the printed plan. Local-only steps (prompts, rendering, the receipt) are
// skipped in plan mode; the orchestrator stops at the first error and
// never rolls back.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaubJo/nixzfs/pkg/config"
	"github.com/RaubJo/nixzfs/pkg/device"
	"github.com/RaubJo/nixzfs/pkg/logging"
	"github.com/RaubJo/nixzfs/pkg/prompt"
	"github.com/RaubJo/nixzfs/pkg/runner"
	"github.com/RaubJo/nixzfs/pkg/style"
)

// Options configures one pipeline run
type Options struct {
	// Device is the short target device name, e.g. "sda" or "nvme0n1"
	Device string

	Config   config.Config
	Runner   runner.Runner
	Prompter prompt.Prompter

	// Display receives one status line per step; nil disables status output
	Display *style.Display

	// Template is the configuration template text; empty selects the
	// embedded default
	Template string

	// DryRun records and prints delegate commands without executing
	// anything, skips the privilege check, and skips local-only steps
	DryRun bool

	// Geteuid and ValidateDevice are replaced in tests so the pipeline
	// runs without root or a real device. Nil selects the real
	// implementations.
	Geteuid        func() int
	ValidateDevice func(name string) (string, error)
}

// State accumulates what the steps learn and decide during a run
type State struct {
	DevicePath string
	BootPart   string
	DataPart   string
	User       string
	Host       string
	HostID     string
}

// StepResult is the journal entry for one executed (or skipped) step
type StepResult struct {
	Name   string
	Label  string
	Status style.Status
	Err    error
}

// Result is the full journal of a run
type Result struct {
	Steps       []StepResult
	State       State
	ConfigPath  string
	ReceiptPath string
}

// step pairs a journal identity with its action. Steps marked local are
// skipped in plan mode so the transcript stays a pure command sequence;
// device validation still runs there.
type step struct {
	name  string
	label string
	local bool
	run   func(ctx context.Context, p *pipeline) error
}

// pipeline carries the per-run state shared by the step closures
type pipeline struct {
	opts      Options
	cfg       config.Config
	state     State
	startedAt time.Time

	configPath  string
	receiptPath string

	logger zerolog.Logger
}

func newPipeline(opts Options) *pipeline {
	if opts.Geteuid == nil {
		opts.Geteuid = os.Geteuid
	}
	if opts.ValidateDevice == nil {
		opts.ValidateDevice = device.Validate
	}
	return &pipeline{
		opts:   opts,
		cfg:    opts.Config,
		logger: logging.GetLogger("pipeline"),
	}
}

// Run executes the install sequence. The returned Result journals every
// step up to and including the first failure; its Steps record what an
// operator saw.
func Run(ctx context.Context, opts Options) (*Result, error) {
	p := newPipeline(opts)

	p.logger.Debug().
		Str("device", opts.Device).
		Bool("dryRun", opts.DryRun).
		Msg("Starting install pipeline")

	p.startedAt = time.Now().UTC()

	result := &Result{}
	for _, s := range p.steps() {
		if s.local && opts.DryRun {
			opts.Display.Step(style.StatusSkip, s.label)
			result.Steps = append(result.Steps, StepResult{
				Name:   s.name,
				Label:  s.label,
				Status: style.StatusSkip,
			})
			continue
		}

		done := logging.LogOperationStart(p.logger, s.name)
		err := s.run(ctx, p)
		done()

		if err != nil {
			p.logger.Error().Err(err).Str("step", s.name).Msg("Step failed")
			opts.Display.Step(style.StatusFail, s.label)
			result.Steps = append(result.Steps, StepResult{
				Name:   s.name,
				Label:  s.label,
				Status: style.StatusFail,
				Err:    err,
			})
			result.State = p.state
			return result, err
		}

		opts.Display.Step(style.StatusOK, s.label)
		result.Steps = append(result.Steps, StepResult{
			Name:   s.name,
			Label:  s.label,
			Status: style.StatusOK,
		})
	}

	result.State = p.state
	result.ConfigPath = p.configPath
	result.ReceiptPath = p.receiptPath

	p.logger.Info().
		Str("device", p.state.DevicePath).
		Int("steps", len(result.Steps)).
		Msg("Install pipeline completed")

	return result, nil
}

// steps assembles the full ordered sequence from the six stages
func (p *pipeline) steps() []step {
	var steps []step
	steps = append(steps, preconditionSteps()...)
	steps = append(steps, partitionSteps()...)
	steps = append(steps, provisionSteps()...)
	steps = append(steps, mountSteps()...)
	steps = append(steps, configSteps()...)
	steps = append(steps, installSteps()...)
	return steps
}

// exec sends one command through the runner
func (p *pipeline) exec(ctx context.Context, name string, args ...string) error {
	_, err := p.opts.Runner.Run(ctx, runner.Command{Name: name, Args: args})
	return err
}

// execInteractive sends one command through the runner with the operator's
// terminal wired through
func (p *pipeline) execInteractive(ctx context.Context, name string, args ...string) error {
	_, err := p.opts.Runner.Run(ctx, runner.Command{Name: name, Args: args, Interactive: true})
	return err
}

// statePath resolves a file name inside the persisted configuration
// directory
func (p *pipeline) statePath(name string) string {
	return filepath.Join(p.cfg.StateNixosDir(), name)
}

// livePath resolves a file name inside the live configuration directory
func (p *pipeline) livePath(name string) string {
	return filepath.Join(p.cfg.LiveNixosDir(), name)
}
