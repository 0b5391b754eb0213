// Package commands assembles the nixzfs command line interface.
package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RaubJo/nixzfs/cmd/nixzfs/commands/install"
	"github.com/RaubJo/nixzfs/cmd/nixzfs/commands/plan"
	"github.com/RaubJo/nixzfs/cmd/nixzfs/commands/render"
	"github.com/RaubJo/nixzfs/internal/version"
	"github.com/RaubJo/nixzfs/pkg/errors"
	"github.com/RaubJo/nixzfs/pkg/logging"
	"github.com/RaubJo/nixzfs/pkg/style"
	"github.com/RaubJo/nixzfs/pkg/topics"
)

//go:embed topics/*.md
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "nixzfs",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand given: show help but still exit nonzero
			_ = cmd.Help()
			return errors.New(errors.ErrUnknown, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	// Disable automatic help command (we'll use our custom one from topics)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Add all commands
	rootCmd.AddCommand(install.NewCommand())
	rootCmd.AddCommand(plan.NewCommand())
	rootCmd.AddCommand(render.NewCommand())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Initialize topic-based help from the embedded documents
	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		_ = topics.Initialize(rootCmd, sub, topics.Options{
			Renderer: topicRenderer(),
		})
	}

	return rootCmd
}

// Execute runs the CLI. Failures are printed once, styled, on stderr.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		style.NewDisplay(os.Stderr).Error(err)
		return err
	}
	return nil
}

// topicRenderer picks markdown rendering for terminals, raw text otherwise
func topicRenderer() topics.Renderer {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return topics.NewGlamourRenderer()
	}
	return &topics.PlainRenderer{}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Long:    MsgVersionLong,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nixzfs version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, "Built:  %s\n", version.Date)
			}
		},
	}
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Delegate to the help command's topic listing
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return errors.New(errors.ErrInternal, "help command not found")
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
