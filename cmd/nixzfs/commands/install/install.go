package install

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RaubJo/nixzfs/pkg/config"
	"github.com/RaubJo/nixzfs/pkg/nixcfg"
	"github.com/RaubJo/nixzfs/pkg/pipeline"
	"github.com/RaubJo/nixzfs/pkg/prompt"
	"github.com/RaubJo/nixzfs/pkg/runner"
	"github.com/RaubJo/nixzfs/pkg/style"
)

// NewCommand creates the install command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install <device>",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			templatePath, _ := cmd.Flags().GetString("template")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			tmpl, err := nixcfg.LoadTemplate(templatePath)
			if err != nil {
				return err
			}

			log.Info().
				Str("device", args[0]).
				Str("pool", cfg.Pool.Name).
				Msg("Starting install")

			display := style.NewDisplay(cmd.OutOrStdout())
			result, err := pipeline.Run(cmd.Context(), pipeline.Options{
				Device:   args[0],
				Config:   cfg,
				Runner:   runner.New(cfg.CommandTimeout()),
				Prompter: prompt.NewConsole(),
				Display:  display,
				Template: tmpl,
			})
			if err != nil {
				return err
			}

			display.Note(fmt.Sprintf(MsgDoneFormat, result.State.Host, result.ConfigPath))
			return nil
		},
	}

	cmd.Flags().String("config", "", MsgFlagConfig)
	cmd.Flags().StringP("template", "t", "", MsgFlagTemplate)

	return cmd
}
