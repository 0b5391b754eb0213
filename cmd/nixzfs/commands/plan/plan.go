package plan

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RaubJo/nixzfs/pkg/config"
	"github.com/RaubJo/nixzfs/pkg/pipeline"
	"github.com/RaubJo/nixzfs/pkg/runner"
)

// NewCommand creates the plan command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plan <device>",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log.Info().Str("device", args[0]).Msg("Planning install")

			_, err = pipeline.Run(cmd.Context(), pipeline.Options{
				Device: args[0],
				Config: cfg,
				Runner: runner.NewDryRunner(cmd.OutOrStdout()),
				DryRun: true,
			})
			return err
		},
	}

	cmd.Flags().String("config", "", MsgFlagConfig)

	return cmd
}
