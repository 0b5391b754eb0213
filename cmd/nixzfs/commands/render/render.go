package render

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RaubJo/nixzfs/pkg/config"
	"github.com/RaubJo/nixzfs/pkg/nixcfg"
)

// NewCommand creates the render command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "render",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			host, _ := cmd.Flags().GetString("host")
			machineID, _ := cmd.Flags().GetString("machine-id")
			templatePath, _ := cmd.Flags().GetString("template")
			output, _ := cmd.Flags().GetString("output")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var hostID string
			if machineID != "" {
				hostID, err = nixcfg.NormalizeHostID(machineID)
			} else {
				hostID, err = nixcfg.HostID(cfg.Paths.MachineID)
			}
			if err != nil {
				return err
			}

			tmpl, err := nixcfg.LoadTemplate(templatePath)
			if err != nil {
				return err
			}

			doc, err := nixcfg.Render(tmpl, nixcfg.Context{
				User:           user,
				Host:           host,
				HostID:         hostID,
				Snapshot:       cfg.BlankSnapshot(),
				HardwareImport: nixcfg.DefaultHardwareImport,
			})
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), doc)
				return nil
			}

			log.Info().Str("path", output).Msg("Writing rendered configuration")
			return nixcfg.WriteFile(output, []byte(doc))
		},
	}

	cmd.Flags().StringP("user", "u", "", MsgFlagUser)
	cmd.Flags().String("host", "", MsgFlagHost)
	cmd.Flags().String("machine-id", "", MsgFlagMachineID)
	cmd.Flags().StringP("template", "t", "", MsgFlagTemplate)
	cmd.Flags().StringP("output", "o", "", MsgFlagOutput)
	cmd.Flags().String("config", "", MsgFlagConfig)

	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
