package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration chatreg would run with: defaults, overlaid by the
configuration file, overlaid by CHATREG_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)

			cfg, err := global.loadConfig(p)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return p.Error("Failed to encode configuration", err.Error())
			}
			p.Data(data)
			return nil
		},
	}
}
