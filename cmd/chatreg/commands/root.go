package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/najoast/chatreg/config"
	"github.com/najoast/chatreg/internal/printer"
	"github.com/najoast/chatreg/logging"
)

var versionInfo = "dev"

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	configFile string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatreg",
		Short: "chatreg - in-process chatbot and conversation registry",
		Long: `chatreg tracks chatbot identities and conversation records in two
actor-backed registries. Each registry owns its state and applies the
commands submitted to it one at a time, in submission order.`,
		Version: versionInfo,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"Configuration file (YAML or JSON); searched for when omitted")

	rootCmd.AddCommand(
		newDemoCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

// Execute runs the chatreg command tree.
func Execute() error {
	return newRootCmd().Execute()
}

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(v, c, d string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// loadConfig loads the configuration selected by --config.
func (o *globalOptions) loadConfig(p *printer.Printer) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(o.configFile)
	if err != nil {
		return nil, p.Error("Failed to load configuration", err.Error(),
			"Check the file passed with --config",
			"Check CHATREG_* environment variables",
		)
	}
	return cfg, nil
}

// newLogger builds the process logger. When stdout carries command output,
// console logging moves to stderr.
func newLogger(cmd *cobra.Command, cfg config.LogConfig, stdoutIsData bool) (*logging.Logger, error) {
	switch cfg.Output {
	case "", "stdout":
		if stdoutIsData {
			return logging.NewWithWriter(cfg, cmd.ErrOrStderr()), nil
		}
		return logging.NewWithWriter(cfg, cmd.OutOrStdout()), nil
	case "stderr":
		return logging.NewWithWriter(cfg, cmd.ErrOrStderr()), nil
	default:
		return logging.New(cfg)
	}
}

func newPrinter(cmd *cobra.Command) *printer.Printer {
	return printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}
