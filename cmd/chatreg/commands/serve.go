package commands

import (
	"github.com/spf13/cobra"

	"github.com/najoast/chatreg/bootstrap"
	"github.com/najoast/chatreg/config"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the registries until interrupted",
		Long: `Start the actor system and both registries and keep them running until
SIGINT or SIGTERM. Commands already accepted by a registry are applied
before it stops.

When --config names a file, it is watched: a changed log level takes effect
immediately, registry settings after a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global)
		},
	}
}

func runServe(cmd *cobra.Command, opts *globalOptions) error {
	p := newPrinter(cmd)

	cfg, err := opts.loadConfig(p)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg.Log, false)
	if err != nil {
		return p.Error("Failed to open log output", err.Error())
	}
	defer logger.Close()

	app, err := bootstrap.NewApplication(cfg, logger)
	if err != nil {
		return p.Error("Failed to configure application", err.Error())
	}

	if opts.configFile != "" {
		watcher, err := config.NewWatcher(opts.configFile, config.NewLoader(), logger.Logger)
		if err != nil {
			return p.Error("Failed to watch configuration", err.Error())
		}
		watcher.OnConfigChange(app.OnConfigChange)
		if err := watcher.Start(); err != nil {
			return p.Error("Failed to watch configuration", err.Error())
		}
		defer watcher.Stop()
	}

	if err := app.Run(cmd.Context()); err != nil {
		return p.Error("Registries stopped with an error", err.Error())
	}
	return nil
}
