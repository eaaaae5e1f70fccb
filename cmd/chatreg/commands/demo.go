package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/najoast/chatreg/bootstrap"
	"github.com/najoast/chatreg/ident"
	"github.com/najoast/chatreg/internal/printer"
	"github.com/najoast/chatreg/model"
	"github.com/najoast/chatreg/registry"
)

const (
	sampleBotName  = "SampleBot"
	sampleGreeting = "Hello, World!"
)

type demoOptions struct {
	*globalOptions

	output string
	strict bool

	// gen stamps ids and timestamps; ident.System outside tests
	gen ident.Generator
}

func newDemoCmd(global *globalOptions) *cobra.Command {
	opts := &demoOptions{globalOptions: global, gen: ident.System}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the reference scenario and print both registries",
		Long: `Run the reference scenario against a fresh pair of registries:

  1. create chatbot "SampleBot" and assign it a generated id
  2. create a conversation stamped with the current time and assign it an id
  3. register the chatbot
  4. send "Hello, World!" to the chatbot
  5. store the conversation

then print a snapshot of both registries.

Examples:
  # YAML snapshot with the default configuration
  chatreg demo

  # JSON snapshot, rejecting duplicate ids
  chatreg demo --output=json --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Run both registries in strict mode")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *demoOptions) error {
	p := newPrinter(cmd)

	if opts.output != "yaml" && opts.output != "json" {
		return p.Error(fmt.Sprintf("Unknown output format %q", opts.output), "", "Use --output=yaml or --output=json")
	}

	cfg, err := opts.loadConfig(p)
	if err != nil {
		return err
	}
	if opts.strict {
		cfg.Registry.Chatbots.Mode = registry.ModeStrict
		cfg.Registry.Conversations.Mode = registry.ModeStrict
	}

	logger, err := newLogger(cmd, cfg.Log, true)
	if err != nil {
		return p.Error("Failed to open log output", err.Error())
	}
	defer logger.Close()

	app, err := bootstrap.NewApplication(cfg, logger)
	if err != nil {
		return p.Error("Failed to configure application", err.Error())
	}

	ctx := cmd.Context()
	if err := app.Start(ctx); err != nil {
		return p.Error("Failed to start registries", err.Error())
	}
	defer app.Shutdown(context.Background())

	snap, err := playScenario(ctx, app, opts.gen, p)
	if err != nil {
		return p.Error("Demo scenario failed", err.Error())
	}

	data, err := encodeSnapshot(snap, opts.output)
	if err != nil {
		return p.Error("Failed to encode snapshot", err.Error())
	}
	p.Data(data)

	return nil
}

// playScenario drives the reference scenario and reads back both registries.
func playScenario(ctx context.Context, app *bootstrap.Application, gen ident.Generator, p *printer.Printer) (registry.Snapshot, error) {
	bot := model.NewChatbot(sampleBotName)
	bot.SetID(gen.NewID())

	conv := model.NewConversation(gen.Now())
	conv.SetID(gen.NewID())

	tracker, store := app.Tracker(), app.Conversations()

	if err := tracker.Register(bot); err != nil {
		return registry.Snapshot{}, fmt.Errorf("registering %s: %w", bot.Name, err)
	}
	p.Step("registered chatbot %s (%s)", bot.Name, bot.ID)

	if err := tracker.SendMessage(sampleGreeting, bot); err != nil {
		return registry.Snapshot{}, fmt.Errorf("sending message: %w", err)
	}
	p.Step("sent %q to %s", sampleGreeting, bot.Name)

	if err := store.Store(conv); err != nil {
		return registry.Snapshot{}, fmt.Errorf("storing conversation: %w", err)
	}
	p.Step("stored conversation %s", conv.ID)

	snap, err := app.Snapshot(ctx)
	if err != nil {
		return registry.Snapshot{}, err
	}
	p.Success("%d chatbot(s), %d conversation(s)", len(snap.Chatbots), len(snap.Conversations))

	return snap, nil
}

func encodeSnapshot(snap registry.Snapshot, format string) ([]byte, error) {
	if format == "json" {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(snap)
}
