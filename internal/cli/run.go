package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/five82/ghdeck/internal/app"
	"github.com/five82/ghdeck/internal/streamdeck"
)

type tuiOptions struct {
	Theme string
}

func addTUIFlags(cmd *cobra.Command, opts *tuiOptions) {
	cmd.Flags().StringVar(&opts.Theme, "theme", "Dracula", "Color theme (Dracula|Slate)")
}

func newTUICmd(global *globalOptions) *cobra.Command {
	opts := &tuiOptions{}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), global, opts)
		},
	}
	addTUIFlags(cmd, opts)
	return cmd
}

func runTUI(ctx context.Context, global *globalOptions, opts *tuiOptions) error {
	appOpts := global.app()
	appOpts.ThemeName = opts.Theme
	return app.RunTUI(ctx, appOpts)
}

func newPluginCmd(global *globalOptions) *cobra.Command {
	args := streamdeck.LaunchArgs{}
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Run as a Stream Deck plugin",
		Long: `Run as a Stream Deck plugin. The Stream Deck application starts the
plugin with -port, -pluginUUID, -registerEvent and -info; ghdeck recognises
that form and selects this command automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := args.Validate(); err != nil {
				return err
			}
			return app.RunPlugin(cmd.Context(), global.app(), args)
		},
	}
	cmd.Flags().IntVar(&args.Port, "port", 0, "Stream Deck WebSocket port")
	cmd.Flags().StringVar(&args.PluginUUID, "pluginUUID", "", "Plugin instance UUID")
	cmd.Flags().StringVar(&args.RegisterEvent, "registerEvent", "", "Registration event name")
	cmd.Flags().StringVar(&args.Info, "info", "", "Stream Deck application info (JSON)")
	return cmd
}
