package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/ghdeck/internal/app"
	"github.com/five82/ghdeck/internal/streamdeck"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitNoToken = 2
)

// Version is reported by --version.
var Version = "dev"

// globalOptions holds options shared across all commands.
type globalOptions struct {
	ConfigPath   string
	LogLevel     string
	SettingsPath string
}

func (g *globalOptions) app() app.Options {
	return app.Options{
		ConfigPath:   g.ConfigPath,
		LogLevel:     g.LogLevel,
		SettingsPath: g.SettingsPath,
	}
}

// NewRootCmd builds the command tree. Running the root command without a
// subcommand starts the terminal deck.
func NewRootCmd() *cobra.Command {
	global := &globalOptions{}
	tui := &tuiOptions{}

	root := &cobra.Command{
		Use:   "ghdeck",
		Short: "GitHub pull requests, issues and review requests on a Stream Deck",
		Long: `ghdeck polls GitHub for your open pull requests, assigned issues and
requested reviews and shows them one per key, on an Elgato Stream Deck
(ghdeck plugin) or on a terminal deck (ghdeck tui, the default).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), global, tui)
		},
	}

	root.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "Path to config file (default ~/.config/ghdeck/config.toml)")
	root.PersistentFlags().StringVar(&global.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&global.SettingsPath, "settings", "", "Path to settings file (overrides settings_path)")
	addTUIFlags(root, tui)

	root.AddCommand(newTUICmd(global))
	root.AddCommand(newPluginCmd(global))
	root.AddCommand(newSnapshotCmd(global))
	root.AddCommand(newSettingsCmd(global))
	return root
}

// prepareArgs routes a Stream Deck launch to the plugin command and rewrites
// its single-dash flags.
func prepareArgs(args []string) []string {
	if streamdeck.IsLaunch(args) && (len(args) == 0 || args[0] != "plugin") {
		args = append([]string{"plugin"}, args...)
	}
	return streamdeck.NormalizeArgs(args)
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stderr io.Writer) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	root := NewRootCmd()
	root.SetArgs(prepareArgs(args))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ghdeck: %v\n", err)
		if errors.Is(err, app.ErrNoToken) {
			return ExitNoToken
		}
		return ExitError
	}
	return ExitOK
}
