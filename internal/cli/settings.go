package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/ghdeck/internal/app"
	"github.com/five82/ghdeck/internal/settings"
)

func newSettingsCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the settings file",
	}
	cmd.AddCommand(newSettingsShowCmd(global))
	cmd.AddCommand(newSettingsSetCmd(global))
	return cmd
}

func newSettingsShowCmd(global *globalOptions) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenSettings(global.app(), settingsLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			g, err := store.Get(cmd.Context())
			if err != nil {
				return err
			}
			if !reveal {
				g = g.Redacted()
			}
			printSettings(cmd.OutOrStdout(), store.Path(), g)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the access token in full")
	return cmd
}

func newSettingsSetCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Change one or more settings",
		Long: `Change one or more settings. Keys: token, wrap, filter, offset.

Setting the filter resets the offset to the first page. A running ghdeck tui
picks the change up immediately.

Examples:
  ghdeck settings set token=ghp_xxx
  ghdeck settings set filter=pull_requests wrap=true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenSettings(global.app(), settingsLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			g, err := store.Get(cmd.Context())
			if err != nil {
				return err
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected KEY=VALUE, got %q", arg)
				}
				if g, err = settings.Apply(g, key, value); err != nil {
					return err
				}
			}
			if err := store.Set(cmd.Context(), g); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			printSettings(cmd.OutOrStdout(), store.Path(), g.Redacted())
			return nil
		},
	}
}

func settingsLogger(w io.Writer) *slog.Logger {
	return app.NewLogger(w, slog.LevelWarn)
}

func printSettings(w io.Writer, path string, g settings.Global) {
	fmt.Fprintf(w, "# %s\n", path)
	fmt.Fprintf(w, "token  = %s\n", g.AccessToken)
	fmt.Fprintf(w, "wrap   = %t\n", g.WrapText)
	fmt.Fprintf(w, "filter = %s\n", g.FilterState)
	fmt.Fprintf(w, "offset = %d\n", g.Offset)
}
