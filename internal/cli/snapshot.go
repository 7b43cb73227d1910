package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/ghdeck/internal/app"
	"github.com/five82/ghdeck/internal/source"
	"github.com/five82/ghdeck/internal/state"
)

type snapshotOptions struct {
	Format string
	Token  string
}

type snapshotReport struct {
	FetchedAt            time.Time     `json:"fetched_at" yaml:"fetched_at"`
	AuthoredPullRequests []source.Item `json:"authored_pull_requests" yaml:"authored_pull_requests"`
	AssignedIssues       []source.Item `json:"assigned_issues" yaml:"assigned_issues"`
	RequestedReviews     []source.Item `json:"requested_reviews" yaml:"requested_reviews"`
}

func newReport(snap state.Snapshot) snapshotReport {
	items := func(c source.Category) []source.Item {
		out := snap.Items(c)
		if out == nil {
			return []source.Item{}
		}
		return out
	}
	return snapshotReport{
		FetchedAt:            snap.FetchedAt.UTC(),
		AuthoredPullRequests: items(source.AuthoredPullRequests),
		AssignedIssues:       items(source.AssignedIssues),
		RequestedReviews:     items(source.RequestedReviews),
	}
}

func newSnapshotCmd(global *globalOptions) *cobra.Command {
	opts := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch once and print every category",
		Long: `Run a single fetch cycle and print the three categories.

The token defaults to the one stored in the settings file.

Examples:
  ghdeck snapshot
  ghdeck snapshot --format yaml --token "$GITHUB_TOKEN"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(opts.Format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", opts.Format)
			}
			snap, err := app.Snapshot(cmd.Context(), global.app(), opts.Token, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, newReport(snap))
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "GitHub access token (default: from settings)")

	return cmd
}

func writeReport(w io.Writer, format string, report snapshotReport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
