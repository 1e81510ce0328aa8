package app

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/modmirror/internal/catalog"
	"github.com/blackwell-systems/modmirror/internal/config"
	"github.com/blackwell-systems/modmirror/internal/github"
	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

func newStatusCmd() *cobra.Command {
	var (
		asJSON bool
		state  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what has been mirrored so far",
		Long:  "Status reads the catalog file and lists each item with its release count and latest version.",
		Example: `  modmirror status
  modmirror status --json | jq '.[] | select(.releases > 5)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("state") {
				cfg.State.Path = state
			}
			store, err := statusStore(cfg)
			if err != nil {
				return err
			}
			cat, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			summaries := cat.Summaries()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			if len(summaries) == 0 {
				fmt.Fprintf(out, "No releases recorded in %s\n", store)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, color.CyanString("ID")+"\t"+color.CyanString("NAME")+"\t"+color.CyanString("GAME")+"\t"+color.CyanString("RELEASES")+"\t"+color.CyanString("LATEST"))
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Game, s.Releases, s.Latest)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&state, "state", "", "Catalog file path (default from config: data.json)")
	return cmd
}

// statusStore opens the catalog read-only. The repo backend needs a token
// and repository; the file backend needs nothing.
func statusStore(c *config.Config) (catalog.Store, error) {
	if c.State.Backend != config.BackendRepo {
		return newStore(c, nil), nil
	}
	if c.GitHub.Token == "" || c.GitHub.Repository == "" {
		return nil, &config.MissingError{Missing: []string{config.EnvGitHubToken, config.EnvRepository}}
	}
	hc := httpclient.New(httpclient.Config{
		Timeout:       c.HTTP.Timeout,
		MaxRetries:    c.HTTP.MaxRetries,
		BackoffFactor: c.HTTP.BackoffFactor,
		Logger:        logger,
	})
	repo, err := github.New(c.GitHub.Token, c.GitHub.APIBase, hc).Repository(c.GitHub.Repository)
	if err != nil {
		return nil, err
	}
	return newStore(c, repo), nil
}
