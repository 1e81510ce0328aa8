package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/modmirror/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		path       string
		repository string
		userID     string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Init writes a modmirror.yml holding every tunable at its current value.

Credentials are never written; keep them in the environment.`,
		Example: `  modmirror init --repository octo/mod-mirror --user-id 1234567`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if repository != "" {
				cfg.GitHub.Repository = repository
			}
			if userID != "" {
				cfg.Nexus.UserID = userID
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Wrote %s", path)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  export NEXUSMODS_V1_API_KEY=...")
			fmt.Println("  export GITHUB_TOKEN=...")
			fmt.Println("  modmirror plan")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Where to write the config (default: ./"+config.DefaultPath+")")
	cmd.Flags().StringVar(&repository, "repository", "", "Target repository, owner/repo")
	cmd.Flags().StringVar(&userID, "user-id", "", "Nexus Mods user id of the tracked publisher")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
