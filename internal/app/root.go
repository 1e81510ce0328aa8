package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/modmirror/internal/config"
	"github.com/blackwell-systems/modmirror/internal/logging"
	"github.com/blackwell-systems/modmirror/internal/util"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
	flagLogLevel      string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modmirror",
		Short: "Mirror a Nexus Mods publisher's files into GitHub Releases",
		Long: `modmirror keeps a GitHub repository's releases in step with every mod
a Nexus Mods user has published.

Each file version becomes one release, tagged from the mod name, id and
version, with the files attached as assets. A data.json catalog of what
has been mirrored is maintained alongside.

Credentials come from the environment:
  NEXUSMODS_V1_API_KEY  Nexus Mods personal API key
  NEXUS_USERID          numeric id of the tracked publisher
  GITHUB_TOKEN          token with contents:write on the target repo
  GITHUB_REPOSITORY     target repository, owner/repo`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable progress bars and styled reports")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: $MODMIRROR_CONFIG or ./"+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, util.LogColor(flagNoColor))
		slog.SetDefault(logger)
		return nil
	}

	root.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newStatusCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// fail prints a red error line.
func fail(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}
