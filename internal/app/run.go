package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/modmirror/internal/catalog"
	"github.com/blackwell-systems/modmirror/internal/config"
	"github.com/blackwell-systems/modmirror/internal/diff"
	"github.com/blackwell-systems/modmirror/internal/download"
	"github.com/blackwell-systems/modmirror/internal/engine"
	"github.com/blackwell-systems/modmirror/internal/github"
	"github.com/blackwell-systems/modmirror/internal/httpclient"
	"github.com/blackwell-systems/modmirror/internal/naming"
	"github.com/blackwell-systems/modmirror/internal/nexus"
	"github.com/blackwell-systems/modmirror/internal/release"
	"github.com/blackwell-systems/modmirror/internal/tui"
)

// runFlags override the loaded config for one invocation.
type runFlags struct {
	cap        int
	workers    int
	dryRun     bool
	state      string
	stagingDir string
}

func (f *runFlags) register(fs *pflag.FlagSet, withDryRun bool) {
	fs.IntVar(&f.cap, "cap", 0, "Most items processed this run, 0 for no limit (default from config: 30)")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent downloads per release (default from config: 4)")
	fs.StringVar(&f.state, "state", "", "Catalog file path (default from config: data.json)")
	fs.StringVar(&f.stagingDir, "staging-dir", "", "Scratch directory for downloads (default from config: downloads)")
	if withDryRun {
		fs.BoolVar(&f.dryRun, "dry-run", false, "Report what would be released without downloading or publishing")
	}
}

// apply copies explicitly set flags onto c.
func (f *runFlags) apply(fs *pflag.FlagSet, c *config.Config) {
	if fs.Changed("cap") {
		c.Run.Cap = f.cap
	}
	if fs.Changed("workers") {
		c.Run.Workers = f.workers
	}
	if fs.Changed("state") {
		c.State.Path = f.state
	}
	if fs.Changed("staging-dir") {
		c.Run.StagingDir = f.stagingDir
	}
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish every missing file version as a GitHub release",
		Long: `Run performs one synchronization pass:

  1. list the releases already on the target repository
  2. fetch the publisher's catalog from Nexus Mods
  3. work out which file versions have no release yet
  4. download, release and upload them, one version at a time
  5. record the new releases in the catalog file

At most --cap items are handled per run; the rest wait for the next one.`,
		Example: `  # Scheduled run using environment credentials
  modmirror run

  # Small manual run with verbose logs
  modmirror run --cap 2 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd.Flags(), cfg)
			return runSync(cmd, flags.dryRun)
		},
	}
	flags.register(cmd.Flags(), true)
	return cmd
}

func newPlanCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the versions the next run would release",
		Long:  "Plan is run --dry-run: it reads both sides and prints the missing versions per item without changing anything.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd.Flags(), cfg)
			return runSync(cmd, true)
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func runSync(cmd *cobra.Command, dryRun bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng, err := buildEngine(cmd, dryRun, cancel)
	if err != nil {
		return err
	}

	rep, runErr := eng.Run(ctx)
	printReport(cmd, rep)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return runErr
	}
	return nil
}

// buildEngine wires the clients and stages of a run from cfg.
func buildEngine(cmd *cobra.Command, dryRun bool, stopRun context.CancelFunc) (*engine.Engine, error) {
	hc := httpclient.New(httpclient.Config{
		Timeout:       cfg.HTTP.Timeout,
		MaxRetries:    cfg.HTTP.MaxRetries,
		BackoffFactor: cfg.HTTP.BackoffFactor,
		Logger:        logger,
	})

	nx := nexus.New(hc, nexus.Config{
		APIKey:     cfg.Nexus.APIKey,
		UploaderID: cfg.Nexus.UserID,
		GraphQLURL: cfg.Nexus.GraphQLURL,
		APIBase:    cfg.Nexus.APIBase,
		PageSize:   cfg.Nexus.PageSize,
		Logger:     logger,
	})

	repo, err := github.New(cfg.GitHub.Token, cfg.GitHub.APIBase, hc).Repository(cfg.GitHub.Repository)
	if err != nil {
		return nil, err
	}

	staging := download.NewStaging(cfg.Run.StagingDir)
	dl := download.New(staging, download.Options{
		ConnectTimeout: cfg.HTTP.ConnectTimeout,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
	}, logger)

	var target release.Target = repo
	if tui.ShouldUseTUI(cmd) {
		target = &progressTarget{Target: repo, stopRun: stopRun}
	}

	materializer := release.New(nx, target, dl, staging, release.Options{
		Workers:            cfg.Run.Workers,
		Pacing:             cfg.Run.Pacing,
		ExcludedCategories: cfg.Run.ExcludedCategories,
	}, logger)

	return engine.New(
		nx,
		repo,
		diff.New(nx, cfg.Run.Pacing, logger),
		materializer,
		newStore(cfg, repo),
		engine.Options{Cap: cfg.Run.Cap, DryRun: dryRun},
		logger,
	), nil
}

// newStore picks the catalog backend. repo may be nil for the file backend.
func newStore(c *config.Config, repo catalog.FileRepo) catalog.Store {
	if c.State.Backend == config.BackendRepo && repo != nil {
		return catalog.NewRepoStore(repo, c.State.Path, logger)
	}
	return &catalog.FileStore{Path: c.State.Path, Logger: logger}
}

// progressTarget shows a progress bar for each asset upload.
type progressTarget struct {
	release.Target
	stopRun context.CancelFunc
}

func (p *progressTarget) UploadAsset(ctx context.Context, releaseID int64, name string, r io.Reader, size int64, contentType string) (*github.Asset, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		asset *github.Asset
		err   error
	}
	progressCh := make(chan int64, 10)
	done := make(chan result, 1)

	go func() {
		a, err := p.Target.UploadAsset(ctx, releaseID, name, tui.NewProgressReader(r, size, progressCh), size, contentType)
		close(progressCh)
		done <- result{a, err}
	}()

	if err := tui.ShowProgress("Uploading "+name, size, progressCh); err != nil {
		cancel()
		if errors.Is(err, tui.ErrCancelled) {
			p.stopRun()
		}
		<-done
		return nil, err
	}
	res := <-done
	return res.asset, res.err
}

func printReport(cmd *cobra.Command, rep *engine.Report) {
	if rep == nil {
		return
	}
	if tui.ShouldUseTUI(cmd) {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderReport(rep))
		return
	}

	if rep.DryRun {
		header("Plan (%d of %d items with new versions)", rep.Processed(), rep.ItemsWithWork)
		for _, w := range rep.Plan {
			for _, mv := range w.Versions {
				fmt.Printf("  %s  %d files\n", naming.Tag(w.Item.UID, w.Item.Name, mv.Version), len(mv.Files))
			}
		}
	} else {
		for _, o := range rep.Outcomes {
			switch o.State {
			case release.Uploaded:
				ok("%s", o.Tag)
			case release.Skipped:
				warn("%s skipped: no files downloaded", o.Tag)
			default:
				fail("%s: %v", o.Tag, o.Err)
			}
		}
		header("Uploaded %d, skipped %d, failed %d", rep.Uploaded, rep.Skipped, rep.Failed)
	}
	if len(rep.Deferred) > 0 {
		warn("%d items deferred to a later run", len(rep.Deferred))
	}
	if len(rep.DroppedPages) > 0 {
		warn("catalog pages dropped after retries: %v", rep.DroppedPages)
	}
}
