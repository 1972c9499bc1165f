package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/runner"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	watchPlatforms []string
	watchDryRun    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run on the watch.cron schedule until interrupted",
	Long:  "watch fires a run for each platform on every tick of watch.cron. Runs outside the platform's posting slots are skipped.",
	Args:  cobra.NoArgs,
	RunE:  watchAction,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchPlatforms, "platform", nil, "platforms to run (default watch.platforms)")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "print messages instead of publishing")
}

func watchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	platforms := cfg.Watch.Platforms
	if len(watchPlatforms) > 0 {
		platforms = watchPlatforms
	}
	for _, p := range platforms {
		if err := checkPlatform(p); err != nil {
			return err
		}
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	out := cmd.OutOrStdout()
	runners := make([]*runner.Runner, 0, len(platforms))
	for _, p := range platforms {
		r, err := buildRunner(cfg, db, p, watchDryRun || cfg.DryRun, out)
		if err != nil {
			return fmt.Errorf("%s: %w (choose platforms with --platform or watch.platforms)", p, err)
		}
		runners = append(runners, r)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "watching %v on %q (UTC)\n", platforms, cfg.Watch.Cron)
	return runWatch(ctx, cfg.Watch.Cron, out, func(ctx context.Context) {
		for _, r := range runners {
			// Failures are already reported and logged by the runner.
			_, _ = r.Run(ctx, false)
		}
	})
}

// runWatch calls tick on every firing of the cron expression until ctx is
// done. An overlapping tick is skipped rather than queued.
func runWatch(ctx context.Context, spec string, out io.Writer, tick func(context.Context)) error {
	logger := cron.PrintfLogger(watchLogger{out: out})
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() { tick(ctx) }); err != nil {
		return fmt.Errorf("parse watch.cron %q: %w", spec, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

type watchLogger struct {
	out io.Writer
}

func (l watchLogger) Printf(format string, args ...any) {
	fmt.Fprintf(l.out, "watch: "+format+"\n", args...)
}
