package cli

import (
	"fmt"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/report"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/spf13/cobra"
)

var (
	failuresPlatform string
	failuresLimit    int
	failuresFormat   string
)

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Show the failure log, newest first",
	Args:  cobra.NoArgs,
	RunE:  failuresAction,
}

func init() {
	failuresCmd.Flags().StringVar(&failuresPlatform, "platform", "", "only show failures for this platform")
	failuresCmd.Flags().IntVar(&failuresLimit, "limit", 20, "maximum entries to show (0 for all)")
	failuresCmd.Flags().StringVar(&failuresFormat, "format", "terminal", "output format: terminal, json")
}

func failuresAction(cmd *cobra.Command, _ []string) error {
	if failuresPlatform != "" {
		if err := checkPlatform(failuresPlatform); err != nil {
			return err
		}
	}
	if failuresLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	f, ok := report.New(failuresFormat, !noColor)
	if !ok {
		return fmt.Errorf("unknown format %q (want terminal or json)", failuresFormat)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	entries, err := db.Failures(cmd.Context(), store.FailureFilter{
		Platform: failuresPlatform,
		Limit:    failuresLimit,
	})
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []store.Failure{}
	}

	return f.Format(cmd.OutOrStdout(), report.Report{Platform: failuresPlatform, Failures: entries})
}
