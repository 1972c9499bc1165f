package cli

import (
	"fmt"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/report"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/spf13/cobra"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history <x|linkedin>",
	Short: "Show the posts used in the current rotation cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  historyAction,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "terminal", "output format: terminal, json")
}

func historyAction(cmd *cobra.Command, args []string) error {
	platform := args[0]
	if err := checkPlatform(platform); err != nil {
		return err
	}

	f, ok := report.New(historyFormat, !noColor)
	if !ok {
		return fmt.Errorf("unknown format %q (want terminal or json)", historyFormat)
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

	entries, err := db.History(cmd.Context(), platform)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []store.Posted{}
	}

	return f.Format(cmd.OutOrStdout(), report.Report{Platform: platform, History: entries})
}
