package cli

import (
	"fmt"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <x|linkedin>",
	Short: "Start a new rotation cycle for a platform",
	Args:  cobra.ExactArgs(1),
	RunE:  resetAction,
}

func resetAction(cmd *cobra.Command, args []string) error {
	platform := args[0]
	if err := checkPlatform(platform); err != nil {
		return err
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

	n, err := db.ClearPosted(cmd.Context(), platform)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s entries.\n", n, platform)
	return nil
}
