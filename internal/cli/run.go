package cli

import (
	"fmt"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/spf13/cobra"
)

var (
	runDryRun bool
	runForce  bool
)

var runCmd = &cobra.Command{
	Use:   "run <x|linkedin>",
	Short: "Select, compose, and publish one post",
	Args:  cobra.ExactArgs(1),
	RunE:  runAction,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the message instead of publishing")
	runCmd.Flags().BoolVar(&runForce, "force", false, "ignore the posting schedule")
}

func runAction(cmd *cobra.Command, args []string) error {
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

	r, err := buildRunner(cfg, db, platform, runDryRun || cfg.DryRun, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, err = r.Run(cmd.Context(), runForce)
	return err
}
