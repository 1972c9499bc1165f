// Package cli provides the command-line interface for blogcast.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const envConfigDir = "BLOGCAST_CONFIG_DIR"

var (
	configDir string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:          "blogcast",
	Short:        "Rotate DEV.to posts onto X and LinkedIn",
	Long:         "blogcast picks a post from a DEV.to author's catalogue, composes a platform-specific message, publishes it to X or LinkedIn, and remembers what was posted so posts rotate without repeats.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blogcast %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir(), "config directory (env "+envConfigDir+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}

func defaultConfigDir() string {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blogcast"
	}
	return filepath.Join(home, ".blogcast")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
