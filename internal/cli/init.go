package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/spf13/cobra"
)

const exampleEnvFile = ".env.example"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with example files",
	Args:  cobra.NoArgs,
	RunE:  initAction,
}

func initAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(out, configPath, []byte(exampleConfig), 0o644)
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	envPath := filepath.Join(configDir, exampleEnvFile)
	wrote, err = writeIfNotExists(out, envPath, []byte(exampleEnv), 0o600)
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	if created == 0 {
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Fprintf(out, "Initialized %s with %d config files.\n", configDir, created)
		fmt.Fprintf(out, "Copy %s to %s and fill in your credentials.\n", exampleEnvFile, config.DefaultEnvFile)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(out io.Writer, path string, data []byte, perm os.FileMode) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# blogcast configuration

source:
  kind: api          # api (DEV.to JSON API) or feed (RSS)
  username: your_devto_username
  # feed_url: https://dev.to/feed/your_devto_username

storage:
  path: .blogcast/blogcast.db

exclude:
  ids: []            # DEV.to article IDs never to post
  years: []          # e.g. [2019, 2020]

dry_run: false

schedule:
  grace: 15m
  slots:             # UTC; leave a platform out to post on every run
    x:
      - {day: tuesday, time: "07:30"}
      - {day: thursday, time: "16:00"}
    linkedin:
      - {day: wednesday, time: "08:00"}

watch:
  cron: "*/15 * * * *"

x:
  author: your_x_handle
  consumer_key_env: X_CONSUMER_KEY
  consumer_secret_env: X_CONSUMER_SECRET
  access_token_env: X_ACCESS_TOKEN
  access_secret_env: X_ACCESS_SECRET

linkedin:
  author_urn: "urn:li:person:your_member_id"
  access_token_env: LINKEDIN_ACCESS_TOKEN
  static_tags: [devops, programming]

failures:
  redact: []         # extra regexes to scrub from the failure log
`

const exampleEnv = `# blogcast credentials. Copy to .env; variables already set in the environment win.
X_CONSUMER_KEY=
X_CONSUMER_SECRET=
X_ACCESS_TOKEN=
X_ACCESS_SECRET=
LINKEDIN_ACCESS_TOKEN=
`
