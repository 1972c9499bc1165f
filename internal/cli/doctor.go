package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/schedule"
	"github.com/ppiankov/blogcast/internal/store"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, database, and credentials",
	Args:  cobra.NoArgs,
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(out, false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(out, true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(out, false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	src := cfg.Source.Username
	if cfg.Source.Kind == config.SourceKindFeed {
		src = cfg.Source.FeedURL
	}
	printCheck(out, true, "config.yaml (source %s: %s)", cfg.Source.Kind, src)
	if cfg.DryRun {
		printInfo(out, "dry_run is enabled, nothing will be published")
	}

	// Database
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		printCheck(out, false, "database: %v", err)
		ok = false
	} else {
		defer func() { _ = db.Close() }()
		counts, err := db.PartitionCount(cmd.Context())
		if err != nil {
			printCheck(out, false, "database %s: %v", cfg.Storage.Path, err)
			ok = false
		} else {
			printCheck(out, true, "database %s (x: %d, linkedin: %d posted this cycle)",
				cfg.Storage.Path, counts[config.PlatformX], counts[config.PlatformLinkedIn])
		}
	}

	// Redaction patterns
	if _, err := buildRedactor(cfg); err != nil {
		printCheck(out, false, "failures.redact: %v", err)
		ok = false
	}

	// Credentials
	if missing := xCredentials(cfg).Missing(); len(missing) > 0 {
		printCheck(out, false, "x credentials: missing %s", strings.Join(missing, ", "))
		ok = false
	} else {
		printCheck(out, true, "x credentials")
	}

	switch {
	case cfg.LinkedIn.AccessToken == "":
		printCheck(out, false, "linkedin credentials: %s is not set", cfg.LinkedIn.AccessTokenEnv)
		ok = false
	case cfg.LinkedIn.AuthorURN == "":
		printCheck(out, false, "linkedin credentials: linkedin.author_urn is not set")
		ok = false
	default:
		printCheck(out, true, "linkedin credentials (%s)", cfg.LinkedIn.AuthorURN)
	}

	// Schedule
	now := nowFunc()
	for _, p := range config.Platforms {
		guard, err := cfg.Guard(p)
		if err != nil {
			printCheck(out, false, "%s schedule: %v", p, err)
			ok = false
			continue
		}
		next, has := guard.Next(now)
		if !has {
			printInfo(out, "%s schedule: no slots, every run posts", p)
			continue
		}
		slots := lo.Map(guard.Slots(), func(s schedule.Slot, _ int) string { return s.String() })
		printInfo(out, "%s schedule: %s (grace %s)", p, strings.Join(slots, ", "), cfg.Schedule.Grace.Duration)
		if guard.Allow(now) {
			printInfo(out, "%s schedule: inside a slot now, next slot %s", p, next.Format("Mon 2006-01-02 15:04 UTC"))
		} else {
			printInfo(out, "%s schedule: next slot %s", p, next.Format("Mon 2006-01-02 15:04 UTC"))
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}
