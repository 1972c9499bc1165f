package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/blogcast/internal/compose"
	"github.com/ppiankov/blogcast/internal/config"
	"github.com/ppiankov/blogcast/internal/publish"
	"github.com/ppiankov/blogcast/internal/redact"
	"github.com/ppiankov/blogcast/internal/rotation"
	"github.com/ppiankov/blogcast/internal/runner"
	"github.com/ppiankov/blogcast/internal/source"
	"github.com/ppiankov/blogcast/internal/store"
)

// Overridable in tests.
var (
	newRand            = func() rotation.RandSource { return rotation.NewRand(uint64(time.Now().UnixNano())) }
	nowFunc            = time.Now
	newPublisherForCfg = buildPublisher
)

func buildSource(cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceKindFeed:
		return source.NewFeed(cfg.Source.FeedURL)
	default:
		return source.NewDevTo(cfg.Source.Username, cfg.Source.APIBase, cfg.Source.PerPage)
	}
}

func buildComposer(cfg *config.Config, platform string) compose.Composer {
	if platform == config.PlatformLinkedIn {
		return compose.NewLinkedIn(cfg.LinkedIn.StaticTags, newRand())
	}
	return compose.NewX(cfg.X.Author)
}

func buildPublisher(cfg *config.Config, platform string) (publish.Publisher, error) {
	if platform == config.PlatformLinkedIn {
		return publish.NewLinkedIn(cfg.LinkedIn.AccessToken, cfg.LinkedIn.AuthorURN, cfg.LinkedIn.APIBase)
	}
	return publish.NewX(xCredentials(cfg), cfg.X.APIBase)
}

func xCredentials(cfg *config.Config) publish.XCredentials {
	return publish.XCredentials{
		ConsumerKey:    cfg.X.ConsumerKey,
		ConsumerSecret: cfg.X.ConsumerSecret,
		AccessToken:    cfg.X.AccessToken,
		AccessSecret:   cfg.X.AccessSecret,
	}
}

func buildRedactor(cfg *config.Config) (*redact.Redactor, error) {
	return redact.New(cfg.Failures.Redact,
		cfg.X.ConsumerKey, cfg.X.ConsumerSecret, cfg.X.AccessToken, cfg.X.AccessSecret,
		cfg.LinkedIn.AccessToken,
	)
}

// buildRunner wires a runner for platform from cfg. The publisher is only
// built when the run is live.
func buildRunner(cfg *config.Config, db *store.Store, platform string, dryRun bool, out io.Writer) (*runner.Runner, error) {
	src, err := buildSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	guard, err := cfg.Guard(platform)
	if err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	red, err := buildRedactor(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile failures.redact: %w", err)
	}

	var pub publish.Publisher
	if !dryRun {
		pub, err = newPublisherForCfg(cfg, platform)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}
	}

	return runner.New(runner.Options{
		Platform:  platform,
		Source:    src,
		Selector:  rotation.NewSelector(db, newRand()),
		Composer:  buildComposer(cfg, platform),
		Publisher: pub,
		Guard:     guard,
		Failures:  db,
		Redactor:  red,
		Exclusions: rotation.Exclusions{
			IDs:   cfg.Exclude.IDs,
			Years: cfg.Exclude.Years,
		},
		DryRun: dryRun,
		Out:    out,
		Now:    nowFunc,
	})
}

func checkPlatform(name string) error {
	if !config.IsPlatform(name) {
		return fmt.Errorf("unknown platform %q (want one of %v)", name, config.Platforms)
	}
	return nil
}
