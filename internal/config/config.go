package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ppiankov/blogcast/internal/schedule"
	"github.com/ppiankov/blogcast/internal/source"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultEnvFile     = ".env"
	DefaultStoragePath = ".blogcast/blogcast.db"
	DefaultSourceKind  = SourceKindAPI
	DefaultWatchCron   = "*/15 * * * *"

	DefaultXConsumerKeyEnv    = "X_CONSUMER_KEY"
	DefaultXConsumerSecretEnv = "X_CONSUMER_SECRET"
	DefaultXAccessTokenEnv    = "X_ACCESS_TOKEN"
	DefaultXAccessSecretEnv   = "X_ACCESS_SECRET"
	DefaultLinkedInTokenEnv   = "LINKEDIN_ACCESS_TOKEN"

	SourceKindAPI  = "api"
	SourceKindFeed = "feed"

	PlatformX        = "x"
	PlatformLinkedIn = "linkedin"

	envDryRun       = "BLOGCAST_DRY_RUN"
	envExcludeIDs   = "BLOGCAST_EXCLUDE_IDS"
	envExcludeYears = "BLOGCAST_EXCLUDE_YEARS"
)

// Platforms lists every supported publishing target.
var Platforms = []string{PlatformX, PlatformLinkedIn}

// Duration wraps time.Duration for YAML unmarshaling from strings like "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Storage  StorageConfig  `yaml:"storage"`
	Exclude  ExcludeConfig  `yaml:"exclude"`
	DryRun   bool           `yaml:"dry_run"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Watch    WatchConfig    `yaml:"watch"`
	X        XConfig        `yaml:"x"`
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Failures FailuresConfig `yaml:"failures"`
}

type SourceConfig struct {
	Kind     string `yaml:"kind"`
	Username string `yaml:"username"`
	APIBase  string `yaml:"api_base"`
	FeedURL  string `yaml:"feed_url"`
	PerPage  int    `yaml:"per_page"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ExcludeConfig struct {
	IDs   []string `yaml:"ids"`
	Years []int    `yaml:"years"`
}

type ScheduleConfig struct {
	Grace Duration                `yaml:"grace"`
	Slots map[string][]SlotConfig `yaml:"slots"`
}

type SlotConfig struct {
	Day  string `yaml:"day"`
	Time string `yaml:"time"`
}

type WatchConfig struct {
	Cron      string   `yaml:"cron"`
	Platforms []string `yaml:"platforms"`
}

type XConfig struct {
	Author            string `yaml:"author"`
	APIBase           string `yaml:"api_base"`
	ConsumerKeyEnv    string `yaml:"consumer_key_env"`
	ConsumerSecretEnv string `yaml:"consumer_secret_env"`
	AccessTokenEnv    string `yaml:"access_token_env"`
	AccessSecretEnv   string `yaml:"access_secret_env"`

	// Resolved from env vars at load time.
	ConsumerKey    string `yaml:"-"`
	ConsumerSecret string `yaml:"-"`
	AccessToken    string `yaml:"-"`
	AccessSecret   string `yaml:"-"`
}

type LinkedInConfig struct {
	AuthorURN      string   `yaml:"author_urn"`
	APIBase        string   `yaml:"api_base"`
	AccessTokenEnv string   `yaml:"access_token_env"`
	StaticTags     []string `yaml:"static_tags"`

	// Resolved from env var at load time.
	AccessToken string `yaml:"-"`
}

type FailuresConfig struct {
	Redact []string `yaml:"redact"`
}

// Load reads config.yaml from dir, loads dir/.env into the environment
// (existing variables win), applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	envPath := filepath.Join(dir, DefaultEnvFile)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
	}

	applyDefaults(&cfg)
	if err := resolveEnv(&cfg); err != nil {
		return nil, fmt.Errorf("resolve env: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = DefaultSourceKind
	}
	if cfg.Source.Kind == SourceKindFeed && cfg.Source.FeedURL == "" && cfg.Source.Username != "" {
		cfg.Source.FeedURL = source.DevToFeedURL(cfg.Source.Username)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Schedule.Grace.Duration == 0 {
		cfg.Schedule.Grace.Duration = schedule.DefaultGrace
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = DefaultWatchCron
	}
	if len(cfg.Watch.Platforms) == 0 {
		cfg.Watch.Platforms = slices.Clone(Platforms)
	}
	if cfg.X.ConsumerKeyEnv == "" {
		cfg.X.ConsumerKeyEnv = DefaultXConsumerKeyEnv
	}
	if cfg.X.ConsumerSecretEnv == "" {
		cfg.X.ConsumerSecretEnv = DefaultXConsumerSecretEnv
	}
	if cfg.X.AccessTokenEnv == "" {
		cfg.X.AccessTokenEnv = DefaultXAccessTokenEnv
	}
	if cfg.X.AccessSecretEnv == "" {
		cfg.X.AccessSecretEnv = DefaultXAccessSecretEnv
	}
	if cfg.LinkedIn.AccessTokenEnv == "" {
		cfg.LinkedIn.AccessTokenEnv = DefaultLinkedInTokenEnv
	}
}

func resolveEnv(cfg *Config) error {
	cfg.X.ConsumerKey = os.Getenv(cfg.X.ConsumerKeyEnv)
	cfg.X.ConsumerSecret = os.Getenv(cfg.X.ConsumerSecretEnv)
	cfg.X.AccessToken = os.Getenv(cfg.X.AccessTokenEnv)
	cfg.X.AccessSecret = os.Getenv(cfg.X.AccessSecretEnv)
	cfg.LinkedIn.AccessToken = os.Getenv(cfg.LinkedIn.AccessTokenEnv)

	if v := os.Getenv(envDryRun); v != "" {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envDryRun, err)
		}
		cfg.DryRun = dry
	}

	if v := os.Getenv(envExcludeIDs); v != "" {
		cfg.Exclude.IDs = append(cfg.Exclude.IDs, source.ParseTags(v)...)
	}

	if v := os.Getenv(envExcludeYears); v != "" {
		for _, s := range source.ParseTags(v) {
			year, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s: invalid year %q", envExcludeYears, s)
			}
			cfg.Exclude.Years = append(cfg.Exclude.Years, year)
		}
	}

	return nil
}

func validate(cfg *Config) error {
	switch cfg.Source.Kind {
	case SourceKindAPI:
		if strings.TrimSpace(cfg.Source.Username) == "" {
			return errors.New("source.username: required for kind api")
		}
	case SourceKindFeed:
		if cfg.Source.FeedURL == "" {
			return errors.New("source.feed_url: required for kind feed (or set source.username)")
		}
	default:
		return fmt.Errorf("source.kind: unknown kind %q (want api or feed)", cfg.Source.Kind)
	}

	if cfg.Source.PerPage < 0 {
		return errors.New("source.per_page: must not be negative")
	}

	for _, y := range cfg.Exclude.Years {
		if y < 1970 || y > 9999 {
			return fmt.Errorf("exclude.years: %d is not a valid year", y)
		}
	}

	if cfg.Schedule.Grace.Duration < 0 {
		return errors.New("schedule.grace: must not be negative")
	}
	for platform := range cfg.Schedule.Slots {
		if !IsPlatform(platform) {
			return fmt.Errorf("schedule.slots: unknown platform %q", platform)
		}
		if _, err := cfg.Slots(platform); err != nil {
			return err
		}
	}

	for _, p := range cfg.Watch.Platforms {
		if !IsPlatform(p) {
			return fmt.Errorf("watch.platforms: unknown platform %q", p)
		}
	}

	if cfg.LinkedIn.AuthorURN != "" && !strings.HasPrefix(cfg.LinkedIn.AuthorURN, "urn:li:") {
		return fmt.Errorf("linkedin.author_urn: %q is not a urn:li: URN", cfg.LinkedIn.AuthorURN)
	}

	return nil
}

// IsPlatform reports whether name is a supported platform.
func IsPlatform(name string) bool {
	return slices.Contains(Platforms, name)
}

// Slots parses the configured posting slots for platform.
func (c *Config) Slots(platform string) ([]schedule.Slot, error) {
	var slots []schedule.Slot
	for i, sc := range c.Schedule.Slots[platform] {
		s, err := schedule.ParseSlot(sc.Day, sc.Time)
		if err != nil {
			return nil, fmt.Errorf("schedule.slots.%s[%d]: %w", platform, i, err)
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// Guard builds the schedule guard for platform.
func (c *Config) Guard(platform string) (*schedule.Guard, error) {
	slots, err := c.Slots(platform)
	if err != nil {
		return nil, err
	}
	return schedule.NewGuard(slots, c.Schedule.Grace.Duration)
}
