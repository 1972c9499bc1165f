package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

// --- Load tests ---

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_X_KEY", "ck")
	t.Setenv("TEST_X_SECRET", "cs")
	t.Setenv("TEST_X_TOKEN", "at")
	t.Setenv("TEST_X_TOKEN_SECRET", "as")
	t.Setenv("TEST_LI_TOKEN", "li-token")

	writeTestFile(t, dir, DefaultConfigFile, `
source:
  kind: api
  username: jane
  api_base: http://localhost:9999
  per_page: 100
storage:
  path: custom.db
exclude:
  ids: ["101", "102"]
  years: [2019, 2020]
dry_run: true
schedule:
  grace: 10m
  slots:
    x:
      - {day: monday, time: "07:30"}
      - {day: thursday, time: "17:00"}
    linkedin:
      - {day: tuesday, time: "08:00"}
watch:
  cron: "0,30 * * * *"
  platforms: [linkedin]
x:
  author: jane_dev
  consumer_key_env: TEST_X_KEY
  consumer_secret_env: TEST_X_SECRET
  access_token_env: TEST_X_TOKEN
  access_secret_env: TEST_X_TOKEN_SECRET
linkedin:
  author_urn: "urn:li:person:abc"
  access_token_env: TEST_LI_TOKEN
  static_tags: [Programming, SoftwareEngineering]
failures:
  redact: ["sk-[a-z]+"]
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source.Username != "jane" || cfg.Source.PerPage != 100 || cfg.Source.APIBase != "http://localhost:9999" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Storage.Path != "custom.db" {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if len(cfg.Exclude.IDs) != 2 || cfg.Exclude.IDs[1] != "102" {
		t.Errorf("exclude ids = %v", cfg.Exclude.IDs)
	}
	if len(cfg.Exclude.Years) != 2 || cfg.Exclude.Years[0] != 2019 {
		t.Errorf("exclude years = %v", cfg.Exclude.Years)
	}
	if !cfg.DryRun {
		t.Error("dry_run = false, want true")
	}
	if cfg.Schedule.Grace.Duration != 10*time.Minute {
		t.Errorf("grace = %v", cfg.Schedule.Grace.Duration)
	}
	if cfg.Watch.Cron != "0,30 * * * *" || len(cfg.Watch.Platforms) != 1 {
		t.Errorf("watch = %+v", cfg.Watch)
	}

	if cfg.X.ConsumerKey != "ck" || cfg.X.ConsumerSecret != "cs" || cfg.X.AccessToken != "at" || cfg.X.AccessSecret != "as" {
		t.Errorf("x credentials not resolved: %+v", cfg.X)
	}
	if cfg.LinkedIn.AccessToken != "li-token" {
		t.Errorf("linkedin token = %q", cfg.LinkedIn.AccessToken)
	}
	if len(cfg.LinkedIn.StaticTags) != 2 {
		t.Errorf("static tags = %v", cfg.LinkedIn.StaticTags)
	}

	slots, err := cfg.Slots(PlatformX)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 2 || slots[0].Day != time.Monday || slots[0].Minute != 450 {
		t.Errorf("x slots = %v", slots)
	}

	g, err := cfg.Guard(PlatformLinkedIn)
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	// 2026-03-03 is a Tuesday.
	if !g.Allow(time.Date(2026, 3, 3, 8, 9, 0, 0, time.UTC)) {
		t.Error("linkedin guard should allow Tuesday 08:09")
	}
	if g.Allow(time.Date(2026, 3, 3, 8, 11, 0, 0, time.UTC)) {
		t.Error("linkedin guard should reject Tuesday 08:11 with 10m grace")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, DefaultConfigFile, `
source:
  username: jane
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Kind != SourceKindAPI {
		t.Errorf("kind = %q, want api", cfg.Source.Kind)
	}
	if cfg.Storage.Path != DefaultStoragePath {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if cfg.Schedule.Grace.Duration != 15*time.Minute {
		t.Errorf("grace = %v, want 15m", cfg.Schedule.Grace.Duration)
	}
	if cfg.Watch.Cron != DefaultWatchCron {
		t.Errorf("cron = %q", cfg.Watch.Cron)
	}
	if len(cfg.Watch.Platforms) != 2 {
		t.Errorf("watch platforms = %v", cfg.Watch.Platforms)
	}
	if cfg.X.ConsumerKeyEnv != DefaultXConsumerKeyEnv || cfg.LinkedIn.AccessTokenEnv != DefaultLinkedInTokenEnv {
		t.Errorf("default env names not applied: %+v %+v", cfg.X, cfg.LinkedIn)
	}
	if cfg.DryRun {
		t.Error("dry_run should default to false")
	}
}

func TestLoad_FeedDefaultsFromUsername(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, DefaultConfigFile, `
source:
  kind: feed
  username: jane
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.FeedURL != "https://dev.to/feed/jane" {
		t.Errorf("feed url = %q", cfg.Source.FeedURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLOGCAST_TEST_LI", "")
	os.Unsetenv("BLOGCAST_TEST_LI")
	t.Setenv("BLOGCAST_TEST_X", "from-env")

	writeTestFile(t, dir, DefaultConfigFile, `
source:
  username: jane
x:
  consumer_key_env: BLOGCAST_TEST_X
linkedin:
  access_token_env: BLOGCAST_TEST_LI
`)
	writeTestFile(t, dir, DefaultEnvFile, "BLOGCAST_TEST_LI=from-dotenv\nBLOGCAST_TEST_X=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("BLOGCAST_TEST_LI") })

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LinkedIn.AccessToken != "from-dotenv" {
		t.Errorf("linkedin token = %q, want from-dotenv", cfg.LinkedIn.AccessToken)
	}
	if cfg.X.ConsumerKey != "from-env" {
		t.Errorf("existing env should win over .env, got %q", cfg.X.ConsumerKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envDryRun, "true")
	t.Setenv(envExcludeIDs, "7, 8")
	t.Setenv(envExcludeYears, "2021,2022")

	writeTestFile(t, dir, DefaultConfigFile, `
source:
  username: jane
exclude:
  ids: ["1"]
  years: [2020]
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.DryRun {
		t.Error("dry run env override not applied")
	}
	if strings.Join(cfg.Exclude.IDs, ",") != "1,7,8" {
		t.Errorf("ids = %v", cfg.Exclude.IDs)
	}
	if len(cfg.Exclude.Years) != 3 || cfg.Exclude.Years[2] != 2022 {
		t.Errorf("years = %v", cfg.Exclude.Years)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{envDryRun, "maybe", envDryRun},
		{envExcludeYears, "twenty", "invalid year"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv(tt.key, tt.value)
			writeTestFile(t, dir, DefaultConfigFile, "source:\n  username: jane\n")

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing username", "source:\n  kind: api\n", "source.username"},
		{"unknown kind", "source:\n  kind: ftp\n  username: jane\n", "unknown kind"},
		{"feed without url", "source:\n  kind: feed\n", "source.feed_url"},
		{"bad year", "source:\n  username: jane\nexclude:\n  years: [20]\n", "exclude.years"},
		{"unknown slot platform", "source:\n  username: jane\nschedule:\n  slots:\n    mastodon: [{day: monday, time: \"07:30\"}]\n", "unknown platform"},
		{"bad slot", "source:\n  username: jane\nschedule:\n  slots:\n    x: [{day: someday, time: \"07:30\"}]\n", "schedule.slots.x[0]"},
		{"unknown watch platform", "source:\n  username: jane\nwatch:\n  platforms: [myspace]\n", "watch.platforms"},
		{"bad urn", "source:\n  username: jane\nlinkedin:\n  author_urn: abc\n", "linkedin.author_urn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTestFile(t, dir, DefaultConfigFile, tt.yaml)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, DefaultConfigFile, "source:\n  username: jane\nschedule:\n  grace: soon\n")

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if want := "parse duration"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if want := "read config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, DefaultConfigFile, `{{{invalid`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if want := "parse config"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
	if want := "config dir is required"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want containing %q", err, want)
	}
}

func TestIsPlatform(t *testing.T) {
	if !IsPlatform("x") || !IsPlatform("linkedin") || IsPlatform("facebook") {
		t.Error("IsPlatform mismatch")
	}
}
