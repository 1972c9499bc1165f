package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const testFeedXML = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>DEV Community: Jane</title>
    <item>
      <title>Shipping Go binaries</title>
      <link>https://dev.to/jane/shipping-go-binaries</link>
      <guid>https://dev.to/jane/shipping-go-binaries</guid>
      <pubDate>Mon, 04 Mar 2024 10:00:00 +0000</pubDate>
      <description>&lt;p&gt;How we &lt;b&gt;ship&lt;/b&gt; Go.&lt;/p&gt;</description>
      <category>go</category>
      <category>devops</category>
    </item>
    <item>
      <title>No guid here</title>
      <link>https://dev.to/jane/no-guid</link>
      <pubDate>Tue, 05 Mar 2024 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestNewFeed_Empty(t *testing.T) {
	if _, err := NewFeed(""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestFeedSource_Name(t *testing.T) {
	fs, _ := NewFeed("https://dev.to/feed/jane")
	if fs.Name() != "feed" {
		t.Errorf("name = %q, want feed", fs.Name())
	}
}

func TestDevToFeedURL(t *testing.T) {
	if got := DevToFeedURL("@jane"); got != "https://dev.to/feed/jane" {
		t.Errorf("DevToFeedURL = %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple tags", "<p>hello</p>", "hello"},
		{"entities", "&amp; &lt; &gt;", "& < >"},
		{"collapses whitespace", "<p>a</p>\n\n<p>b</p>", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("wrap: %w", gofeed.HTTPError{StatusCode: 503}), true},
		{fmt.Errorf("wrap: %w", gofeed.HTTPError{StatusCode: 404}), false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("xml syntax error"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFeedFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != devtoUserAgent {
			t.Errorf("user agent = %q", ua)
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, testFeedXML)
	}))
	defer ts.Close()

	fs, err := NewFeed(ts.URL)
	if err != nil {
		t.Fatalf("NewFeed: %v", err)
	}
	posts, err := fs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}

	p := posts[0]
	if p.ID != "https://dev.to/jane/shipping-go-binaries" {
		t.Errorf("id = %q", p.ID)
	}
	if p.Description != "How we ship Go." {
		t.Errorf("description = %q", p.Description)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" || p.Tags[1] != "devops" {
		t.Errorf("tags = %v", p.Tags)
	}
	if p.Year() != 2024 {
		t.Errorf("year = %d, want 2024", p.Year())
	}

	if posts[1].ID != "https://dev.to/jane/no-guid" {
		t.Errorf("fallback id = %q, want link", posts[1].ID)
	}
}

func TestFeedFetch_TransientThenSuccess(t *testing.T) {
	oldSleep := feedSleepFunc
	feedSleepFunc = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { feedSleepFunc = oldSleep })

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, testFeedXML)
	}))
	defer ts.Close()

	fs, _ := NewFeed(ts.URL)
	posts, err := fs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFeedFetch_PermanentFailure(t *testing.T) {
	oldSleep := feedSleepFunc
	feedSleepFunc = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { feedSleepFunc = oldSleep })

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	fs, _ := NewFeed(ts.URL)
	if _, err := fs.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepContext(ctx, 10*time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("sleep ignored cancellation: %v", elapsed)
	}
}

func TestFeedFetch_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	oldSleep := feedSleepFunc
	feedSleepFunc = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}
	t.Cleanup(func() { feedSleepFunc = oldSleep })

	fs, _ := NewFeed(ts.URL)
	start := time.Now()
	_, err := fs.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch waited out the backoff: %v", elapsed)
	}
}
