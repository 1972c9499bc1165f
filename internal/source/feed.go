package source

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	feedSourceName   = "feed"
	feedFetchTimeout = 30 * time.Second
	feedMaxRetries   = 3
	feedDevToBase    = "https://dev.to/feed/"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// FeedSource reads candidate posts from an RSS/Atom feed, such as the
// per-author feed DEV.to publishes at https://dev.to/feed/{username}.
type FeedSource struct {
	url    string
	client *http.Client
}

// NewFeed creates a feed source for feedURL.
func NewFeed(feedURL string) (*FeedSource, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("feed: url is required")
	}
	return &FeedSource{
		url: feedURL,
		client: &http.Client{
			Timeout:   feedFetchTimeout,
			Transport: &feedTransport{base: http.DefaultTransport},
		},
	}, nil
}

// DevToFeedURL returns the DEV.to RSS feed URL for username.
func DevToFeedURL(username string) string {
	return feedDevToBase + strings.TrimPrefix(username, "@")
}

func (fs *FeedSource) Name() string {
	return feedSourceName
}

// feedTransport injects a User-Agent header into every request.
type feedTransport struct {
	base http.RoundTripper
}

func (t *feedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", devtoUserAgent)
	return t.base.RoundTrip(req)
}

// feedSleepFunc waits out a retry backoff. Overridable in tests.
var feedSleepFunc = sleepContext

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (fs *FeedSource) Fetch(ctx context.Context) ([]Post, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := range feedMaxRetries {
		posts, err := fs.fetchOnce(ctx)
		if err == nil {
			return posts, nil
		}
		if !isRetryableError(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		if attempt < feedMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s
			if err := feedSleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("feed: retry %s: %w", fs.url, err)
			}
		}
	}
	return nil, lastErr
}

func (fs *FeedSource) fetchOnce(ctx context.Context) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = fs.client
	feed, err := fp.ParseURLWithContext(fs.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", fs.url, err)
	}

	return postsFromFeed(feed), nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	s := err.Error()
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

func postsFromFeed(feed *gofeed.Feed) []Post {
	posts := make([]Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := itemID(item)
		if id == "" {
			continue
		}
		posts = append(posts, Post{
			ID:          id,
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			Tags:        itemTags(item),
			Description: stripHTML(item.Description),
			PublishedAt: itemPublishedTime(item),
		})
	}
	return posts
}

func itemPublishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func itemID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

func itemTags(item *gofeed.Item) []string {
	var tags []string
	for _, c := range item.Categories {
		tags = append(tags, ParseTags(c)...)
	}
	return tags
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
