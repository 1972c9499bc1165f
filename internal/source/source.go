package source

import (
	"context"
	"strings"
	"time"
)

// Post is a candidate blog post fetched from a content source.
type Post struct {
	ID          string    // source-specific unique ID
	Title       string    // post title
	URL         string    // canonical link to the post
	Tags        []string  // tags as published, in order
	Description string    // short summary or excerpt
	PublishedAt time.Time // publication timestamp
	Author      string    // author handle on the target platform, if known
}

// Year returns the UTC publication year, or 0 when the timestamp is unknown.
func (p Post) Year() int {
	if p.PublishedAt.IsZero() {
		return 0
	}
	return p.PublishedAt.UTC().Year()
}

// Source fetches the full list of candidate posts.
type Source interface {
	// Name returns the source identifier (e.g. "devto").
	Name() string

	// Fetch returns every post the source currently publishes.
	Fetch(ctx context.Context) ([]Post, error)
}

// ParseTags splits a comma-separated tag list, trimming whitespace and
// dropping empty entries.
func ParseTags(list string) []string {
	var tags []string
	for _, t := range strings.Split(list, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
