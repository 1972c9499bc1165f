// Package publish posts composed messages to social platforms. Publishers
// are stateless per call and never retry; failures go back to the caller.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/ppiankov/blogcast/internal/compose"
)

const (
	publishTimeout   = 30 * time.Second
	publishUserAgent = "blogcast/1.0 (+https://github.com/ppiankov/blogcast)"
)

var (
	// ErrAuth means the platform rejected the credentials (HTTP 401/403).
	ErrAuth = errors.New("authentication failed")
	// ErrTransport covers network failures and unexpected responses.
	ErrTransport = errors.New("transport failed")
)

// Response identifies the post the platform created.
type Response struct {
	Platform string
	ID       string
}

// Publisher posts a message to one platform.
type Publisher interface {
	// Platform returns the platform identifier (e.g. "x").
	Platform() string

	// Publish sends msg and returns the created post.
	Publish(ctx context.Context, msg compose.Message) (*Response, error)
}

func classify(platform string, err error) error {
	if requests.HasStatusErr(err, http.StatusUnauthorized, http.StatusForbidden) {
		return fmt.Errorf("%s: %w: %w", platform, ErrAuth, err)
	}
	return fmt.Errorf("%s: %w: %w", platform, ErrTransport, err)
}
