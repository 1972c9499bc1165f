package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
)

const (
	devtoSourceName     = "devto"
	devtoAPIBase        = "https://dev.to"
	devtoFetchTimeout   = 30 * time.Second
	devtoUserAgent      = "blogcast/1.0 (+https://github.com/ppiankov/blogcast)"
	devtoDefaultPerPage = 1000
	devtoMaxPages       = 20
)

// DevToSource fetches published articles for one author from the DEV.to API.
type DevToSource struct {
	username string
	perPage  int
	baseURL  string
	client   *http.Client
}

// NewDevTo creates a DEV.to API source. baseURL may be empty for the public API.
func NewDevTo(username, baseURL string, perPage int) (*DevToSource, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("devto: username is required")
	}
	if baseURL == "" {
		baseURL = devtoAPIBase
	}
	if perPage <= 0 {
		perPage = devtoDefaultPerPage
	}
	return &DevToSource{
		username: username,
		perPage:  perPage,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: devtoFetchTimeout},
	}, nil
}

func (d *DevToSource) Name() string {
	return devtoSourceName
}

// devtoArticle is the subset of the article list payload we use.
type devtoArticle struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Tags        string    `json:"tags"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	User        struct {
		Username        string `json:"username"`
		TwitterUsername string `json:"twitter_username"`
	} `json:"user"`
}

// Fetch pages through the author's articles until a short page is returned.
func (d *DevToSource) Fetch(ctx context.Context) ([]Post, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var posts []Post
	for page := 1; page <= devtoMaxPages; page++ {
		var articles []devtoArticle
		err := requests.URL(d.baseURL).
			Path("/api/articles").
			Param("username", d.username).
			Param("page", strconv.Itoa(page)).
			Param("per_page", strconv.Itoa(d.perPage)).
			Client(d.client).
			UserAgent(devtoUserAgent).
			Accept("application/json").
			ToJSON(&articles).
			Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("devto: page %d: %w", page, err)
		}

		for _, a := range articles {
			posts = append(posts, postFromArticle(a))
		}
		if len(articles) < d.perPage {
			break
		}
	}

	return posts, nil
}

func postFromArticle(a devtoArticle) Post {
	return Post{
		ID:          strconv.FormatInt(a.ID, 10),
		Title:       strings.TrimSpace(a.Title),
		URL:         a.URL,
		Tags:        ParseTags(a.Tags),
		Description: strings.TrimSpace(a.Description),
		PublishedAt: a.PublishedAt,
		Author:      a.User.TwitterUsername,
	}
}
