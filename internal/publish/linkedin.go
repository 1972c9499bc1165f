package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/ppiankov/blogcast/internal/compose"
)

const (
	linkedInPlatform = "linkedin"
	linkedInAPIBase  = "https://api.linkedin.com"
)

// LinkedInPublisher shares posts as the configured member or organization
// through the UGC Posts API using a bearer token.
type LinkedInPublisher struct {
	token     string
	authorURN string
	baseURL   string
	client    *http.Client
}

// NewLinkedIn creates a LinkedIn publisher. authorURN is the sharing entity,
// e.g. "urn:li:person:abc123".
func NewLinkedIn(token, authorURN, baseURL string) (*LinkedInPublisher, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("linkedin: access token is required")
	}
	if !strings.HasPrefix(authorURN, "urn:li:") {
		return nil, fmt.Errorf("linkedin: author %q is not a urn:li: URN", authorURN)
	}
	if baseURL == "" {
		baseURL = linkedInAPIBase
	}
	return &LinkedInPublisher{
		token:     token,
		authorURN: authorURN,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: publishTimeout},
	}, nil
}

func (l *LinkedInPublisher) Platform() string {
	return linkedInPlatform
}

type ugcPost struct {
	Author          string        `json:"author"`
	LifecycleState  string        `json:"lifecycleState"`
	SpecificContent ugcContent    `json:"specificContent"`
	Visibility      ugcVisibility `json:"visibility"`
}

type ugcContent struct {
	ShareContent ugcShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText    `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []ugcMedia `json:"media,omitempty"`
}

type ugcMedia struct {
	Status      string   `json:"status"`
	OriginalURL string   `json:"originalUrl"`
	Title       *ugcText `json:"title,omitempty"`
	Description *ugcText `json:"description,omitempty"`
}

type ugcText struct {
	Text string `json:"text"`
}

type ugcVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

func (l *LinkedInPublisher) payload(msg compose.Message) ugcPost {
	share := ugcShareContent{
		ShareCommentary:    ugcText{Text: msg.Text},
		ShareMediaCategory: "NONE",
	}
	if msg.Link != nil && msg.Link.URL != "" {
		media := ugcMedia{Status: "READY", OriginalURL: msg.Link.URL}
		if msg.Link.Title != "" {
			media.Title = &ugcText{Text: msg.Link.Title}
		}
		if msg.Link.Description != "" {
			media.Description = &ugcText{Text: msg.Link.Description}
		}
		share.ShareMediaCategory = "ARTICLE"
		share.Media = []ugcMedia{media}
	}

	return ugcPost{
		Author:          l.authorURN,
		LifecycleState:  "PUBLISHED",
		SpecificContent: ugcContent{ShareContent: share},
		Visibility:      ugcVisibility{MemberNetworkVisibility: "PUBLIC"},
	}
}

func (l *LinkedInPublisher) Publish(ctx context.Context, msg compose.Message) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var id string
	err := requests.URL(l.baseURL).
		Path("/v2/ugcPosts").
		Client(l.client).
		UserAgent(publishUserAgent).
		Header("Authorization", "Bearer "+l.token).
		Header("X-Restli-Protocol-Version", "2.0.0").
		BodyJSON(l.payload(msg)).
		Handle(func(res *http.Response) error {
			id = res.Header.Get("X-RestLi-Id")
			var body struct {
				ID string `json:"id"`
			}
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("decode response: %w", err)
			}
			if body.ID != "" {
				id = body.ID
			}
			return nil
		}).
		Fetch(ctx)
	if err != nil {
		return nil, classify(linkedInPlatform, err)
	}

	return &Response{Platform: linkedInPlatform, ID: id}, nil
}
