package publish

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/dghubble/oauth1"
	"github.com/ppiankov/blogcast/internal/compose"
)

const (
	xPlatform = "x"
	xAPIBase  = "https://api.twitter.com"
)

// XCredentials are the OAuth 1.0a user-context keys for the X API.
type XCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Missing returns the names of empty credential fields.
func (c XCredentials) Missing() []string {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if c.AccessSecret == "" {
		missing = append(missing, "access secret")
	}
	return missing
}

// XPublisher creates posts through the X v2 API, signing every request.
type XPublisher struct {
	config  *oauth1.Config
	token   *oauth1.Token
	baseURL string
	base    *http.Client
}

// NewX creates an X publisher. baseURL may be empty for the public API.
func NewX(creds XCredentials, baseURL string) (*XPublisher, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, errors.New("x: missing credentials: " + strings.Join(missing, ", "))
	}
	if baseURL == "" {
		baseURL = xAPIBase
	}
	return &XPublisher{
		config:  oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret),
		token:   oauth1.NewToken(creds.AccessToken, creds.AccessSecret),
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    &http.Client{Timeout: publishTimeout},
	}, nil
}

func (x *XPublisher) Platform() string {
	return xPlatform
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

func (x *XPublisher) Publish(ctx context.Context, msg compose.Message) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// The signing client wraps the base client's transport.
	client := x.config.Client(context.WithValue(ctx, oauth1.HTTPClient, x.base), x.token)

	var resp tweetResponse
	err := requests.URL(x.baseURL).
		Path("/2/tweets").
		Client(client).
		UserAgent(publishUserAgent).
		BodyJSON(map[string]string{"text": msg.Text}).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return nil, classify(xPlatform, err)
	}

	return &Response{Platform: xPlatform, ID: resp.Data.ID}, nil
}
