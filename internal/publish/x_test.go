package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/blogcast/internal/compose"
)

func testXCreds() XCredentials {
	return XCredentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessSecret: "as"}
}

func TestNewX_MissingCredentials(t *testing.T) {
	_, err := NewX(XCredentials{ConsumerKey: "ck"}, "")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "access secret") {
		t.Errorf("error should name missing fields: %v", err)
	}
}

func TestXPublisher_Platform(t *testing.T) {
	x, _ := NewX(testXCreds(), "")
	if x.Platform() != "x" {
		t.Errorf("platform = %q, want x", x.Platform())
	}
}

func TestXPublish_SignsAndPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		auth := r.Header.Get("Authorization")
		for _, want := range []string{"OAuth ", `oauth_consumer_key="ck"`, `oauth_token="at"`, `oauth_signature_method="HMAC-SHA1"`, "oauth_signature="} {
			if !strings.Contains(auth, want) {
				t.Errorf("authorization header %q missing %q", auth, want)
			}
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["text"] != "RT: hello https://dev.to/x" {
			t.Errorf("text = %q", body["text"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1789","text":"RT: hello https://t.co/abc"}}`))
	}))
	defer srv.Close()

	x, err := NewX(testXCreds(), srv.URL)
	if err != nil {
		t.Fatalf("NewX: %v", err)
	}
	resp, err := x.Publish(context.Background(), compose.Message{Platform: "x", Text: "RT: hello https://dev.to/x"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if resp.ID != "1789" || resp.Platform != "x" {
		t.Errorf("response = %+v", resp)
	}
}

func TestXPublish_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	x, _ := NewX(testXCreds(), srv.URL)
	_, err := x.Publish(context.Background(), compose.Message{Text: "hi"})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}

func TestXPublish_ServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	x, _ := NewX(testXCreds(), srv.URL)
	_, err := x.Publish(context.Background(), compose.Message{Text: "hi"})
	if !errors.Is(err, ErrTransport) || errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if calls != 1 {
		t.Errorf("publisher must not retry, got %d calls", calls)
	}
}
