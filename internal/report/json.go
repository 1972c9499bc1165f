package report

import (
	"encoding/json"
	"io"
)

type jsonReport struct {
	Platform string        `json:"platform,omitempty"`
	History  []jsonPosted  `json:"history,omitempty"`
	Failures []jsonFailure `json:"failures,omitempty"`
}

type jsonPosted struct {
	PostID   string `json:"post_id"`
	PostedAt string `json:"posted_at"`
}

type jsonFailure struct {
	ID        string `json:"id"`
	Platform  string `json:"platform"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
}

// JSONFormatter formats a report as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the report as indented JSON to w.
func (f *JSONFormatter) Format(w io.Writer, r Report) error {
	out := jsonReport{Platform: r.Platform}
	for _, e := range r.History {
		out.History = append(out.History, jsonPosted{
			PostID:   e.PostID,
			PostedAt: e.PostedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	for _, fl := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{
			ID:        fl.ID,
			Platform:  fl.Platform,
			Error:     fl.Error,
			Message:   fl.Message,
			CreatedAt: fl.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
