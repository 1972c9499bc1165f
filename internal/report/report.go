// Package report formats tracker history and the failure log for display.
package report

import (
	"io"
	"time"

	"github.com/ppiankov/blogcast/internal/store"
)

// Report is the input for a formatter. Either section may be empty.
type Report struct {
	Platform string          // empty when the report spans platforms
	History  []store.Posted  // tracker partition entries
	Failures []store.Failure // failure log entries
}

// Formatter writes a formatted report to w.
type Formatter interface {
	Format(w io.Writer, r Report) error
}

// New returns the formatter for format: "terminal" (default) or "json".
func New(format string, color bool) (Formatter, bool) {
	switch format {
	case "", "terminal":
		return NewTerminal(color), true
	case "json":
		return NewJSON(), true
	default:
		return nil, false
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
