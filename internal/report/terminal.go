package report

import (
	"fmt"
	"io"
	"strings"
)

// TerminalFormatter formats a report for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the history and failure sections to w.
func (f *TerminalFormatter) Format(w io.Writer, r Report) error {
	if r.History != nil || r.Failures == nil {
		f.writeHistory(w, r)
	}
	if r.Failures != nil {
		f.writeFailures(w, r)
	}
	return nil
}

func (f *TerminalFormatter) writeHistory(w io.Writer, r Report) {
	fmt.Fprintln(w, f.bold(fmt.Sprintf("--- %s: %d posted this cycle ---", r.Platform, len(r.History))))

	if len(r.History) == 0 {
		fmt.Fprintln(w, f.dim("  nothing posted since the last reset"))
		fmt.Fprintln(w)
		return
	}
	for _, e := range r.History {
		fmt.Fprintf(w, "  %s  %s\n", f.dim(formatTime(e.PostedAt)), e.PostID)
	}
	fmt.Fprintln(w)
}

func (f *TerminalFormatter) writeFailures(w io.Writer, r Report) {
	fmt.Fprintln(w, f.red(f.bold(fmt.Sprintf("--- Failures (%d) ---", len(r.Failures)))))
	if len(r.Failures) == 0 {
		fmt.Fprintln(w, f.dim("  no failures recorded"))
		return
	}
	for _, fl := range r.Failures {
		fmt.Fprintf(w, "  %s  %s\n", f.dim(formatTime(fl.CreatedAt)), fl.Error)
		if fl.Message != "" {
			for _, line := range strings.Split(fl.Message, "\n") {
				fmt.Fprintf(w, "      %s\n", f.dim(line))
			}
		}
	}
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) red(s string) string {
	if !f.color {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
