// Package redact scrubs credentials from text before it is stored in the
// failure log.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// DefaultPatterns match credentials that can surface in HTTP error text.
var DefaultPatterns = []string{
	`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`,
	`oauth_(?:token|signature|consumer_key|nonce)="[^"]*"`,
}

// Redactor replaces pattern matches and literal secret values.
type Redactor struct {
	patterns []*regexp.Regexp
	secrets  []string
}

// Compile compiles a list of regex pattern strings into compiled regexps.
// Returns an error if any pattern is invalid.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// New builds a redactor from DefaultPatterns, the extra patterns, and the
// literal secrets. Empty secrets are ignored.
func New(patterns []string, secrets ...string) (*Redactor, error) {
	compiled, err := Compile(append(append([]string{}, DefaultPatterns...), patterns...))
	if err != nil {
		return nil, err
	}
	r := &Redactor{patterns: compiled}
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			r.secrets = append(r.secrets, s)
		}
	}
	return r, nil
}

// Apply replaces every secret and pattern match in text with [REDACTED].
// A nil Redactor returns text unchanged.
func (r *Redactor) Apply(text string) string {
	if r == nil {
		return text
	}
	for _, s := range r.secrets {
		text = strings.ReplaceAll(text, s, redactedPlaceholder)
	}
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}
