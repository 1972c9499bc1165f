// Package compose turns a blog post into a platform-specific social message.
package compose

import (
	"strings"
	"unicode"

	"github.com/ppiankov/blogcast/internal/source"
	"github.com/samber/lo"
)

// Message is a composed social post. It is never persisted.
type Message struct {
	Platform string
	Text     string
	Link     *Link // link preview, for platforms that render one
}

// Link is a structured link preview attached to a message.
type Link struct {
	Title       string
	URL         string
	Description string
}

// Composer builds a message for one platform.
type Composer interface {
	Compose(p source.Post) Message
}

// RandSource picks an index in [0, n).
type RandSource interface {
	IntN(n int) int
}

// Hashtags normalizes tags into hashtag words: leading '#', whitespace and
// hyphens are removed, empty results are dropped, and duplicates are
// removed case-insensitively keeping the first spelling seen.
func Hashtags(tags ...[]string) []string {
	words := lo.FilterMap(lo.Flatten(tags), func(t string, _ int) (string, bool) {
		w := hashtagWord(t)
		return w, w != ""
	})
	return lo.UniqBy(words, strings.ToLower)
}

// FormatHashtags renders words as "#a #b".
func FormatHashtags(words []string) string {
	return strings.Join(lo.Map(words, func(w string, _ int) string { return "#" + w }), " ")
}

func hashtagWord(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, tag)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// removeBlankLines drops lines that are empty or whitespace-only.
func removeBlankLines(s string) string {
	lines := lo.Filter(strings.Split(s, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	return strings.Join(lines, "\n")
}
