package compose

import (
	"regexp"
	"strings"

	"github.com/ppiankov/blogcast/internal/source"
)

const (
	// XMaxLength is the X character budget.
	XMaxLength = 280
	// XURLLength is the fixed weight X assigns to any link.
	XURLLength = 23

	xEllipsis = "... "
)

var urlRe = regexp.MustCompile(`https?://\S+`)

// XComposer builds "RT: {title}, by @{author}. {hashtags} {url}" messages.
type XComposer struct {
	author string
}

// NewX creates an X composer. author is used when a post carries no handle.
func NewX(author string) *XComposer {
	return &XComposer{author: author}
}

func (c *XComposer) Compose(p source.Post) Message {
	author := strings.TrimPrefix(strings.TrimSpace(p.Author), "@")
	if author == "" {
		author = strings.TrimPrefix(strings.TrimSpace(c.author), "@")
	}

	var b strings.Builder
	b.WriteString("RT: ")
	b.WriteString(p.Title)
	if author != "" {
		b.WriteString(", by @")
		b.WriteString(author)
	}
	b.WriteString(". ")
	if tags := FormatHashtags(Hashtags(p.Tags)); tags != "" {
		b.WriteString(tags)
		b.WriteString(" ")
	}

	prefix := b.String()
	if WeightedLength(prefix)+XURLLength > XMaxLength {
		prefix = truncateWeighted(prefix, XMaxLength-XURLLength)
	}

	return Message{Platform: "x", Text: prefix + p.URL}
}

// truncateWeighted cuts s and appends xEllipsis so the result weighs at
// most budget. Links inside s keep their fixed weight when cut.
func truncateWeighted(s string, budget int) string {
	for n := runeLen(s); n > 0; n-- {
		cut := firstNRunes(s, n) + xEllipsis
		if WeightedLength(cut) <= budget {
			return cut
		}
	}
	return xEllipsis
}

// WeightedLength counts text the way X does: every URL weighs XURLLength
// regardless of its real length.
func WeightedLength(text string) int {
	urls := urlRe.FindAllString(text, -1)
	rest := urlRe.ReplaceAllString(text, "")
	return runeLen(rest) + len(urls)*XURLLength
}
