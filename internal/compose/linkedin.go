package compose

import (
	"fmt"

	"github.com/ppiankov/blogcast/internal/source"
)

const (
	// LinkedInMaxLength is the LinkedIn commentary budget.
	LinkedInMaxLength = 3000

	linkedInEllipsis = "..."
)

// linkedInTemplate renders commentary for a post with its formatted hashtags.
type linkedInTemplate func(p source.Post, hashtags string) string

var linkedInTemplates = []linkedInTemplate{
	func(p source.Post, hashtags string) string {
		return fmt.Sprintf("📝 From the blog: %s\n\n%s\n\nRead it here: %s\n\n%s",
			p.Title, p.Description, p.URL, hashtags)
	},
	func(p source.Post, hashtags string) string {
		return fmt.Sprintf("In case you missed it: \"%s\"\n\n%s\n\n👉 %s\n\n%s",
			p.Title, p.Description, p.URL, hashtags)
	},
	func(p source.Post, hashtags string) string {
		return fmt.Sprintf("%s\n\nI wrote about this a while back and it still holds up.\n\n%s\n\nFull post: %s\n\n%s",
			p.Title, p.Description, p.URL, hashtags)
	},
	func(p source.Post, hashtags string) string {
		return fmt.Sprintf("💡 %s\n\n%s\n\nWhat's your take? Let me know in the comments.\n\n🔗 %s\n\n%s",
			p.Title, p.Description, p.URL, hashtags)
	},
}

// LinkedInComposer picks one of several commentary templates at random and
// attaches a link preview.
type LinkedInComposer struct {
	staticTags []string
	rnd        RandSource
}

// NewLinkedIn creates a LinkedIn composer. staticTags are appended to every
// post's own tags.
func NewLinkedIn(staticTags []string, rnd RandSource) *LinkedInComposer {
	return &LinkedInComposer{staticTags: staticTags, rnd: rnd}
}

func (c *LinkedInComposer) Compose(p source.Post) Message {
	hashtags := FormatHashtags(Hashtags(p.Tags, c.staticTags))

	idx := 0
	if c.rnd != nil {
		idx = c.rnd.IntN(len(linkedInTemplates))
	}
	text := removeBlankLines(linkedInTemplates[idx](p, hashtags))
	if runeLen(text) > LinkedInMaxLength {
		text = firstNRunes(text, LinkedInMaxLength-len(linkedInEllipsis)) + linkedInEllipsis
	}

	return Message{
		Platform: "linkedin",
		Text:     text,
		Link: &Link{
			Title:       p.Title,
			URL:         p.URL,
			Description: p.Description,
		},
	}
}
