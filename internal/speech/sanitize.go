package speech

import (
	"regexp"
	"strings"
)

var (
	linkPattern     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisPattern = regexp.MustCompile(`_([^_\n]+)_`)
	emojiPattern    = regexp.MustCompile(`[\x{1F100}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}]`)
	punctNewline    = regexp.MustCompile(`([.!?:;,])[ \t]*\n+`)
	newlinePattern  = regexp.MustCompile(`\n+`)
	multiSpace      = regexp.MustCompile(`[ \t]{2,}`)
)

// Sanitize prepares assistant text for synthesis. Emoji and markdown
// decorations read fine on screen but turn into garbage when spoken aloud.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	// Replace markdown links with their display text
	text = linkPattern.ReplaceAllString(text, "$1")

	// Strip bold and italic markers
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")
	text = emphasisPattern.ReplaceAllString(text, "$1")

	// Strip emoji and the joiner characters that glue them together
	text = emojiPattern.ReplaceAllString(text, "")

	// Newlines become sentence pauses. Lines that already end with
	// punctuation just get a space so "events:" does not become "events:."
	text = punctNewline.ReplaceAllString(text, "$1 ")
	text = newlinePattern.ReplaceAllString(text, ". ")

	// Collapse whitespace left behind by the removals
	text = multiSpace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
