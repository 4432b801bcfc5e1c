package domain

import "strings"

// spoilerMetachars are the MarkdownV2 characters that need escaping.
// The backslash comes first so inserted escapes are never escaped again.
var spoilerMetachars = []string{
	`\`, "_", "*", "[", "]", "(", ")", "~", "`", ">",
	"#", "+", "-", "=", "|", "{", "}", ".", "!",
}

var spoilerEscaper = newSpoilerEscaper()

func newSpoilerEscaper() *strings.Replacer {
	pairs := make([]string, 0, len(spoilerMetachars)*2)
	for _, c := range spoilerMetachars {
		pairs = append(pairs, c, `\`+c)
	}
	return strings.NewReplacer(pairs...)
}

// EscapeSpoilerMarkup escapes text for MarkdownV2. Call it once per text:
// escaping already escaped text doubles the backslashes.
func EscapeSpoilerMarkup(text string) string {
	return spoilerEscaper.Replace(text)
}

// WrapSpoiler surrounds escaped text with the reveal-on-tap delimiter
func WrapSpoiler(text string) string {
	return "||" + text + "||"
}

// FormatSpoiler escapes and wraps text in one step. Empty text stays empty.
func FormatSpoiler(text string) string {
	if text == "" {
		return ""
	}
	return WrapSpoiler(EscapeSpoilerMarkup(text))
}
