package app

// render.go turns reply text and menu layouts into the HTML body of a
// Matrix m.text event with format=org.matrix.custom.html. Only the small
// markup subset the composer produces is handled: *bold* and newlines.

import (
	"strings"

	"github.com/pandito-bot/pandito/internal/pandito/menu"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// textToHTML escapes HTML entities, converts *bold* spans and turns
// newlines into <br/>.
func textToHTML(text string) string {
	out := htmlEscaper.Replace(text)
	out = replaceDelimited(out, "*", "<strong>", "</strong>")
	return strings.ReplaceAll(out, "\n", "<br/>")
}

// replaceDelimited replaces delim…delim pairs with open+content+close.
// Unmatched openers are left alone.
func replaceDelimited(s, delim, open, close string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, delim)
		if start == -1 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start+len(delim):], delim)
		if end == -1 {
			b.WriteString(s)
			break
		}
		end += start + len(delim)
		b.WriteString(s[:start])
		b.WriteString(open)
		b.WriteString(s[start+len(delim) : end])
		b.WriteString(close)
		s = s[end+len(delim):]
	}
	return b.String()
}

// renderLayout renders a menu layout as an HTML body plus a plain-text
// fallback. Matrix has no inline keyboards, so each button becomes a line
// pairing its label with the slash command that triggers it.
func renderLayout(layout menu.Layout) (html, plaintext string) {
	var plain strings.Builder
	if layout.Caption != "" {
		plain.WriteString(layout.Caption)
		plain.WriteString("\n")
	}
	for _, row := range layout.Rows {
		for _, b := range row {
			plain.WriteString("\n")
			plain.WriteString(b.Label)
			plain.WriteString("  →  /")
			plain.WriteString(b.Command)
		}
	}
	plaintext = plain.String()
	return textToHTML(plaintext), plaintext
}
