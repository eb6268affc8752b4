package output

import (
	"strings"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return "- **" + key + "**: " + value
}

// FormatCodeBlock returns body wrapped in a fenced code block.
func FormatCodeBlock(lang, body string) string {
	body = strings.TrimSuffix(body, "\n")
	return "```" + lang + "\n" + body + "\n```"
}
