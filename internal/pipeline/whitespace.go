package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// three or more blank lines
var excessBlankLines = regexp.MustCompile(`\n{4,}`)

// NormalizeWhitespace strips trailing whitespace from every line, caps runs of
// blank lines at two, separates headers from a preceding paragraph, drops
// leading blank lines and ends the document with exactly one newline.
func NormalizeWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	content = strings.Join(lines, "\n")

	content = excessBlankLines.ReplaceAllString(content, "\n\n\n")
	content = EnsureBlankBeforeHeaders(content)

	content = strings.TrimLeft(content, "\n")
	return strings.TrimRight(content, "\n") + "\n"
}

// EnsureBlankBeforeHeaders adds a blank line before ATX headers (#, ##, etc.)
// if the previous line is non-empty. Skips content inside code blocks.
func EnsureBlankBeforeHeaders(content string) string {
	return processLinesWithCodeBlockAwareness(content, func(prev, current string) string {
		if headerPattern.MatchString(current) && prev != "" && !isBlankLine(prev) {
			return "\n" + current
		}
		return current
	})
}
