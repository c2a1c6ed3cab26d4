package pipeline

import (
	"regexp"
	"strings"
)

var (
	// trailing {#id .class key="value"} on a header line
	headerAttributes = regexp.MustCompile(`[ \t]*\{[^{}]*\}[ \t]*$`)

	// # **Whole header bold**
	boldHeader = regexp.MustCompile(`^(#{1,6})[ \t]+\*\*(.+?)\*\*[ \t]*$`)
)

// FixHeaders strips trailing attribute blocks and empty spans from ATX header
// lines and unwraps headers whose entire text is bold. The count is the number
// of header lines that lost an attribute block. Fenced code is left alone.
func FixHeaders(content string) (string, int) {
	count := 0
	content = mapProseLines(content, func(line string) string {
		if !headerPattern.MatchString(line) {
			return line
		}
		fixed, stripped := fixHeaderLine(line)
		if stripped {
			count++
		}
		return fixed
	})
	return content, count
}

// fixHeaderLine applies the header rewrites until the line stops changing,
// since unwrapping bold can expose a trailing attribute block.
func fixHeaderLine(line string) (string, bool) {
	stripped := false
	for headerPattern.MatchString(line) {
		before := line

		line, _ = RemoveEmptySpans(line)
		for {
			loc := headerAttributes.FindStringIndex(line)
			if loc == nil {
				break
			}
			line = line[:loc[0]]
			stripped = true
		}
		line = unwrapBoldHeader(line)

		if line == before {
			break
		}
	}
	return line, stripped
}

// unwrapBoldHeader turns "## **Title**" into "## Title". Headers with more
// than one bold span, like "## **A** and **B**", are left untouched.
func unwrapBoldHeader(line string) string {
	m := boldHeader.FindStringSubmatch(line)
	if m == nil || strings.Contains(m[2], "**") {
		return line
	}
	return m[1] + " " + m[2]
}
