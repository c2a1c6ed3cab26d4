package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Fenced code block delimiter (backticks or tildes)
	fencedCodeBlock = regexp.MustCompile("^[ ]{0,3}(```|~~~)")

	// Header pattern (ATX style)
	headerPattern = regexp.MustCompile(`^#{1,6}[ \t]`)

	// Indented code block (4 spaces or tab)
	indentedCodeBlock = regexp.MustCompile(`^(    |\t)`)
)

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// mapProseLines applies fn to every line outside fenced code blocks.
// Fence lines themselves are passed through unchanged.
func mapProseLines(content string, fn func(line string) string) string {
	lines := strings.Split(content, "\n")
	inCodeBlock := false
	for i, line := range lines {
		if fencedCodeBlock.MatchString(line) {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

// filterProseLines keeps the lines for which keep returns true.
// Lines inside fenced code blocks are always kept.
func filterProseLines(content string, keep func(line string) bool) (string, int) {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false
	dropped := 0
	for _, line := range lines {
		if fencedCodeBlock.MatchString(line) {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
			continue
		}
		if inCodeBlock || keep(line) {
			result = append(result, line)
			continue
		}
		dropped++
	}
	return strings.Join(result, "\n"), dropped
}

// processLinesWithCodeBlockAwareness processes each line with a callback,
// but skips lines inside fenced code blocks.
// A processed line starting with "\n" gets a blank line inserted before it.
func processLinesWithCodeBlockAwareness(content string, process func(prev, current string) string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	inCodeBlock := false
	var previousLine string

	for i, line := range lines {
		if fencedCodeBlock.MatchString(line) {
			inCodeBlock = !inCodeBlock
		}

		if inCodeBlock || indentedCodeBlock.MatchString(line) {
			result = append(result, line)
			previousLine = line
			continue
		}

		// First line has no previous
		if i == 0 {
			result = append(result, line)
			previousLine = line
			continue
		}

		processed := process(previousLine, line)
		if strings.HasPrefix(processed, "\n") {
			result = append(result, "")
			result = append(result, processed[1:])
		} else {
			result = append(result, processed)
		}

		// Compare against the original line on the next iteration, not the
		// inserted blank.
		previousLine = line
	}

	return strings.Join(result, "\n")
}

// isBlankLine returns true if the line is empty or contains only whitespace.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// replaceUntilStable applies pass until it reports no further matches.
// Every pass that reports matches must shorten the content.
func replaceUntilStable(content string, pass func(string) (string, int)) (string, int) {
	total := 0
	for {
		next, n := pass(content)
		if n == 0 || len(next) >= len(content) {
			return next, total + n
		}
		total += n
		content = next
	}
}
