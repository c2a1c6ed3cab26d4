package pipeline

import "regexp"

var (
	// ::: {#id .class style="..."} on a line of its own
	openBlockMarker = regexp.MustCompile(`(?m)^:{3,}[ \t]*\{[^{}\n]*\}[ \t]*$`)

	// bare ::: on a line of its own
	closeBlockMarker = regexp.MustCompile(`(?m)^:{3,}[ \t]*$`)

	// []{#anchor} and [ ]{#anchor}
	emptySpan = regexp.MustCompile(`\[[ \t]*\]\{[^{}\n]*\}`)
)

// RemoveBlockWrappers blanks out pandoc fenced div markers, keeping the
// enclosed content in place. The count is opening plus closing markers.
func RemoveBlockWrappers(content string) (string, int) {
	count := len(openBlockMarker.FindAllStringIndex(content, -1))
	content = openBlockMarker.ReplaceAllString(content, "")

	count += len(closeBlockMarker.FindAllStringIndex(content, -1))
	content = closeBlockMarker.ReplaceAllString(content, "")

	return content, count
}

// RemoveEmptySpans deletes empty or whitespace-only bracket pairs followed by
// an attribute set. Removal can expose an enclosing span, so it repeats until
// none remain.
func RemoveEmptySpans(content string) (string, int) {
	return replaceUntilStable(content, removeEmptySpansOnce)
}

func removeEmptySpansOnce(content string) (string, int) {
	n := len(emptySpan.FindAllStringIndex(content, -1))
	if n == 0 {
		return content, 0
	}
	return emptySpan.ReplaceAllString(content, ""), n
}
