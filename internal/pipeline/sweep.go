package pipeline

import (
	"regexp"
	"strings"
)

// maxSweepRounds bounds FinalSweep's repeat-until-stable loop.
const maxSweepRounds = 4

// ruleMarker is the horizontal rule emitted for separator lines.
const ruleMarker = "---"

var (
	// \*\*\* separator lines
	escapedAsteriskRule = regexp.MustCompile(`(?m)^[ \t]*(?:\\\*){2,}[ \t]*$`)

	// * * * separator lines
	spacedAsteriskRule = regexp.MustCompile(`(?m)^[ \t]*\*(?:[ \t]*\*){2,}[ \t]*$`)

	// pandoc's long dash horizontal rule
	dashRule = regexp.MustCompile(`(?m)^[ \t]*-{4,}[ \t]*$`)

	// class names some EPUB producers leak into text
	strayClassTokens = regexp.MustCompile(`[ \t]*\.(?:was-a-p|k4w-margin)\b`)

	presentationAttributes = regexp.MustCompile(`[ \t]*\b(?:style|align|vertical)="[^"]*"`)

	layoutTags = regexp.MustCompile(`</?(?:center|div|span)\b[^>]*>`)

	// [[text]{.underline}]
	underlinedLinkText = regexp.MustCompile(`\[\[([^\]]+)\]\{\.underline\}\]`)

	// {#id}, {.class}, {#id .class1 .class2}
	attributeMarkers = regexp.MustCompile(`\{[ \t]*[#.][\w\-:]+(?:[ \t]+[#.][\w\-:]+)*[ \t]*\}`)

	// {} left behind after its tokens were stripped
	emptyAttributes = regexp.MustCompile(`([\])])\{[ \t]*\}`)

	idAttributes = regexp.MustCompile(`[ \t]*\b(?:name|id)="[^"]*"`)

	// lines made only of markup punctuation
	artifactLine = regexp.MustCompile(`^[\s\-*_#{}]+$`)

	sweepBlankLines = regexp.MustCompile(`\n{3,}`)
)

// FinalSweep removes the artifacts the earlier rules leave behind. It always
// runs last and repeats until the document stops changing. The count is the
// number of duplicate whole-line images dropped. Fenced code is left alone,
// and a document that ended with a newline still ends with exactly one.
func FinalSweep(content string) (string, int) {
	endsWithNewline := strings.HasSuffix(content, "\n")
	total := 0
	for range maxSweepRounds {
		next, n := sweepOnce(content)
		total += n
		if next == content {
			break
		}
		content = next
	}
	if endsWithNewline {
		if trimmed := strings.TrimRight(content, "\n"); trimmed != "" {
			content = trimmed + "\n"
		}
	}
	return content, total
}

func sweepOnce(content string) (string, int) {
	content = mapProseLines(content, sweepLine)

	content, dropped := dropRepeatedImageLines(content)
	content, _ = filterProseLines(content, keepLine)

	content = sweepBlankLines.ReplaceAllString(content, "\n\n")
	return content, dropped
}

// sweepLine strips the inline artifacts from one line of prose. Separator
// lines become a rule marker surrounded by blank lines.
func sweepLine(line string) string {
	line = escapedAsteriskRule.ReplaceAllString(line, "\n"+ruleMarker+"\n")
	line = spacedAsteriskRule.ReplaceAllString(line, "\n"+ruleMarker+"\n")
	line = dashRule.ReplaceAllString(line, ruleMarker)

	line = strayClassTokens.ReplaceAllString(line, "")
	line = presentationAttributes.ReplaceAllString(line, "")
	line = layoutTags.ReplaceAllString(line, "")

	line = underlinedLinkText.ReplaceAllString(line, "[${1}]")
	line = attributeMarkers.ReplaceAllString(line, "")
	line = emptyAttributes.ReplaceAllString(line, "${1}")
	line = stripImageAttributes(line)
	return idAttributes.ReplaceAllString(line, "")
}

// keepLine rejects lines made only of markup punctuation, keeping blank
// lines and the rule marker.
func keepLine(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || t == ruleMarker || !artifactLine.MatchString(t)
}

// stripImageAttributes removes a {...} block that directly follows an image
// construct on the same line.
func stripImageAttributes(content string) string {
	refs := FindImages(content)
	if len(refs) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, ref := range refs {
		if ref.End >= len(content) || content[ref.End] != '{' {
			continue
		}
		end := strings.IndexAny(content[ref.End+1:], "{}\n")
		if end < 0 || content[ref.End+1+end] != '}' {
			continue
		}
		b.WriteString(content[last:ref.End])
		last = ref.End + 1 + end + 1
	}
	b.WriteString(content[last:])
	return b.String()
}
