package pipeline

import (
	"net/url"
	"regexp"
	"strings"
)

// ImagesPrefix is the canonical location of every local image reference.
const ImagesPrefix = "./images/"

var (
	// scheme-qualified destinations (http:, https:, data:, mailto:); the
	// two-letter minimum keeps Windows drive letters local
	urlScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+:`)

	// {#id width="50%"} trailing an image on its own line
	trailingAttributes = regexp.MustCompile(`^\{[^{}]*\}$`)
)

// ImageRef is one ![alt](dest "title") construct found in a document.
type ImageRef struct {
	Alt   string
	Path  string // destination without angle brackets or title
	Title string // title text without its quotes
	Start int    // byte offset of '!'
	End   int    // byte offset just past the closing ')'
}

// Markdown renders the reference. Destinations containing spaces or
// parentheses are wrapped in angle brackets.
func (r ImageRef) Markdown() string {
	dest := r.Path
	if strings.ContainsAny(dest, " \t()") {
		dest = "<" + dest + ">"
	}
	if r.Title != "" {
		return "![" + r.Alt + "](" + dest + ` "` + r.Title + `")`
	}
	return "![" + r.Alt + "](" + dest + ")"
}

// FindImages returns every image construct in content, in order. The
// destination ends at the parenthesis that returns the nesting depth to zero,
// so "Series (Book 1)/cover.jpg" is a single path. Unterminated constructs are
// skipped.
func FindImages(content string) []ImageRef {
	var refs []ImageRef
	for i := 0; i < len(content); {
		j := strings.Index(content[i:], "![")
		if j < 0 {
			break
		}
		start := i + j
		ref, ok := parseImageAt(content, start)
		if !ok {
			i = start + 2
			continue
		}
		refs = append(refs, ref)
		i = ref.End
	}
	return refs
}

// parseImageAt parses the image construct whose '!' is at s[start].
func parseImageAt(s string, start int) (ImageRef, bool) {
	if !strings.HasPrefix(s[start:], "![") {
		return ImageRef{}, false
	}
	altStart := start + 2
	altEnd := closingIndex(s, altStart, '[', ']', false)
	if altEnd < 0 || strings.Contains(s[altStart:altEnd], "\n\n") {
		return ImageRef{}, false
	}
	if altEnd+1 >= len(s) || s[altEnd+1] != '(' {
		return ImageRef{}, false
	}
	destStart := altEnd + 2
	destEnd := closingIndex(s, destStart, '(', ')', true)
	if destEnd < 0 {
		return ImageRef{}, false
	}

	path, title := splitDestination(s[destStart:destEnd])
	return ImageRef{
		Alt:   s[altStart:altEnd],
		Path:  path,
		Title: title,
		Start: start,
		End:   destEnd + 1,
	}, true
}

// closingIndex returns the index of the close byte matching an already
// consumed open byte, honoring backslash escapes, or -1.
func closingIndex(s string, from int, open, close byte, stopAtNewline bool) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '\n' && stopAtNewline:
			return -1
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitDestination separates `dest "title"` and unwraps `<dest>`.
func splitDestination(inner string) (dest, title string) {
	inner = strings.TrimSpace(inner)
	dest = inner
	if strings.HasSuffix(inner, `"`) {
		if k := strings.Index(inner, ` "`); k > 0 && k+1 < len(inner)-1 {
			dest = strings.TrimSpace(inner[:k])
			title = inner[k+2 : len(inner)-1]
		}
	}
	if len(dest) >= 2 && dest[0] == '<' && dest[len(dest)-1] == '>' {
		dest = dest[1 : len(dest)-1]
	}
	return dest, title
}

// IsRemoteImage reports whether dest points outside the local filesystem.
func IsRemoteImage(dest string) bool {
	return strings.HasPrefix(dest, "//") || urlScheme.MatchString(dest)
}

// isCanonicalImagePath reports whether dest already has the ./images/<name> form.
func isCanonicalImagePath(dest string) bool {
	name, ok := strings.CutPrefix(dest, ImagesPrefix)
	return ok && name != "" && !strings.ContainsAny(name, `/\?#`)
}

// ResolveImageName returns the flat file name for a local destination: the
// final path segment without query or fragment, or the renamed file when the
// destination matches a path recorded in renames. The longest matching
// recorded path wins. Returns "" when the destination has no file name.
//
// A destination matches when it ends with the recorded path, or when it is
// images/<rest> and the recorded path is <dir>/images/<rest>, which is what
// FixLinks leaves of OEBPS/images/<rest>.
func ResolveImageName(dest string, renames map[string]string) string {
	p := dest
	if k := strings.IndexAny(p, "?#"); k >= 0 {
		p = p[:k]
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	rest, underImages := cutImagesDir(p)

	best := ""
	for orig := range renames {
		if len(orig) <= len(best) {
			continue
		}
		if p == orig || strings.HasSuffix(p, "/"+orig) || (underImages && inImagesDir(orig, rest)) {
			best = orig
		}
	}
	if best != "" {
		return renames[best]
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// cutImagesDir strips a leading images/ or ./images/ from p.
func cutImagesDir(p string) (string, bool) {
	p = strings.TrimPrefix(p, "./")
	if len(p) > len("images/") && strings.EqualFold(p[:len("images/")], "images/") {
		return p[len("images/"):], true
	}
	return "", false
}

// inImagesDir reports whether orig is rest inside a directory named images.
func inImagesDir(orig, rest string) bool {
	parent, ok := strings.CutSuffix(orig, "/"+rest)
	if !ok {
		return false
	}
	return strings.EqualFold(parent[strings.LastIndex(parent, "/")+1:], "images")
}

// CanonicalizeImages rewrites every local image destination to
// ./images/<name> and drops whole-line images whose destination already
// appeared on an earlier whole-line image. Remote images, inline duplicates
// and images inside fenced code are kept as-is.
//
// renames maps slash-separated paths relative to the images directory to
// the file names they were moved to.
func CanonicalizeImages(content string, renames map[string]string) (string, Report) {
	report := Report{}
	fenced := fencedRanges(content)

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, ref := range FindImages(content) {
		if inRanges(fenced, ref.Start) || IsRemoteImage(ref.Path) || isCanonicalImagePath(ref.Path) {
			continue
		}
		name := ResolveImageName(ref.Path, renames)
		if name == "" {
			continue
		}
		b.WriteString(content[last:ref.Start])
		ref.Path = ImagesPrefix + name
		b.WriteString(ref.Markdown())
		last = ref.End
		report.Add(KeyImagesRewritten, 1)
	}
	b.WriteString(content[last:])

	content, dropped := dropRepeatedImageLines(b.String())
	report.Add(KeyDuplicateImagesRemoved, dropped)
	return content, report
}

// dropRepeatedImageLines removes whole-line images whose destination was
// already seen on an earlier whole-line image.
func dropRepeatedImageLines(content string) (string, int) {
	seen := make(map[string]bool)
	return filterProseLines(content, func(line string) bool {
		ref, ok := wholeLineImage(line)
		if !ok {
			return true
		}
		if seen[ref.Path] {
			return false
		}
		seen[ref.Path] = true
		return true
	})
}

// wholeLineImage parses a line holding exactly one image construct,
// optionally followed by an attribute block.
func wholeLineImage(line string) (ImageRef, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "![") {
		return ImageRef{}, false
	}
	ref, ok := parseImageAt(trimmed, 0)
	if !ok {
		return ImageRef{}, false
	}
	rest := strings.TrimSpace(trimmed[ref.End:])
	if rest != "" && !trailingAttributes.MatchString(rest) {
		return ImageRef{}, false
	}
	return ref, true
}

// fencedRanges returns the byte ranges covered by fenced code blocks.
// An unclosed fence runs to the end of content.
func fencedRanges(content string) [][2]int {
	var ranges [][2]int
	open := -1
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if fencedCodeBlock.MatchString(line) {
			if open < 0 {
				open = offset
			} else {
				ranges = append(ranges, [2]int{open, offset + len(line)})
				open = -1
			}
		}
		offset += len(line)
	}
	if open >= 0 {
		ranges = append(ranges, [2]int{open, len(content)})
	}
	return ranges
}

func inRanges(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
