package pipeline

import "regexp"

var (
	// [text](#chapter01.xhtml_anchor) pointing into another spine document
	internalDocLink = regexp.MustCompile(`\[([^\]]*)\]\(#[\w.\-]+\.x?html[^)]*\)`)

	// [](#anchor)
	emptyAnchorLink = regexp.MustCompile(`\[\]\(#[^)]*\)`)

	// ![alt](OEBPS/images/x.jpg), ![alt](./OPS/Images/x.jpg), ...
	packageRootImage = regexp.MustCompile(`!\[([^\]]*)\]\((?:\./)?(?:OEBPS|OPS|EPUB)/(?:images|Images)/([^)]+)\)`)

	// ![alt](../images/x.jpg)
	parentDirImage = regexp.MustCompile(`!\[([^\]]*)\]\(\.\./(?:images|Images)/([^)]+)\)`)
)

// FixLinks removes internal document links (keeping their text) and empty
// anchor links, then flattens package-root image paths to images/<rest>.
// Image constructs are never treated as links.
func FixLinks(content string) (string, int) {
	content, count := replaceUntilStable(content, func(s string) (string, int) {
		return replaceLinks(s, internalDocLink, "$1")
	})

	content, n := replaceUntilStable(content, func(s string) (string, int) {
		return replaceLinks(s, emptyAnchorLink, "")
	})
	count += n

	count += len(packageRootImage.FindAllStringIndex(content, -1))
	content = packageRootImage.ReplaceAllString(content, "![${1}](images/${2})")

	content = parentDirImage.ReplaceAllString(content, "![${1}](images/${2})")

	return content, count
}

// replaceLinks expands template for every match of re that is not the
// bracket part of an image construct (a match preceded by '!').
func replaceLinks(content string, re *regexp.Regexp, template string) (string, int) {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if matches == nil {
		return content, 0
	}

	out := make([]byte, 0, len(content))
	last, count := 0, 0
	for _, m := range matches {
		if m[0] > 0 && content[m[0]-1] == '!' {
			continue
		}
		out = append(out, content[last:m[0]]...)
		out = re.ExpandString(out, template, content, m)
		last = m[1]
		count++
	}
	out = append(out, content[last:]...)
	return string(out), count
}
