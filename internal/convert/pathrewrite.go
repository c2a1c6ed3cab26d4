package convert

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteImagePaths points image references of a chapter at the extracted
// copies. A relative src is resolved against chapterDir (an archive path)
// and prefixed with imagesRef, matching where ExtractImages wrote the file.
// If imagesRef is empty, returns the HTML unchanged.
//
// Rewrites:
//   - img[src]
//   - svg image[href] and image[xlink:href]
//
// Does NOT rewrite:
//   - URLs, data URIs, anchors and absolute paths
//   - references that climb above the archive root
//   - srcset attributes
func RewriteImagePaths(htmlContent, chapterDir, imagesRef string) (string, error) {
	if imagesRef == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, chapterDir, imagesRef)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full document, possibly behind an XML declaration
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<!doctype") ||
		strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and rewrites image references.
func rewriteNode(n *html.Node, chapterDir, imagesRef string) {
	if n.Type == html.ElementNode {
		switch {
		case n.DataAtom == atom.Img:
			rewriteAttr(n, "src", chapterDir, imagesRef)
		case n.Data == "image" && n.Namespace == "svg":
			rewriteAttr(n, "href", chapterDir, imagesRef)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, chapterDir, imagesRef)
	}
}

// rewriteAttr rewrites a single attribute if it's a relative path.
// The attribute namespace is ignored so xlink:href matches href.
func rewriteAttr(n *html.Node, attrName, chapterDir, imagesRef string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName {
			continue
		}
		archivePath, ok := archivePathOf(attr.Val, chapterDir)
		if !ok {
			continue
		}
		n.Attr[i].Val = path.Join(imagesRef, archivePath)
	}
}

// archivePathOf resolves a relative reference against chapterDir. It fails
// for URLs, anchors, absolute paths and paths escaping the archive root.
func archivePathOf(ref, chapterDir string) (string, bool) {
	if !isRelativePath(ref) {
		return "", false
	}
	if k := strings.IndexAny(ref, "?#"); k >= 0 {
		ref = ref[:k]
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	if ref == "" {
		return "", false
	}

	p := path.Clean(path.Join(chapterDir, ref))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(p string) bool {
	if p == "" {
		return false
	}

	// Skip URLs (http, https, file, data, protocol-relative)
	if strings.HasPrefix(p, "http://") ||
		strings.HasPrefix(p, "https://") ||
		strings.HasPrefix(p, "file://") ||
		strings.HasPrefix(p, "data:") ||
		strings.HasPrefix(p, "//") {
		return false
	}

	if strings.HasPrefix(p, "#") {
		return false
	}

	return !strings.HasPrefix(p, "/")
}
