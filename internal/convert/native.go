package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/alnah/go-epub2md/internal/epub"
	"github.com/alnah/go-epub2md/internal/logging"
)

// droppedElements never carry reading-order content.
const droppedElements = "head, script, style, noscript, link, meta"

// Native converts EPUB to Markdown without external tools. Chapters are read
// in spine order and converted one by one.
type Native struct {
	md     *converter.Converter
	logger *slog.Logger
}

// NewNative creates a Native converter.
func NewNative(logger *slog.Logger) *Native {
	return &Native{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: logging.OrDiscard(logger),
	}
}

func (n *Native) Name() string { return BackendNative }

// Convert extracts images into req.ImagesDir when set and returns the
// chapters joined by blank lines. Unreadable chapters are logged and skipped.
func (n *Native) Convert(ctx context.Context, req Request) (string, error) {
	book, err := epub.Open(req.EPUBPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConverterFailed, err)
	}
	defer func() { _ = book.Close() }()

	imagesRef := ""
	if req.ImagesDir != "" {
		written, err := book.ExtractImages(req.ImagesDir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrConverterFailed, err)
		}
		n.logger.Debug("extracted images", "count", len(written), "dir", req.ImagesDir)
		imagesRef = filepath.ToSlash(req.imagesRef())
	}

	chapters := book.Chapters()
	parts := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		md, err := n.chapter(book, ch, imagesRef)
		if err != nil {
			n.logger.Warn("skipping chapter", "path", ch.Path, "error", err)
			continue
		}
		if md != "" {
			parts = append(parts, md)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no readable chapters in %s", ErrConverterFailed, req.EPUBPath)
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func (n *Native) chapter(book *epub.Book, ch epub.Item, imagesRef string) (string, error) {
	data, err := book.ReadFile(ch.Path)
	if err != nil {
		return "", err
	}

	content, err := RewriteImagePaths(string(data), path.Dir(ch.Path), imagesRef)
	if err != nil {
		return "", fmt.Errorf("rewriting image paths: %w", err)
	}

	body, err := chapterBody(content)
	if err != nil {
		return "", err
	}

	md, err := n.md.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// chapterBody returns the inner HTML of <body> with non-content elements
// removed and SVG-wrapped images turned into plain <img> elements.
func chapterBody(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing chapter: %w", err)
	}

	doc.Find(droppedElements).Remove()

	doc.Find("svg").Each(func(_ int, s *goquery.Selection) {
		img := s.Find("image").First()
		src := img.AttrOr("href", img.AttrOr("xlink:href", ""))
		if src == "" {
			s.Remove()
			return
		}
		alt := strings.TrimSpace(s.Find("title").First().Text())
		s.ReplaceWithHtml(fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(src), html.EscapeString(alt)))
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Html()
	}
	return body.Html()
}
