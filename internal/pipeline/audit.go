package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ErrAudit indicates the cleaned document could not be walked.
var ErrAudit = errors.New("markdown audit failed")

// maxRawHTMLSamples caps the snippets kept for logging.
const maxRawHTMLSamples = 5

// AuditReport summarizes the structure goldmark sees in a cleaned document.
type AuditReport struct {
	Headings   int
	Images     int
	Links      int
	CodeBlocks int
	RawHTML    int // inline raw HTML plus HTML blocks

	// RawHTMLSamples holds up to five trimmed raw HTML snippets.
	RawHTMLSamples []string

	// ImageDestinations lists image destinations in document order.
	ImageDestinations []string
}

// Auditor parses Markdown with goldmark (pure Go) and counts what survived
// cleanup.
type Auditor struct {
	md goldmark.Markdown
}

// NewAuditor creates an Auditor with GFM and footnote extensions, matching
// what pandoc's Markdown writer emits.
func NewAuditor() *Auditor {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
		),
	)
	return &Auditor{md: md}
}

// Audit walks the document tree. Supports context cancellation via
// goroutine + select pattern since goldmark doesn't natively support context.
func (a *Auditor) Audit(ctx context.Context, content string) (AuditReport, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return AuditReport{}, err
	}

	type result struct {
		report AuditReport
		err    error
	}

	done := make(chan result, 1)

	go func() {
		src := []byte(content)
		doc := a.md.Parser().Parse(text.NewReader(src))
		report, err := walkAudit(doc, src)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrAudit, err)}
			return
		}
		done <- result{report: report}
	}()

	select {
	case <-ctx.Done():
		return AuditReport{}, ctx.Err()
	case r := <-done:
		return r.report, r.err
	}
}

func walkAudit(doc ast.Node, src []byte) (AuditReport, error) {
	var report AuditReport
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			report.Headings++
		case *ast.Image:
			report.Images++
			report.ImageDestinations = append(report.ImageDestinations, string(node.Destination))
		case *ast.Link, *ast.AutoLink:
			report.Links++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			report.CodeBlocks++
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			report.RawHTML++
			report.addSample(segmentsText(node.Segments, src))
		case *ast.HTMLBlock:
			report.RawHTML++
			report.addSample(segmentsText(node.Lines(), src))
		}
		return ast.WalkContinue, nil
	})
	return report, err
}

func (r *AuditReport) addSample(s string) {
	s = strings.TrimSpace(s)
	if s == "" || len(r.RawHTMLSamples) >= maxRawHTMLSamples {
		return
	}
	r.RawHTMLSamples = append(r.RawHTMLSamples, s)
}

func segmentsText(segs *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
