package epub2md

import (
	"time"

	"github.com/alnah/go-epub2md/internal/pipeline"
)

// Report counts the changes made by each cleanup rule.
// Keys are the Report* constants.
type Report = pipeline.Report

// Report keys.
const (
	ReportDivsRemoved            = pipeline.KeyDivsRemoved
	ReportSpansRemoved           = pipeline.KeySpansRemoved
	ReportHeadersFixed           = pipeline.KeyHeadersFixed
	ReportLinksFixed             = pipeline.KeyLinksFixed
	ReportImagesRewritten        = pipeline.KeyImagesRewritten
	ReportDuplicateImagesRemoved = pipeline.KeyDuplicateImagesRemoved
)

// AuditReport summarizes the Markdown structure of a written document.
type AuditReport = pipeline.AuditReport

// Metadata is what the package document says about a book.
// Only Title through Description feed the frontmatter.
type Metadata struct {
	Title       string
	Author      string
	Publisher   string
	Date        string
	Language    string
	Description string
	Subjects    []string
	Identifier  string
	ISBN        string
	Rights      string
	Series      string
}

// ImageStats describes the work done on extracted images.
type ImageStats struct {
	Found             int // image files in the images directory
	Moved             int // nested files flattened to the top level
	Optimized         int // files downscaled
	Rewritten         int // references pointed at ./images/
	DuplicatesRemoved int // repeated whole-line images dropped
}

// Input describes one conversion.
type Input struct {
	EPUBPath string
	// OutputPath is the Markdown file to write. Empty means
	// DefaultOutputPath(EPUBPath).
	OutputPath string
}

// Result describes a finished conversion.
type Result struct {
	InputPath  string
	OutputPath string
	Metadata   Metadata
	Report     Report
	Images     ImageStats
	Audit      AuditReport
	Backend    string
	Duration   time.Duration
}
