package epub2md

import "github.com/alnah/go-epub2md/internal/pipeline"

// CleanOptions toggles the optional cleanup passes. The final artifact
// sweep always runs.
type CleanOptions struct {
	RemoveBlockWrappers bool
	RemoveSpans         bool
	FixHeaders          bool
	FixLinks            bool
	NormalizeWhitespace bool

	// ImageStage, when set, runs after link fixing and before whitespace
	// normalization.
	ImageStage func(document string) string
}

// DefaultCleanOptions enables every pass.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		RemoveBlockWrappers: true,
		RemoveSpans:         true,
		FixHeaders:          true,
		FixLinks:            true,
		NormalizeWhitespace: true,
	}
}

// Clean runs the cleanup rules over raw converter output and reports how
// many changes each rule made. Disabling one pass never changes another
// pass's count.
func Clean(document string, opts CleanOptions) (string, Report) {
	return pipeline.Clean(document, pipeline.Options(opts))
}
