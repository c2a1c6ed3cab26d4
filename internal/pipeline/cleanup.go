package pipeline

// Report keys.
const (
	KeyDivsRemoved            = "divs_removed"
	KeySpansRemoved           = "spans_removed"
	KeyHeadersFixed           = "headers_fixed"
	KeyLinksFixed             = "links_fixed"
	KeyImagesRewritten        = "images_rewritten"
	KeyDuplicateImagesRemoved = "duplicate_images_removed"
)

// Report counts the changes each rule made, keyed by the constants above.
type Report map[string]int

// NewReport returns a report with the four cleanup counters at zero.
func NewReport() Report {
	return Report{
		KeyDivsRemoved:  0,
		KeySpansRemoved: 0,
		KeyHeadersFixed: 0,
		KeyLinksFixed:   0,
	}
}

// Add increments key by n. Negative n is ignored: counts only grow.
func (r Report) Add(key string, n int) {
	if n < 0 {
		return
	}
	r[key] += n
}

// Merge adds every count in other to r.
func (r Report) Merge(other Report) {
	for k, n := range other {
		r.Add(k, n)
	}
}

// Total returns the sum of all counts.
func (r Report) Total() int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}

// Rule is one named rewrite. Key names the report counter it feeds; rules
// with an empty Key are not counted.
type Rule struct {
	Name  string
	Key   string
	Apply func(content string) (string, int)
}

// Options toggles the optional passes. The final sweep always runs.
type Options struct {
	RemoveBlockWrappers bool
	RemoveSpans         bool
	FixHeaders          bool
	FixLinks            bool
	NormalizeWhitespace bool

	// ImageStage, when set, runs after link fixing and before whitespace
	// normalization.
	ImageStage func(content string) string
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{
		RemoveBlockWrappers: true,
		RemoveSpans:         true,
		FixHeaders:          true,
		FixLinks:            true,
		NormalizeWhitespace: true,
	}
}

// Rules returns the enabled rules in execution order.
func Rules(opts Options) []Rule {
	rules := make([]Rule, 0, 7)
	if opts.RemoveBlockWrappers {
		rules = append(rules, Rule{Name: "block-wrappers", Key: KeyDivsRemoved, Apply: RemoveBlockWrappers})
	}
	if opts.RemoveSpans {
		rules = append(rules, Rule{Name: "empty-spans", Key: KeySpansRemoved, Apply: RemoveEmptySpans})
	}
	if opts.FixHeaders {
		rules = append(rules, Rule{Name: "headers", Key: KeyHeadersFixed, Apply: FixHeaders})
	}
	if opts.FixLinks {
		rules = append(rules, Rule{Name: "links", Key: KeyLinksFixed, Apply: FixLinks})
	}
	if opts.ImageStage != nil {
		stage := opts.ImageStage
		rules = append(rules, Rule{Name: "images", Apply: func(s string) (string, int) { return stage(s), 0 }})
	}
	if opts.NormalizeWhitespace {
		rules = append(rules, Rule{Name: "whitespace", Apply: func(s string) (string, int) { return NormalizeWhitespace(s), 0 }})
	}
	return append(rules, Rule{Name: "final-sweep", Key: KeyDuplicateImagesRemoved, Apply: FinalSweep})
}

// Clean normalizes line endings and runs the enabled rules in order,
// returning the cleaned document and the accumulated counts.
func Clean(content string, opts Options) (string, Report) {
	report := NewReport()
	content = NormalizeLineEndings(content)
	for _, rule := range Rules(opts) {
		var n int
		content, n = rule.Apply(content)
		if rule.Key != "" {
			report.Add(rule.Key, n)
		}
	}
	return content, report
}
