package pipeline

import (
	"strings"
	"testing"
)

const sampleDocument = "::: {#wrapper .container}\n" +
	"# Title {#title .header}\n" +
	"\n" +
	"[]{#anchor}Some paragraph text.\n" +
	"\n" +
	"![](OEBPS/images/img.png)\n" +
	":::"

func TestClean_Sample(t *testing.T) {
	t.Parallel()

	got, report := Clean(sampleDocument, DefaultOptions())

	want := "# Title\n\nSome paragraph text.\n\n![](images/img.png)\n"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
	for _, forbidden := range []string{":::", "[]{", "{#"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("output contains %q", forbidden)
		}
	}

	wantReport := map[string]int{
		KeyDivsRemoved:            2,
		KeySpansRemoved:           1,
		KeyHeadersFixed:           1,
		KeyLinksFixed:             1,
		KeyDuplicateImagesRemoved: 0,
	}
	for key, want := range wantReport {
		if report[key] != want {
			t.Errorf("report[%s] = %d, want %d", key, report[key], want)
		}
	}
}

func TestClean_ImageStage(t *testing.T) {
	t.Parallel()

	var stageInput string
	var stageReport Report
	opts := DefaultOptions()
	opts.ImageStage = func(s string) string {
		stageInput = s
		out, r := CanonicalizeImages(s, nil)
		stageReport = r
		return out
	}

	got, _ := Clean(sampleDocument, opts)

	if !strings.Contains(stageInput, "![](images/img.png)") {
		t.Errorf("image stage ran before link fixing: %q", stageInput)
	}
	if !strings.HasPrefix(stageInput, "\n") {
		t.Errorf("image stage ran after whitespace normalization: %q", stageInput)
	}
	if !strings.Contains(got, "![](./images/img.png)") {
		t.Errorf("Clean() = %q, want canonical image path", got)
	}
	if stageReport[KeyImagesRewritten] != 1 {
		t.Errorf("images rewritten = %d, want 1", stageReport[KeyImagesRewritten])
	}
}

func TestClean_ImageStageKeepsCollisionRenames(t *testing.T) {
	t.Parallel()

	renames := map[string]string{"OEBPS/images/a.jpg": "a_1.jpg"}

	for _, fixLinks := range []bool{true, false} {
		opts := DefaultOptions()
		opts.FixLinks = fixLinks
		opts.ImageStage = func(s string) string {
			out, _ := CanonicalizeImages(s, renames)
			return out
		}

		got, _ := Clean("![](OEBPS/images/a.jpg)\n", opts)
		if want := "![](./images/a_1.jpg)\n"; got != want {
			t.Errorf("Clean(FixLinks=%v) = %q, want %q", fixLinks, got, want)
		}
	}
}

func TestClean_DisabledPassDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	_, full := Clean(sampleDocument, DefaultOptions())

	toggles := []struct {
		name    string
		disable func(*Options)
		key     string
	}{
		{"block wrappers", func(o *Options) { o.RemoveBlockWrappers = false }, KeyDivsRemoved},
		{"spans", func(o *Options) { o.RemoveSpans = false }, KeySpansRemoved},
		{"headers", func(o *Options) { o.FixHeaders = false }, KeyHeadersFixed},
		{"links", func(o *Options) { o.FixLinks = false }, KeyLinksFixed},
	}

	for _, tt := range toggles {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := DefaultOptions()
			tt.disable(&opts)
			_, report := Clean(sampleDocument, opts)

			if report[tt.key] != 0 {
				t.Errorf("disabled pass counted %d", report[tt.key])
			}
			for _, other := range toggles {
				if other.key == tt.key {
					continue
				}
				if report[other.key] != full[other.key] {
					t.Errorf("report[%s] = %d, want %d", other.key, report[other.key], full[other.key])
				}
			}
		})
	}
}

func TestClean_WhitespaceDisabled(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.NormalizeWhitespace = false
	got, _ := Clean("text   \n# Header", opts)

	if got != "text   \n# Header" {
		t.Errorf("Clean() = %q, want whitespace untouched", got)
	}
}

func TestClean_FinalSweepAlwaysRuns(t *testing.T) {
	t.Parallel()

	got, _ := Clean("<center>Title</center>\n* * *\ntext", Options{})
	want := "Title\n\n---\n\ntext"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestClean_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	got, report := Clean("::: {#a}\r\ntext\r\n:::\r\n", DefaultOptions())
	if strings.Contains(got, "\r") {
		t.Errorf("Clean() left carriage returns: %q", got)
	}
	if report[KeyDivsRemoved] != 2 {
		t.Errorf("divs removed = %d, want 2", report[KeyDivsRemoved])
	}
}

func TestRules_Order(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.ImageStage = func(s string) string { return s }

	var names []string
	for _, r := range Rules(opts) {
		names = append(names, r.Name)
	}
	want := "block-wrappers,empty-spans,headers,links,images,whitespace,final-sweep"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Rules() order = %s, want %s", got, want)
	}

	names = names[:0]
	for _, r := range Rules(Options{}) {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "final-sweep" {
		t.Errorf("Rules(Options{}) = %s, want final-sweep only", got)
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	r := NewReport()
	r.Add(KeyDivsRemoved, 3)
	r.Add(KeyDivsRemoved, -5)
	r.Merge(Report{KeyDivsRemoved: 1, KeyImagesRewritten: 2})

	if r[KeyDivsRemoved] != 4 {
		t.Errorf("divs = %d, want 4", r[KeyDivsRemoved])
	}
	if r[KeyImagesRewritten] != 2 {
		t.Errorf("images = %d, want 2", r[KeyImagesRewritten])
	}
	if r.Total() != 6 {
		t.Errorf("Total() = %d, want 6", r.Total())
	}
	if _, ok := r[KeyLinksFixed]; !ok {
		t.Error("NewReport() missing links_fixed key")
	}
}
