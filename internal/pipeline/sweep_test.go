package pipeline

import (
	"strings"
	"testing"
)

func TestFinalSweep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      string
		wantCount int
	}{
		{
			name:  "escaped asterisk separator",
			input: "a\n\\*\\*\\*\nb",
			want:  "a\n\n---\n\nb",
		},
		{
			name:  "spaced asterisk separator",
			input: "a\n* * *\nb",
			want:  "a\n\n---\n\nb",
		},
		{
			name:  "long dash rule shortened",
			input: "a\n\n------------\n\nb",
			want:  "a\n\n---\n\nb",
		},
		{
			name:  "stray class token",
			input: "Text.was-a-p here",
			want:  "Text here",
		},
		{
			name:  "presentation attributes",
			input: `word style="color:red" align="center" vertical="top" word`,
			want:  "word word",
		},
		{
			name:  "center tags",
			input: "<center>Title</center>",
			want:  "Title",
		},
		{
			name:  "div and span tags with attributes",
			input: `<div class="x"><span lang="en">Body</span></div>`,
			want:  "Body",
		},
		{
			name:  "longer tag names kept",
			input: "<divider>",
			want:  "<divider>",
		},
		{
			name:  "underline unwrapped",
			input: "[[Link]{.underline}](#x)",
			want:  "[Link](#x)",
		},
		{
			name:  "id and class markers",
			input: "[word]{#a .b} and note[^1]{.noteref}",
			want:  "[word] and note[^1]",
		},
		{
			name:  "empty attribute set after bracket",
			input: "[word]{}",
			want:  "[word]",
		},
		{
			name:  "image attribute block",
			input: `![](images/a.png){width="50%"}`,
			want:  "![](images/a.png)",
		},
		{
			name:  "name and id fragments",
			input: `<a id="p1"></a><a name="n"></a>Text`,
			want:  "<a></a><a></a>Text",
		},
		{
			name:  "filename attribute kept",
			input: `filename="a.txt"`,
			want:  `filename="a.txt"`,
		},
		{
			name:      "duplicate whole-line images",
			input:     "![](a.png)\ntext\n![](a.png)\n![](b.png)",
			want:      "![](a.png)\ntext\n![](b.png)",
			wantCount: 1,
		},
		{
			name:  "inline duplicate kept",
			input: "![](a.png)\nsee ![](a.png) here",
			want:  "![](a.png)\nsee ![](a.png) here",
		},
		{
			name:  "punctuation-only lines dropped",
			input: "a\n- - -\n{}\n#\n__\nb",
			want:  "a\nb",
		},
		{
			name:  "blank lines kept",
			input: "a\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "closing brace in code kept",
			input: "```\n}\n```",
			want:  "```\n}\n```",
		},
		{
			name:  "layout tags in code kept",
			input: "```\n<div>x</div>\n<span id=\"a\" style=\"b\">y</span>\n```\n",
			want:  "```\n<div>x</div>\n<span id=\"a\" style=\"b\">y</span>\n```\n",
		},
		{
			name:  "separators in code kept",
			input: "~~~\n* * *\n-----\n[x]{#a}\n~~~",
			want:  "~~~\n* * *\n-----\n[x]{#a}\n~~~",
		},
		{
			name:  "prose after code still swept",
			input: "```\n<div>x</div>\n```\n<div>y</div>\n",
			want:  "```\n<div>x</div>\n```\ny\n",
		},
		{
			name:      "dropped last image keeps one trailing newline",
			input:     "![a](x.png)\n\ntext ![a](x.png) inline\n\n![a](x.png)\n",
			want:      "![a](x.png)\n\ntext ![a](x.png) inline\n",
			wantCount: 1,
		},
		{
			name:      "no trailing newline added",
			input:     "a\n![](x.png)\n![](x.png)",
			want:      "a\n![](x.png)",
			wantCount: 1,
		},
		{
			name:  "three blank lines collapse",
			input: "a\n\n\n\nb",
			want:  "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, count := FinalSweep(tt.input)
			if got != tt.want {
				t.Errorf("FinalSweep() = %q, want %q", got, tt.want)
			}
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestFinalSweep_ExposedArtifactsRemoved(t *testing.T) {
	t.Parallel()

	// The name fragment blocks the marker strip until it is gone.
	got, _ := FinalSweep(`[x]{#a name="n"}`)
	if got != "[x]" {
		t.Errorf("FinalSweep() = %q, want %q", got, "[x]")
	}
}

func TestFinalSweep_KeepsRuleMarker(t *testing.T) {
	t.Parallel()

	got, _ := FinalSweep("a\n\n---\n\nb")
	if !strings.Contains(got, "\n---\n") {
		t.Errorf("rule marker dropped: %q", got)
	}
}

func TestStripImageAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "![a](x.png){#id}", want: "![a](x.png)"},
		{input: "![a](Series (Book 1)/x.png){.c} tail", want: "![a](Series (Book 1)/x.png) tail"},
		{input: "![a](x.png) {#id}", want: "![a](x.png) {#id}"},
		{input: "![a](x.png){unclosed", want: "![a](x.png){unclosed"},
		{input: "no images", want: "no images"},
	}

	for _, tt := range tests {
		if got := stripImageAttributes(tt.input); got != tt.want {
			t.Errorf("stripImageAttributes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
