package yamlutil_test

// Notes:
// - Marshal error branch is not tested: goccy/go-yaml only fails on
//   unmarshalable types (channels, funcs), which never reach this package.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-epub2md/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		want    testConfig
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true"),
			dest: &testConfig{},
			want: testConfig{Name: "test", Count: 42, Enabled: true},
		},
		{
			name: "JSON is accepted",
			data: []byte(`{"name": "json", "count": 7}`),
			dest: &testConfig{},
			want: testConfig{Name: "json", Count: 7},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: x"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := *tt.dest.(*testConfig); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshal_InputTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize))
	err := yamlutil.Unmarshal(data, &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("name: ok\nbogus: 1"), &cfg); err == nil {
		t.Error("expected error for unknown field, got nil")
	}

	if err := yamlutil.UnmarshalStrict([]byte("name: ok"), &cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestSplitFrontmatter - Separates the leading block from the body
// ---------------------------------------------------------------------------

func TestSplitFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		doc       string
		wantBlock string
		wantBody  string
		wantErr   error
	}{
		{
			name:      "block and body",
			doc:       "---\ntitle: \"A\"\n---\n\n# Body\n",
			wantBlock: "title: \"A\"",
			wantBody:  "\n# Body\n",
		},
		{
			name:      "empty block",
			doc:       "---\n---\nbody",
			wantBlock: "",
			wantBody:  "body",
		},
		{
			name:     "no frontmatter",
			doc:      "# Title\n",
			wantBody: "# Title\n",
			wantErr:  yamlutil.ErrNoFrontmatter,
		},
		{
			name:     "unclosed block",
			doc:      "---\ntitle: x\n",
			wantBody: "---\ntitle: x\n",
			wantErr:  yamlutil.ErrOpenFrontmatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, body, err := yamlutil.SplitFrontmatter(tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if block != tt.wantBlock {
				t.Errorf("block = %q, want %q", block, tt.wantBlock)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestUnmarshalFrontmatter(t *testing.T) {
	t.Parallel()

	var got struct {
		Title string `yaml:"title"`
	}
	doc := "---\ntitle: \"He said \\\"Hi\\\"\"\n---\n\nbody\n"
	if err := yamlutil.UnmarshalFrontmatter(doc, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != `He said "Hi"` {
		t.Errorf("Title = %q, want %q", got.Title, `He said "Hi"`)
	}
}
