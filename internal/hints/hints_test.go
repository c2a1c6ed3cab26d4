package hints

// Notes:
// - ForPandocMissing tests cannot use t.Parallel() because they use t.Setenv()
//   and swap the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func TestForPandocMissing_Local(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(key, "")
	}

	hint := ForPandocMissing()
	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("hint = %q, want hint prefix", hint)
	}
	if !strings.Contains(hint, "--converter native") {
		t.Error("expected native converter suggestion")
	}
	if strings.Contains(hint, "containers") {
		t.Error("unexpected container suggestion outside CI/Docker")
	}
}

func TestForPandocMissing_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")

	if hint := ForPandocMissing(); !strings.Contains(hint, "containers") {
		t.Errorf("hint = %q, want container suggestion in CI", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"book.yaml", "/home/u/.config/go-epub2md/book.yaml"},
			want:     "or create /home/u/.config/go-epub2md/book.yaml",
		},
		{
			name:     "no user path",
			searched: []string{"book.yaml"},
			want:     "use --config /path/to/file.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ForConfigNotFound(tt.searched); !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	for name, hint := range map[string]string{
		"timeout": ForTimeout(),
		"output":  ForOutputDirectory(),
	} {
		if !strings.HasPrefix(hint, "\n  hint: ") {
			t.Errorf("%s hint = %q, want hint prefix", name, hint)
		}
	}
	if formatHints(nil) != "" {
		t.Error("formatHints(nil) should be empty")
	}
}
