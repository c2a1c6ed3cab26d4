package main

// Notes:
// - checkPandoc runs against a path that cannot exist, so the tests do not
//   depend on pandoc being installed and never swap convert.LookPath.
// - container detection also reads /.dockerenv; cases that expect "no
//   container" are skipped when the test itself runs in Docker.

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-epub2md/internal/convert"
	"github.com/alnah/go-epub2md/internal/hints"
)

func missingPandoc(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "no-such-pandoc")
}

// ---------------------------------------------------------------------------
// TestRunDoctor
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(nil, "")
	result := runDoctor(context.Background(), missingPandoc(t), env)

	if result.Pandoc.Found {
		t.Error("Pandoc.Found = true for a missing binary")
	}
	if result.Pandoc.Backend != convert.BackendNative {
		t.Errorf("Pandoc.Backend = %q, want %q", result.Pandoc.Backend, convert.BackendNative)
	}
	if result.Status != "warnings" {
		t.Errorf("Status = %q, want warnings", result.Status)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "pandoc not found") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
	if !result.System.TempWritable {
		t.Error("System.TempWritable = false")
	}
	if result.Env.OS == "" || result.Env.Arch == "" {
		t.Errorf("Env = %+v, want OS and Arch", result.Env)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd
// ---------------------------------------------------------------------------

func TestRunDoctorCmd(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil, "")
		code := runDoctorCmd(context.Background(), []string{"--json", "--pandoc", missingPandoc(t)}, env)
		if code != ExitSuccess {
			t.Errorf("exit code = %d, want %d", code, ExitSuccess)
		}

		var got doctorResult
		if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
		}
		if got.Status != "warnings" || got.Pandoc.Backend != convert.BackendNative {
			t.Errorf("result = %+v", got)
		}
	})

	t.Run("human", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil, "")
		code := runDoctorCmd(context.Background(), []string{"--pandoc", missingPandoc(t)}, env)
		if code != ExitSuccess {
			t.Errorf("exit code = %d, want %d", code, ExitSuccess)
		}
		for _, want := range []string{"epub2md doctor", "[WARN] Not found", "Auto backend: native", "Status: Ready with warnings"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("output missing %q:\n%s", want, stdout.String())
			}
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil, "")
		if code := runDoctorCmd(context.Background(), []string{"--fix"}, env); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv(nil, "")
		if code := runDoctorCmd(context.Background(), []string{"-h"}, env); code != ExitSuccess {
			t.Errorf("exit code = %d, want %d", code, ExitSuccess)
		}
		if !strings.Contains(stderr.String(), "Usage: epub2md doctor") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintDoctorResult
// ---------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result doctorResult
		want   []string
	}{
		{
			name: "ready with pandoc",
			result: doctorResult{
				Status: "ready",
				Pandoc: pandocInfo{Found: true, Path: "/usr/bin/pandoc", Version: "3.1.11", Backend: "pandoc"},
				Env:    envInfo{OS: "linux", Arch: "amd64", Container: true, ContainerHint: "/.dockerenv", CI: true},
				System: systemInfo{TempWritable: true},
			},
			want: []string{
				"[OK] Found at /usr/bin/pandoc",
				"[OK] Version: 3.1.11",
				"[OK] Auto backend: pandoc",
				"[OK] Platform: linux/amd64",
				"[OK] Container: detected (/.dockerenv)",
				"[OK] CI: detected",
				"[OK] Temp directory: writable",
				"Status: Ready to convert",
			},
		},
		{
			name: "errors",
			result: doctorResult{
				Status: "errors",
				Pandoc: pandocInfo{Backend: "native"},
				Errors: []string{"Temp directory not writable: /tmp"},
			},
			want: []string{
				"[ERROR] Temp directory: not writable",
				"Errors:",
				"[ERROR] Temp directory not writable: /tmp",
				"Status: Not ready (see errors above)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, &tt.result)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Parallel()

	t.Run("explicit override", func(t *testing.T) {
		t.Parallel()

		got, hint := isContainer(mapGetenv(map[string]string{"EPUB2MD_CONTAINER": "1"}))
		if !got || hint != "EPUB2MD_CONTAINER=1" {
			t.Errorf("isContainer = %v, %q", got, hint)
		}
	})

	t.Run("podman", func(t *testing.T) {
		t.Parallel()

		got, _ := isContainer(mapGetenv(map[string]string{"container": "podman"}))
		if !got {
			t.Error("isContainer = false, want true")
		}
	})

	t.Run("kubernetes", func(t *testing.T) {
		t.Parallel()

		got, _ := isContainer(mapGetenv(map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}))
		if !got {
			t.Error("isContainer = false, want true")
		}
	})

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		if hints.IsInContainer() {
			t.Skip("running inside a container")
		}
		if got, hint := isContainer(mapGetenv(nil)); got || hint != "" {
			t.Errorf("isContainer = %v, %q, want false", got, hint)
		}
	})
}
