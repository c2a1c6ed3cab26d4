package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/alnah/go-epub2md/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "", want: slog.LevelInfo},
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: "warn", want: slog.LevelWarn},
		{name: " error ", want: slog.LevelError},
		{name: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.name)
			if tt.wantErr {
				if !errors.Is(err, logging.ErrInvalidLevel) {
					t.Fatalf("error = %v, want ErrInvalidLevel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNew_TextLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "file", "book.epub")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file=book.epub") {
		t.Errorf("output = %q, want warn record with attrs", out)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{JSON: true, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("converted", "divs_removed", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "converted" {
		t.Errorf("msg = %v, want converted", rec["msg"])
	}
}

func TestNew_QuietOverridesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Quiet: true, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("suppressed")
	logger.Error("kept")

	if strings.Contains(buf.String(), "suppressed") {
		t.Error("warn record written in quiet mode")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("error record missing in quiet mode")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := logging.New(logging.Options{Level: "loud"}); !errors.Is(err, logging.ErrInvalidLevel) {
		t.Errorf("error = %v, want ErrInvalidLevel", err)
	}
}

func TestOrDiscard(t *testing.T) {
	t.Parallel()

	if logging.OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := slog.Default()
	if logging.OrDiscard(l) != l {
		t.Error("OrDiscard(l) did not return l")
	}
	logging.Discard().Info("dropped")
}
