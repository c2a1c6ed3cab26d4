package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-epub2md/internal/config"
)

const envPrefix = "EPUB2MD_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // EPUB2MD_CONFIG: config file path
	Converter  string        // EPUB2MD_CONVERTER: auto, pandoc, native
	PandocPath string        // EPUB2MD_PANDOC_PATH: pandoc binary
	Timeout    time.Duration // EPUB2MD_TIMEOUT: per-book converter timeout
	InputDir   string        // EPUB2MD_INPUT_DIR: default input directory
	OutputDir  string        // EPUB2MD_OUTPUT_DIR: default output directory
	ImagesDir  string        // EPUB2MD_IMAGES_DIR: images directory name
	Optimize   *bool         // EPUB2MD_OPTIMIZE_IMAGES: downscale images
	Workers    int           // EPUB2MD_WORKERS: parallel workers
	LogLevel   string        // EPUB2MD_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid EPUB2MD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"EPUB2MD_CONFIG":          true,
	"EPUB2MD_CONVERTER":       true,
	"EPUB2MD_PANDOC_PATH":     true,
	"EPUB2MD_TIMEOUT":         true,
	"EPUB2MD_INPUT_DIR":       true,
	"EPUB2MD_OUTPUT_DIR":      true,
	"EPUB2MD_IMAGES_DIR":      true,
	"EPUB2MD_OPTIMIZE_IMAGES": true,
	"EPUB2MD_WORKERS":         true,
	"EPUB2MD_LOG_LEVEL":       true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations, booleans and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("EPUB2MD_CONFIG"),
		Converter:  getenv("EPUB2MD_CONVERTER"),
		PandocPath: getenv("EPUB2MD_PANDOC_PATH"),
		InputDir:   getenv("EPUB2MD_INPUT_DIR"),
		OutputDir:  getenv("EPUB2MD_OUTPUT_DIR"),
		ImagesDir:  getenv("EPUB2MD_IMAGES_DIR"),
		LogLevel:   getenv("EPUB2MD_LOG_LEVEL"),
	}

	if timeout := getenv("EPUB2MD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if optimize := getenv("EPUB2MD_OPTIMIZE_IMAGES"); optimize != "" {
		if b, err := strconv.ParseBool(optimize); err == nil {
			cfg.Optimize = &b
		}
	}

	if workers := getenv("EPUB2MD_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes warnings for unrecognized EPUB2MD_* variables.
// Helps catch typos like EPUB2MD_CONVERTOR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values over the loaded config.
// Precedence: defaults < config file < env vars < CLI flags
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Converter != "" {
		cfg.Converter.Backend = env.Converter
	}
	if env.PandocPath != "" {
		cfg.Converter.PandocPath = env.PandocPath
	}
	if env.Timeout > 0 {
		cfg.Converter.Timeout = env.Timeout.String()
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.ImagesDir != "" {
		cfg.Images.Dir = env.ImagesDir
	}
	if env.Optimize != nil {
		cfg.Images.Optimize = *env.Optimize
	}
}
