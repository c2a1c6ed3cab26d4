package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-epub2md/internal/dateutil"
	"github.com/alnah/go-epub2md/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxArgLength         = 256
	MaxExtraArgs         = 32
	MaxFieldKeyLength    = 64
	MaxFieldValueLength  = 500
	MaxCustomFields      = 32
	MaxImageBound        = 10000
	DefaultMaxWidth      = 1200
	DefaultMaxHeight     = 1600
	DefaultImagesDir     = "images"
	DefaultPandocPath    = "pandoc"
	DefaultTimeout       = 2 * time.Minute
	defaultTimeoutString = "2m"
)

// Converter backends.
const (
	BackendAuto   = "auto"
	BackendPandoc = "pandoc"
	BackendNative = "native"
)

// fieldKeyPattern restricts custom frontmatter keys to plain identifiers.
var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Config holds all configuration for EPUB conversion.
type Config struct {
	Input       InputConfig       `yaml:"input"`
	Output      OutputConfig      `yaml:"output"`
	Converter   ConverterConfig   `yaml:"converter"`
	Cleanup     CleanupConfig     `yaml:"cleanup"`
	Images      ImagesConfig      `yaml:"images"`
	Frontmatter FrontmatterConfig `yaml:"frontmatter"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to source)
}

// ConverterConfig selects and tunes the EPUB to Markdown backend.
type ConverterConfig struct {
	Backend    string   `yaml:"backend"`    // "auto", "pandoc", "native" (default: "auto")
	PandocPath string   `yaml:"pandocPath"` // Binary name or path (default: "pandoc")
	ExtraArgs  []string `yaml:"extraArgs"`  // Appended to the pandoc command line
	Timeout    string   `yaml:"timeout"`    // Go duration, e.g. "2m" (default: "2m")
}

// CleanupConfig toggles the optional cleanup passes.
// The final artifact sweep always runs.
type CleanupConfig struct {
	RemoveDivBlocks     bool `yaml:"removeDivBlocks"`
	RemoveSpans         bool `yaml:"removeSpans"`
	FixHeaders          bool `yaml:"fixHeaders"`
	FixLinks            bool `yaml:"fixLinks"`
	NormalizeWhitespace bool `yaml:"normalizeWhitespace"`
}

// ImagesConfig defines image extraction and optimization.
type ImagesConfig struct {
	Extract   bool   `yaml:"extract"`
	Dir       string `yaml:"dir"` // Single path segment under the output directory
	Optimize  bool   `yaml:"optimize"`
	MaxWidth  int    `yaml:"maxWidth"`
	MaxHeight int    `yaml:"maxHeight"`
}

// FrontmatterConfig defines the YAML block prepended to each document.
type FrontmatterConfig struct {
	Enabled      bool          `yaml:"enabled"`
	CustomFields []CustomField `yaml:"customFields"`
}

// CustomField is an extra frontmatter line, emitted in configured order.
// Value may be "auto" or "auto:FORMAT" to stamp the conversion date.
type CustomField struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Validate checks bounds and enum values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	// Validate converter fields
	switch strings.ToLower(c.Converter.Backend) {
	case "", BackendAuto, BackendPandoc, BackendNative:
		// valid
	default:
		return fmt.Errorf("%w: converter.backend %q (must be auto, pandoc, or native)", ErrInvalidValue, c.Converter.Backend)
	}
	if err := validateFieldLength("converter.pandocPath", c.Converter.PandocPath, MaxPathLength); err != nil {
		return err
	}
	if len(c.Converter.ExtraArgs) > MaxExtraArgs {
		return fmt.Errorf("%w: converter.extraArgs has %d entries (max %d)", ErrInvalidValue, len(c.Converter.ExtraArgs), MaxExtraArgs)
	}
	for i, arg := range c.Converter.ExtraArgs {
		if err := validateFieldLength(fmt.Sprintf("converter.extraArgs[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	if c.Converter.Timeout != "" {
		d, err := time.ParseDuration(c.Converter.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: converter.timeout %q (must be a positive duration like 90s or 2m)", ErrInvalidValue, c.Converter.Timeout)
		}
	}

	// Validate image fields
	if c.Images.Dir != "" {
		if c.Images.Dir != filepath.Base(c.Images.Dir) || c.Images.Dir == "." || c.Images.Dir == ".." || strings.ContainsAny(c.Images.Dir, `/\`) {
			return fmt.Errorf("%w: images.dir %q (must be a single directory name)", ErrInvalidValue, c.Images.Dir)
		}
	}
	if err := validateBound("images.maxWidth", c.Images.MaxWidth); err != nil {
		return err
	}
	if err := validateBound("images.maxHeight", c.Images.MaxHeight); err != nil {
		return err
	}

	// Validate frontmatter fields
	if len(c.Frontmatter.CustomFields) > MaxCustomFields {
		return fmt.Errorf("%w: frontmatter.customFields has %d entries (max %d)", ErrInvalidValue, len(c.Frontmatter.CustomFields), MaxCustomFields)
	}
	for i, f := range c.Frontmatter.CustomFields {
		name := fmt.Sprintf("frontmatter.customFields[%d]", i)
		if err := validateFieldLength(name+".key", f.Key, MaxFieldKeyLength); err != nil {
			return err
		}
		if !fieldKeyPattern.MatchString(f.Key) {
			return fmt.Errorf("%w: %s.key %q (must be a plain identifier)", ErrInvalidValue, name, f.Key)
		}
		if err := validateFieldLength(name+".value", f.Value, MaxFieldValueLength); err != nil {
			return err
		}
		if dateutil.IsAuto(f.Value) {
			if _, err := dateutil.ResolveDate(f.Value, time.Time{}); err != nil {
				return fmt.Errorf("%s.value: %w", name, err)
			}
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateBound accepts zero (use default) or 1..MaxImageBound.
func validateBound(fieldName string, v int) error {
	if v < 0 || v > MaxImageBound {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalidValue, fieldName, MaxImageBound, v)
	}
	return nil
}

// TimeoutDuration returns the converter timeout, falling back to DefaultTimeout.
func (c ConverterConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// DefaultConfig returns the configuration used when no file is given:
// every cleanup pass on, images extracted, frontmatter enabled.
func DefaultConfig() *Config {
	return &Config{
		Converter: ConverterConfig{
			Backend:    BackendAuto,
			PandocPath: DefaultPandocPath,
			ExtraArgs:  []string{"--wrap=none"},
			Timeout:    defaultTimeoutString,
		},
		Cleanup: CleanupConfig{
			RemoveDivBlocks:     true,
			RemoveSpans:         true,
			FixHeaders:          true,
			FixLinks:            true,
			NormalizeWhitespace: true,
		},
		Images: ImagesConfig{
			Extract:   true,
			Dir:       DefaultImagesDir,
			MaxWidth:  DefaultMaxWidth,
			MaxHeight: DefaultMaxHeight,
		},
		Frontmatter: FrontmatterConfig{Enabled: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .json
// Tries locations in order: current directory, ~/.config/go-epub2md/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".json"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-epub2md", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
