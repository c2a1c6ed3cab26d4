// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config loading and frontmatter checks go through here so the underlying
// YAML library can change without touching callers.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// frontmatterDelimiter opens and closes a frontmatter block.
const frontmatterDelimiter = "---"

var (
	ErrNilData         = errors.New("yamlutil: nil or empty data")
	ErrNilDestination  = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge   = errors.New("yamlutil: input exceeds maximum size")
	ErrNoFrontmatter   = errors.New("yamlutil: document has no frontmatter block")
	ErrOpenFrontmatter = errors.New("yamlutil: frontmatter block is not closed")
)

func checkInput(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes YAML (or JSON, which is a YAML subset) into v.
func Unmarshal(data []byte, v any) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// SplitFrontmatter separates a leading "---" delimited block from the body.
// The returned block excludes both delimiter lines.
func SplitFrontmatter(doc string) (block, body string, err error) {
	if !strings.HasPrefix(doc, frontmatterDelimiter+"\n") {
		return "", doc, ErrNoFrontmatter
	}
	rest := doc[len(frontmatterDelimiter)+1:]

	if strings.HasPrefix(rest, frontmatterDelimiter) {
		return "", strings.TrimPrefix(rest[len(frontmatterDelimiter):], "\n"), nil
	}

	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end == -1 {
		return "", doc, ErrOpenFrontmatter
	}
	block = rest[:end]
	body = strings.TrimPrefix(rest[end+1+len(frontmatterDelimiter):], "\n")
	return block, body, nil
}

// UnmarshalFrontmatter decodes the frontmatter block of doc into v.
func UnmarshalFrontmatter(doc string, v any) error {
	block, _, err := SplitFrontmatter(doc)
	if err != nil {
		return err
	}
	return Unmarshal([]byte(block), v)
}
