package epub2md

import (
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-epub2md/internal/dateutil"
)

const frontmatterDelimiter = "---"

// lineBreaks matches CR/LF runs collapsed in descriptions.
var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// FrontmatterConfig configures SynthesizeFrontmatter.
type FrontmatterConfig struct {
	// CustomFields are emitted after the metadata fields, in order.
	CustomFields []CustomField

	// Now stamps "auto" date values. Nil means time.Now.
	Now func() time.Time
}

// CustomField is an extra frontmatter line. Value may be "auto" or
// "auto:FORMAT" to stamp the conversion date.
type CustomField struct {
	Key   string
	Value string
}

// SynthesizeFrontmatter renders md as a YAML frontmatter block: title,
// author, publisher, date, language and description when present, then the
// custom fields. Blank fields get no line. Values are double-quoted with
// backslashes and quotes escaped.
//
// An "auto" custom value whose format is invalid is emitted verbatim;
// config validation rejects such formats before they get here.
func SynthesizeFrontmatter(md Metadata, cfg FrontmatterConfig) string {
	var b strings.Builder
	b.WriteString(frontmatterDelimiter + "\n")

	fields := []struct{ key, value string }{
		{"title", md.Title},
		{"author", md.Author},
		{"publisher", md.Publisher},
		{"date", md.Date},
		{"language", md.Language},
		{"description", lineBreaks.ReplaceAllString(md.Description, " ")},
	}
	for _, f := range fields {
		writeField(&b, f.key, f.value)
	}

	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	for _, f := range cfg.CustomFields {
		value := f.Value
		if dateutil.IsAuto(value) {
			if resolved, err := dateutil.ResolveDate(value, now()); err == nil {
				value = resolved
			}
		}
		writeField(&b, f.Key, value)
	}

	b.WriteString(frontmatterDelimiter + "\n")
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if strings.TrimSpace(value) == "" || key == "" {
		return
	}
	b.WriteString(key)
	b.WriteString(`: "`)
	b.WriteString(escapeQuoted(value))
	b.WriteString("\"\n")
}

// escapeQuoted escapes a value for a YAML double-quoted scalar.
func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	// Keep every field on one line.
	return lineBreaks.ReplaceAllString(s, " ")
}
