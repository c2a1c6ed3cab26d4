package epub

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Metadata holds the Dublin Core fields of the package document.
// Every value is trimmed and NFC-normalized.
type Metadata struct {
	Title       string
	Author      string // creators joined with ", "
	Publisher   string
	Date        string
	Language    string
	Description string // markup stripped
	Subjects    []string
	Identifier  string
	ISBN        string
	Rights      string
	Series      string
}

// Metadata extracts the package metadata.
func (b *Book) Metadata() Metadata {
	m := b.pkg.Metadata
	md := Metadata{
		Title:       first(m.Titles),
		Author:      strings.Join(authors(m.Creators), ", "),
		Publisher:   first(m.Publishers),
		Date:        first(m.Dates),
		Language:    first(m.Languages),
		Description: plainText(first(m.Descriptions)),
		Rights:      first(m.Rights),
		Series:      series(m.Metas),
	}

	for _, s := range m.Subjects {
		if v := clean(s.Value); v != "" {
			md.Subjects = append(md.Subjects, v)
		}
	}

	for _, id := range m.Identifiers {
		v := clean(id.Value)
		if v == "" {
			continue
		}
		if isISBN(id.Scheme, v) {
			if md.ISBN == "" {
				md.ISBN = strings.TrimPrefix(strings.TrimPrefix(v, "urn:isbn:"), "URN:ISBN:")
			}
			continue
		}
		if md.Identifier == "" {
			md.Identifier = v
		}
	}
	return md
}

// clean trims, collapses inner whitespace and NFC-normalizes a value.
func clean(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func first(elems []dcElement) string {
	for _, e := range elems {
		if v := clean(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// authors keeps creators without a role or with the "aut" role, falling
// back to every creator when none qualifies.
func authors(creators []dcElement) []string {
	var names, all []string
	for _, c := range creators {
		v := clean(c.Value)
		if v == "" {
			continue
		}
		all = append(all, v)
		if c.Role == "" || strings.EqualFold(c.Role, "aut") {
			names = append(names, v)
		}
	}
	if len(names) == 0 {
		return all
	}
	return names
}

// series reads calibre's series meta or an EPUB 3 collection.
func series(metas []opfMeta) string {
	for _, m := range metas {
		if m.Name == "calibre:series" {
			if v := clean(m.Content); v != "" {
				return v
			}
		}
	}
	for _, m := range metas {
		if m.Property == "belongs-to-collection" {
			if v := clean(m.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func isISBN(scheme, value string) bool {
	return strings.EqualFold(scheme, "isbn") || strings.Contains(strings.ToLower(value), "isbn")
}

// plainText strips markup from descriptions that carry escaped HTML.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return clean(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
