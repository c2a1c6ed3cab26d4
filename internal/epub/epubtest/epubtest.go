// Package epubtest builds small EPUB archives on disk for tests.
package epubtest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Container points at OEBPS/content.opf.
const Container = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// Chapter is one XHTML document in the spine.
type Chapter struct {
	Name string // relative to OEBPS/
	Body string // inner HTML of <body>
}

// Book describes a minimal EPUB 2 package rooted at OEBPS/.
type Book struct {
	Title    string
	Authors  []string
	Language string
	Chapters []Chapter
	Images   map[string][]byte // relative to OEBPS/
	Extra    map[string]string // raw archive entries
}

// OPF renders the package document.
func (b Book) OPF() string {
	var meta strings.Builder
	if b.Title != "" {
		fmt.Fprintf(&meta, "    <dc:title>%s</dc:title>\n", b.Title)
	}
	for _, a := range b.Authors {
		fmt.Fprintf(&meta, "    <dc:creator opf:role=\"aut\">%s</dc:creator>\n", a)
	}
	if b.Language != "" {
		fmt.Fprintf(&meta, "    <dc:language>%s</dc:language>\n", b.Language)
	}

	var manifest, spine strings.Builder
	for i, ch := range b.Chapters {
		fmt.Fprintf(&manifest, "    <item id=\"ch%d\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", i, ch.Name)
		fmt.Fprintf(&spine, "    <itemref idref=\"ch%d\"/>\n", i)
	}
	for i, name := range sortedKeys(b.Images) {
		fmt.Fprintf(&manifest, "    <item id=\"img%d\" href=\"%s\" media-type=\"%s\"/>\n", i, name, imageType(name))
	}

	return `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf" version="2.0">
  <metadata>
` + meta.String() + `  </metadata>
  <manifest>
` + manifest.String() + `  </manifest>
  <spine>
` + spine.String() + `  </spine>
</package>`
}

// Write stores the book as an archive at path.
func (b Book) Write(t testing.TB, path string) {
	t.Helper()
	files := map[string][]byte{
		"mimetype":               []byte("application/epub+zip"),
		"META-INF/container.xml": []byte(Container),
		"OEBPS/content.opf":      []byte(b.OPF()),
	}
	for _, ch := range b.Chapters {
		files["OEBPS/"+ch.Name] = []byte(XHTML(ch.Body))
	}
	for name, data := range b.Images {
		files["OEBPS/"+name] = data
	}
	for name, data := range b.Extra {
		files[name] = []byte(data)
	}
	WriteZip(t, path, files)
}

// XHTML wraps body markup in a complete XHTML document.
func XHTML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title><style>p{}</style></head>
<body>` + body + `</body></html>`
}

// WriteZip writes a zip archive with the given entries at path.
// Entries are stored in name order, with "mimetype" first when present.
func WriteZip(t testing.TB, path string, files map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)

	names := sortedKeys(files)
	sort.SliceStable(names, func(i, j int) bool { return names[i] == "mimetype" && names[j] != "mimetype" })
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func imageType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
