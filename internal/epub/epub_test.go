package epub_test

// Notes:
// - Archives are built on disk with epubtest; no fixtures are checked in
// - Zip-slip entries are written by hand since Book.Write only emits safe paths

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alnah/go-epub2md/internal/epub"
	"github.com/alnah/go-epub2md/internal/epub/epubtest"
)

func sampleBook() epubtest.Book {
	return epubtest.Book{
		Title:    "The Book",
		Authors:  []string{"Ann Author", "Bob Writer"},
		Language: "en",
		Chapters: []epubtest.Chapter{
			{Name: "text/ch1.xhtml", Body: "<h1>One</h1>"},
			{Name: "text/ch2.xhtml", Body: "<h1>Two</h1>"},
		},
		Images: map[string][]byte{
			"images/cover.jpg": []byte("jpeg"),
		},
	}
}

func openSample(t *testing.T, b epubtest.Book) *epub.Book {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	b.Write(t, path)
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	return book
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	t.Parallel()

	book := openSample(t, sampleBook())
	if got := book.PackagePath(); got != "OEBPS/content.opf" {
		t.Errorf("PackagePath() = %q, want OEBPS/content.opf", got)
	}
}

func TestOpen_NotZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fake.epub")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := epub.Open(path)
	if !errors.Is(err, epub.ErrNotZip) {
		t.Errorf("Open() error = %v, want ErrNotZip", err)
	}
}

func TestOpen_NoPackage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.epub")
	epubtest.WriteZip(t, path, map[string][]byte{"mimetype": []byte("application/epub+zip")})
	_, err := epub.Open(path)
	if !errors.Is(err, epub.ErrNoPackage) {
		t.Errorf("Open() error = %v, want ErrNoPackage", err)
	}
}

func TestOpen_PackageWithoutContainer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nocontainer.epub")
	epubtest.WriteZip(t, path, map[string][]byte{
		"book/package.opf": []byte(sampleBook().OPF()),
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = book.Close() }()
	if got := book.PackagePath(); got != "book/package.opf" {
		t.Errorf("PackagePath() = %q, want book/package.opf", got)
	}
}

func TestOpen_BrokenPackage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.epub")
	epubtest.WriteZip(t, path, map[string][]byte{
		"META-INF/container.xml": []byte(epubtest.Container),
		"OEBPS/content.opf":      []byte("<package><metadata>"),
	})
	_, err := epub.Open(path)
	if !errors.Is(err, epub.ErrPackageParse) {
		t.Errorf("Open() error = %v, want ErrPackageParse", err)
	}
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	book := openSample(t, sampleBook())
	_, err := book.ReadFile("OEBPS/nope.xhtml")
	if !errors.Is(err, epub.ErrFileNotFound) {
		t.Errorf("ReadFile() error = %v, want ErrFileNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Metadata
// ---------------------------------------------------------------------------

const richOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf" version="2.0">
  <metadata>
    <dc:title>  Cafe&#x301;   Stories </dc:title>
    <dc:creator opf:role="aut">Ann Author</dc:creator>
    <dc:creator opf:role="ill">Ian Illustrator</dc:creator>
    <dc:creator>Bob Writer</dc:creator>
    <dc:publisher>Press</dc:publisher>
    <dc:date>2020-01-02</dc:date>
    <dc:language>fr</dc:language>
    <dc:description>&lt;p&gt;A &lt;b&gt;fine&lt;/b&gt; book.&lt;/p&gt;</dc:description>
    <dc:subject>Fiction</dc:subject>
    <dc:subject> </dc:subject>
    <dc:subject>Short Stories</dc:subject>
    <dc:identifier opf:scheme="UUID">urn:uuid:1234</dc:identifier>
    <dc:identifier opf:scheme="ISBN">9780000000001</dc:identifier>
    <dc:rights>All rights reserved</dc:rights>
    <meta name="calibre:series" content="Tales"/>
  </metadata>
  <manifest/>
  <spine/>
</package>`

func TestMetadata(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rich.epub")
	epubtest.WriteZip(t, path, map[string][]byte{
		"META-INF/container.xml": []byte(epubtest.Container),
		"OEBPS/content.opf":      []byte(richOPF),
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = book.Close() }()

	want := epub.Metadata{
		Title:       "Café Stories",
		Author:      "Ann Author, Bob Writer",
		Publisher:   "Press",
		Date:        "2020-01-02",
		Language:    "fr",
		Description: "A fine book.",
		Subjects:    []string{"Fiction", "Short Stories"},
		Identifier:  "urn:uuid:1234",
		ISBN:        "9780000000001",
		Rights:      "All rights reserved",
		Series:      "Tales",
	}
	if got := book.Metadata(); !reflect.DeepEqual(got, want) {
		t.Errorf("Metadata() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestMetadata_EPUB3Collection(t *testing.T) {
	t.Parallel()

	opf := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Three</dc:title>
    <dc:identifier>urn:isbn:9781111111111</dc:identifier>
    <meta property="belongs-to-collection" id="c1">Saga</meta>
  </metadata>
  <manifest/>
  <spine/>
</package>`
	path := filepath.Join(t.TempDir(), "three.epub")
	epubtest.WriteZip(t, path, map[string][]byte{"content.opf": []byte(opf)})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = book.Close() }()

	md := book.Metadata()
	if md.Series != "Saga" {
		t.Errorf("Series = %q, want Saga", md.Series)
	}
	if md.ISBN != "9781111111111" {
		t.Errorf("ISBN = %q, want 9781111111111", md.ISBN)
	}
	if md.Identifier != "" {
		t.Errorf("Identifier = %q, want empty", md.Identifier)
	}
}

// ---------------------------------------------------------------------------
// Spine, Chapters and images
// ---------------------------------------------------------------------------

func TestChapters(t *testing.T) {
	t.Parallel()

	book := openSample(t, sampleBook())
	chapters := book.Chapters()
	var paths []string
	for _, ch := range chapters {
		paths = append(paths, ch.Path)
	}
	want := []string{"OEBPS/text/ch1.xhtml", "OEBPS/text/ch2.xhtml"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Chapters() paths = %v, want %v", paths, want)
	}

	data, err := book.ReadFile(chapters[1].Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "<h1>Two</h1>") {
		t.Errorf("chapter 2 content = %q", data)
	}
}

func TestImagePaths(t *testing.T) {
	t.Parallel()

	b := sampleBook()
	b.Extra = map[string]string{"OEBPS/misc/stray.png": "png"}
	book := openSample(t, b)

	want := []string{"OEBPS/images/cover.jpg", "OEBPS/misc/stray.png"}
	if got := book.ImagePaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("ImagePaths() = %v, want %v", got, want)
	}
}

func TestExtractImages(t *testing.T) {
	t.Parallel()

	book := openSample(t, sampleBook())
	dest := t.TempDir()

	written, err := book.ExtractImages(dest)
	if err != nil {
		t.Fatalf("ExtractImages: %v", err)
	}
	target, ok := written["OEBPS/images/cover.jpg"]
	if !ok {
		t.Fatalf("cover not extracted: %v", written)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpeg" {
		t.Errorf("extracted content = %q, want jpeg", data)
	}
	if want := filepath.Join(dest, "OEBPS", "images", "cover.jpg"); target != want {
		t.Errorf("target = %q, want %q", target, want)
	}
}

func TestExtractImages_SkipsTraversal(t *testing.T) {
	t.Parallel()

	b := sampleBook()
	b.Extra = map[string]string{"../evil.png": "evil"}
	book := openSample(t, b)

	root := t.TempDir()
	dest := filepath.Join(root, "images")
	written, err := book.ExtractImages(dest)
	if err != nil {
		t.Fatalf("ExtractImages: %v", err)
	}
	if _, ok := written["../evil.png"]; ok {
		t.Error("traversal entry was extracted")
	}
	if _, err := os.Stat(filepath.Join(root, "evil.png")); !os.IsNotExist(err) {
		t.Errorf("evil.png written outside destination (stat err = %v)", err)
	}
}

// ---------------------------------------------------------------------------
// MetadataFromFilename
// ---------------------------------------------------------------------------

func TestMetadataFromFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want epub.Metadata
	}{
		{"03 - The Hunt (Dark Tales).epub", epub.Metadata{Title: "The Hunt", Series: "Dark Tales"}},
		{"12-Plain Title.epub", epub.Metadata{Title: "Plain Title"}},
		{"Jane Doe - My Book.epub", epub.Metadata{Author: "Jane Doe", Title: "My Book"}},
		{"/shelf/just_a_title.epub", epub.Metadata{Title: "just a title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := epub.MetadataFromFilename(tt.name); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MetadataFromFilename(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}
