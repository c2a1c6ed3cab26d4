// Package epub reads the parts of an EPUB archive the converter needs:
// package metadata, spine order, chapter documents and manifest images.
package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Sentinel errors for archive operations.
var (
	ErrNotZip       = errors.New("not a zip archive")
	ErrNoPackage    = errors.New("no package document (.opf) in archive")
	ErrFileNotFound = errors.New("file not found in archive")
	ErrPackageParse = errors.New("failed to parse package document")
)

// containerPath is where every EPUB declares its package documents.
const containerPath = "META-INF/container.xml"

// maxEntrySize caps how much of a single archive entry is read into memory.
const maxEntrySize = 64 << 20

// commonPackagePaths are tried when container.xml is missing or broken.
var commonPackagePaths = []string{"content.opf", "package.opf", "OEBPS/content.opf", "OPS/content.opf"}

// Book is an open EPUB archive.
type Book struct {
	zr      *zip.ReadCloser
	files   map[string]*zip.File
	opfPath string
	pkg     *opfPackage
}

// Open opens the archive at path and parses its package document.
func Open(path string) (*Book, error) {
	zr, err := zip.OpenReader(path) // #nosec G304 -- path is user-provided input
	if errors.Is(err, zip.ErrInsecurePath) {
		err = nil // unsafe entries are filtered at extraction
	}
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrNotZip, path)
		}
		return nil, err
	}

	b := &Book{zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		b.files[f.Name] = f
	}

	b.opfPath = b.findPackagePath()
	if b.opfPath == "" {
		_ = zr.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoPackage, path)
	}

	data, err := b.ReadFile(b.opfPath)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	pkg, err := parsePackage(data)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	b.pkg = pkg
	return b, nil
}

// Close releases the archive.
func (b *Book) Close() error {
	return b.zr.Close()
}

// PackagePath returns the archive path of the package document.
func (b *Book) PackagePath() string {
	return b.opfPath
}

// ReadFile returns the contents of an archive entry.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("reading %s: entry exceeds %d bytes", name, maxEntrySize)
	}
	return data, nil
}

// findPackagePath locates the package document: container.xml first, then
// common locations, then any .opf file.
func (b *Book) findPackagePath() string {
	if data, err := b.ReadFile(containerPath); err == nil {
		if p := parseContainer(data); p != "" {
			if _, ok := b.files[p]; ok {
				return p
			}
		}
	}

	for _, p := range commonPackagePaths {
		if _, ok := b.files[p]; ok {
			return p
		}
	}

	names := make([]string, 0, len(b.files))
	for name := range b.files {
		if strings.HasSuffix(strings.ToLower(name), ".opf") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}

// resolve turns an href from the package document into an archive path.
func (b *Book) resolve(href string) string {
	if k := strings.IndexByte(href, '#'); k >= 0 {
		href = href[:k]
	}
	return resolveHref(path.Dir(b.opfPath), href)
}

// resolveHref joins a percent-encoded relative href onto base.
func resolveHref(base, href string) string {
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if base == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(base, href))
}
