package epub

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/alnah/go-epub2md/internal/fileutil"
)

// Chapters returns the content documents of the spine in reading order.
func (b *Book) Chapters() []Item {
	var docs []Item
	for _, it := range b.Spine() {
		if it.IsDocument() {
			docs = append(docs, it)
		}
	}
	return docs
}

// ImagePaths returns the archive paths of every image in the book: manifest
// image items plus any entry with an image extension, sorted.
func (b *Book) ImagePaths() []string {
	seen := make(map[string]bool)
	for _, it := range b.Manifest() {
		if it.IsImage() {
			if _, ok := b.files[it.Path]; ok {
				seen[it.Path] = true
			}
		}
	}
	for name, f := range b.files {
		if !f.FileInfo().IsDir() && fileutil.IsImageFile(name) {
			seen[name] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ExtractImages writes every image into destDir, keeping its archive path.
// Entries that would land outside destDir are skipped. The returned map goes
// from archive path to written file path.
func (b *Book) ExtractImages(destDir string) (map[string]string, error) {
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", destDir, err)
	}

	written := make(map[string]string)
	for _, name := range b.ImagePaths() {
		target := filepath.Join(absDir, filepath.FromSlash(name))
		if !fileutil.IsPathUnderDir(target, absDir) || target == absDir {
			continue
		}
		if err := b.extractFile(name, target); err != nil {
			return written, err
		}
		written[name] = target
	}
	return written, nil
}

func (b *Book) extractFile(name, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}

	rc, err := b.files[name].Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G302 G304 -- target checked against destDir
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxEntrySize)); err != nil {
		_ = out.Close()
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	return out.Close()
}
