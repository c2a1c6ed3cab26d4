package epub2md

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-epub2md/internal/epub"
)

// ReadMetadata reads the package metadata of the EPUB at path. When the
// archive is unreadable or lacks a title, author or series, those fields
// are guessed from the file name instead.
func ReadMetadata(path string) (Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return Metadata{}, err
	}

	fallback := epub.MetadataFromFilename(path)

	book, err := epub.Open(path)
	if err != nil {
		return Metadata(fallback), nil
	}
	defer func() { _ = book.Close() }()

	md := book.Metadata()
	if md.Title == "" {
		md.Title = fallback.Title
	}
	if md.Author == "" {
		md.Author = fallback.Author
	}
	if md.Series == "" {
		md.Series = fallback.Series
	}
	return Metadata(md), nil
}
