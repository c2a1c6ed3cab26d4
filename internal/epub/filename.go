package epub

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// "03 - Title (Series)" with the series optional.
	numberedName = regexp.MustCompile(`^(\d+)\s*-\s*(.+?)(?:\s*\(([^)]+)\))?\s*$`)
	// "Author - Title".
	authorTitleName = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)
)

// MetadataFromFilename guesses title, author and series from a book's file
// name. It is the fallback when the archive has no usable package document.
func MetadataFromFilename(name string) Metadata {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))

	if m := numberedName.FindStringSubmatch(stem); m != nil {
		return Metadata{Title: clean(m[2]), Series: clean(m[3])}
	}
	if m := authorTitleName.FindStringSubmatch(stem); m != nil {
		return Metadata{Author: clean(m[1]), Title: clean(m[2])}
	}
	return Metadata{Title: clean(stem)}
}
