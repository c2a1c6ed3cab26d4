package media

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-epub2md/internal/fileutil"
	"github.com/alnah/go-epub2md/internal/logging"
)

// rename moves one image; tests replace it to simulate failures.
var rename = os.Rename

// FlattenResult describes what Flatten did to an images directory.
type FlattenResult struct {
	// Renames maps the original slash-separated path relative to the images
	// directory to the file name the image now has at the top level.
	Renames map[string]string
	Found   int // image files seen, nested or not
	Moved   int // nested image files moved to the top level
}

// Flatten moves every image file found below dir's subdirectories into dir.
// Names are sanitized and deduplicated with a numeric suffix. Subdirectories
// left empty are removed, deepest first. A missing dir yields an empty result.
//
// A move that fails is logged and skipped; only an unreadable dir is an error.
func Flatten(dir string, logger *slog.Logger) (FlattenResult, error) {
	logger = logging.OrDiscard(logger)
	res := FlattenResult{Renames: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return res, err
	}

	claimed := make(map[string]bool, len(entries))
	for _, e := range entries {
		claimed[e.Name()] = true
	}

	var nested, subdirs []string
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() && p != dir {
				return fs.SkipDir
			}
			return nil
		}
		if p == dir {
			return nil
		}
		if d.IsDir() {
			subdirs = append(subdirs, p)
			return nil
		}
		if !fileutil.IsImageFile(p) {
			return nil
		}
		res.Found++
		if filepath.Dir(p) != filepath.Clean(dir) {
			nested = append(nested, p)
		}
		return nil
	})
	if walkErr != nil {
		return res, walkErr
	}

	for _, src := range nested {
		name := freeName(filepath.Base(src), claimed)
		dst := filepath.Join(dir, name)
		if err := rename(src, dst); err != nil {
			logger.Warn("failed to move image", "from", src, "to", dst, "error", err)
			continue
		}
		claimed[name] = true
		rel, _ := filepath.Rel(dir, src)
		res.Renames[filepath.ToSlash(rel)] = name
		res.Moved++
		logger.Debug("moved image", "from", rel, "to", name)
	}

	removeEmptyDirs(subdirs, logger)
	return res, nil
}

// freeName sanitizes name and appends _1, _2... until it is unclaimed.
func freeName(name string, claimed map[string]bool) string {
	candidate := fileutil.SanitizeFileName(name, 0)
	for i := 1; claimed[candidate]; i++ {
		candidate = fileutil.SanitizeFileName(name, i)
	}
	return candidate
}

// removeEmptyDirs removes the given directories deepest first. Directories
// that still hold files are left alone.
func removeEmptyDirs(dirs []string, logger *slog.Logger) {
	sort.Slice(dirs, func(i, j int) bool {
		di := strings.Count(dirs[i], string(filepath.Separator))
		dj := strings.Count(dirs[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return dirs[i] > dirs[j]
	})
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(d); err != nil {
			logger.Debug("could not remove directory", "path", d, "error", err)
		}
	}
}
