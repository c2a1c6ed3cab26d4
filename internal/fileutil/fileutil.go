// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// imageExtensions lists file extensions treated as extracted images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".bmp":  true,
}

var (
	// Characters not allowed in directory names on common filesystems.
	unsafeDirChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)

	// Anything outside word characters, dot and hyphen in a file name.
	unsafeFileChars = regexp.MustCompile(`[^\w.\-]`)
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "epub2md" -> false (name)
//   - "./custom.yaml" -> true (relative path)
//   - "/etc/epub2md.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsImageFile reports whether path has a known image extension (case-insensitive).
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// SanitizeDirName makes a book title safe for use as a directory name.
// Reserved characters are removed, whitespace runs collapse to one space,
// and an empty result becomes "output".
func SanitizeDirName(name string) string {
	s := unsafeDirChars.ReplaceAllString(name, "")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return "output"
	}
	return s
}

// SanitizeFileName replaces characters that break Markdown link targets with
// underscores. An index > 0 is appended before the extension.
//
//	SanitizeFileName("my cover.jpg", 0) -> "my_cover.jpg"
//	SanitizeFileName("cover.jpg", 2)    -> "cover_2.jpg"
func SanitizeFileName(name string, index int) string {
	s := unsafeFileChars.ReplaceAllString(name, "_")
	if index > 0 {
		ext := filepath.Ext(s)
		s = strings.TrimSuffix(s, ext) + "_" + strconv.Itoa(index) + ext
	}
	return s
}

// IsPathUnderDir checks if absPath is under dir (prevents path traversal).
func IsPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
