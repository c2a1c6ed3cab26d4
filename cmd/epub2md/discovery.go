package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	epub2md "github.com/alnah/go-epub2md"
	"github.com/alnah/go-epub2md/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoBooks            = errors.New("no .epub files found")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single book to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// isEPUB reports whether path has an .epub extension (case-insensitive).
func isEPUB(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".epub")
}

// bookOutputPath returns <outputDir>/<name>/<name>.md, or the library
// default next to the book when outputDir is empty.
func bookOutputPath(epubPath, outputDir string) string {
	if outputDir == "" {
		return epub2md.DefaultOutputPath(epubPath)
	}
	stem := strings.TrimSuffix(filepath.Base(epubPath), filepath.Ext(epubPath))
	name := fileutil.SanitizeDirName(stem)
	return filepath.Join(outputDir, name, name+".md")
}

// discoverSingle resolves one book and its optional explicit output.
// An output ending in .md is used as is; anything else is a directory.
func discoverSingle(inputPath, output string) []FileToConvert {
	outPath := bookOutputPath(inputPath, "")
	switch {
	case strings.EqualFold(filepath.Ext(output), ".md"):
		outPath = output
	case output != "":
		outPath = bookOutputPath(inputPath, output)
	}
	return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}
}

// discoverDir lists the books directly in dir, sorted by name.
func discoverDir(dir, outputDir string) ([]FileToConvert, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []FileToConvert
	for _, e := range entries {
		if e.IsDir() || !isEPUB(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		files = append(files, FileToConvert{InputPath: path, OutputPath: bookOutputPath(path, outputDir)})
	}
	return files, nil
}

// discoverTree mirrors inputDir into outputDir: rel/x.epub becomes
// outputDir/rel/x/x.md. Subdirectories are walked only when recursive.
func discoverTree(inputDir, outputDir string, recursive bool) ([]FileToConvert, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUsage, inputDir)
	}
	if !recursive {
		return discoverDir(inputDir, outputDir)
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isEPUB(path) {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: bookOutputPath(path, filepath.Join(outputDir, filepath.Dir(rel))),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].InputPath < files[j].InputPath })
	return files, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > epub2md.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, epub2md.MaxPoolSize)
	}
	return nil
}
