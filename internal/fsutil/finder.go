// Package fsutil discovers definition files on disk.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension returns every file under root whose name ends with
// extension, sorted. Directories below root named with a leading "." or "_"
// are not descended into, the same rule the Go tool applies to packages.
func FindFilesByExtension(root string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if HasExtension(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// IsIgnoredDir reports whether a directory named name is skipped during
// discovery.
func IsIgnoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// HasExtension reports whether name ends with extension, ignoring case.
func HasExtension(name, extension string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(extension))
}
