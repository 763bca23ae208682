// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vk/mdprune/internal/ctxlog"
)

// FindFilesByExtension recursively searches rootPath for regular files whose
// extension matches one of exts, ignoring case. Symbolic links are neither
// followed nor reported. Entries that cannot be read below the root are
// skipped; a root that cannot be read is an error.
func FindFilesByExtension(ctx context.Context, rootPath string, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		return nil, errors.New("at least one extension is required")
	}
	set := NewExtensionSet(exts...)
	return FindFiles(ctx, rootPath, set.Matches)
}

// FindFiles walks rootPath and returns every regular file whose base name
// satisfies match, in lexical walk order.
func FindFiles(ctx context.Context, rootPath string, match func(name string) bool) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			logger.Debug("Skipping unreadable entry.", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.Type().IsRegular() && match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// Extension returns the part of name after its last dot. A leading dot does
// not start an extension, so ".png" has none while "a." has an empty one.
func Extension(name string) (string, bool) {
	name = filepath.Base(name)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || name == ".." {
		return "", false
	}
	return name[i+1:], true
}

// Stem returns name without its extension, as defined by Extension.
func Stem(name string) string {
	name = filepath.Base(name)
	if ext, ok := Extension(name); ok {
		return name[:len(name)-len(ext)-1]
	}
	return name
}

// ExtensionSet is a case-insensitive set of file extensions without dots.
type ExtensionSet map[string]struct{}

// NewExtensionSet normalizes exts (trimmed, lower-cased, leading dot dropped).
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		set[ext] = struct{}{}
	}
	return set
}

// Matches reports whether the extension of name is in the set.
func (s ExtensionSet) Matches(name string) bool {
	ext, ok := Extension(name)
	if !ok {
		return false
	}
	_, found := s[strings.ToLower(ext)]
	return found
}
