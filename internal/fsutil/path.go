package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonical returns the absolute path of p with every symbolic link
// resolved. It fails when p does not exist.
func Canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Within reports whether path equals base or lies below it. Both must be
// clean absolute paths; the comparison is by path element, so "/a/bc" is not
// within "/a/b".
func Within(path, base string) bool {
	if path == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(path, prefix)
}

// Exists reports whether anything (file, directory or dangling link) is
// present at p.
func Exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// SlashRel returns path relative to base using forward slashes. When path is
// not below base it is returned unchanged, also with forward slashes.
func SlashRel(path, base string) string {
	if Within(path, base) {
		if rel, err := filepath.Rel(base, path); err == nil {
			return strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
		}
	}
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}
