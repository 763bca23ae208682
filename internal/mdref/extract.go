package mdref

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vk/mdprune/internal/ctxlog"
)

var (
	markdownImage = regexp.MustCompile(`!\[.*?\]\(([^)]+?)(?:\s+["'].*?["'])?\)`)
	htmlImage     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
)

// ReadError is returned when a Markdown file cannot be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read file: %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Extract reads the Markdown file at markdownPath and returns the canonical
// paths of the local images it references. baseDir must already be
// canonical.
func Extract(ctx context.Context, markdownPath, baseDir string) (map[string]struct{}, error) {
	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return nil, &ReadError{Path: markdownPath, Err: err}
	}

	markdownDir := filepath.Dir(markdownPath)
	refs := make(map[string]struct{})
	for _, target := range ImageTargets(string(content)) {
		resolved, ok := Resolve(target, markdownDir, baseDir)
		if !ok {
			ctxlog.FromContext(ctx).Debug("Unresolved image reference.", "file", markdownPath, "target", target)
			continue
		}
		refs[resolved] = struct{}{}
	}
	return refs, nil
}

// ImageTargets returns the local image targets found in content, Markdown
// syntax first, then HTML tags, in document order. Targets are trimmed and
// remote ones are left out.
func ImageTargets(content string) []string {
	var targets []string
	for _, re := range []*regexp.Regexp{markdownImage, htmlImage} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			target := strings.TrimSpace(m[1])
			if target == "" || IsURL(target) {
				continue
			}
			targets = append(targets, target)
		}
	}
	return targets
}

// IsURL reports whether target points somewhere other than the local file system.
func IsURL(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "data:")
}
