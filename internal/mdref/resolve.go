package mdref

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/vk/mdprune/internal/fsutil"
)

// Resolve turns an image target into the canonical path of an existing file
// inside baseDir. The percent-decoded form is tried first; when it does not
// resolve, the target is retried as written, since file names on disk may
// themselves contain escape sequences.
func Resolve(target, markdownDir, baseDir string) (string, bool) {
	decoded := stripSuffixes(PercentDecode(target))
	if p, ok := resolvePath(decoded, markdownDir, baseDir); ok {
		return p, true
	}
	if decoded != target {
		return resolvePath(stripSuffixes(target), markdownDir, baseDir)
	}
	return "", false
}

// stripSuffixes drops a URL fragment, then a query string.
func stripSuffixes(p string) string {
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p = p[:i]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}

func resolvePath(p, markdownDir, baseDir string) (string, bool) {
	if p == "" {
		return "", false
	}

	var candidates []string
	if isRooted(p) {
		// Site-root style links first, then the literal absolute path.
		candidates = []string{filepath.Join(baseDir, p), filepath.Clean(p)}
	} else {
		candidates = []string{filepath.Join(markdownDir, p), filepath.Join(baseDir, p)}
	}

	for _, c := range candidates {
		canonical, err := fsutil.Canonical(c)
		if err != nil {
			continue
		}
		if fsutil.Within(canonical, baseDir) {
			return canonical, true
		}
	}
	return "", false
}

func isRooted(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(p)
}

// PercentDecode decodes %XX escapes. Malformed escapes are kept as written,
// and when the decoded bytes are not valid UTF-8 the input is returned
// unchanged. A '+' is not treated as a space.
func PercentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	if !utf8.Valid(out) {
		return s
	}
	return string(out)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
