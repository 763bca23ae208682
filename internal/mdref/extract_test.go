package mdref

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/mdprune/internal/testutil"
)

func TestImageTargets(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "Plain markdown image",
			content: "intro ![logo](img/logo.png) outro",
			want:    []string{"img/logo.png"},
		},
		{
			name:    "Double and single quoted titles",
			content: "![a](a.png \"Title A\")\n![b](b.png 'Title B')",
			want:    []string{"a.png", "b.png"},
		},
		{
			name:    "Empty alt text and spaces in path",
			content: "![](my picture.png)",
			want:    []string{"my picture.png"},
		},
		{
			name:    "HTML tags after markdown images",
			content: `<img src="html.png" alt="x"> then ![md](md.png) and <img width="3" src='single.svg'>`,
			want:    []string{"md.png", "html.png", "single.svg"},
		},
		{
			name: "Remote targets are ignored",
			content: "![a](http://example.com/a.png) ![b](https://example.com/b.png) " +
				"![c](//cdn.example.com/c.png) ![d](data:image/png;base64,AAAA) <img src=\"https://x/y.png\">",
			want: nil,
		},
		{
			name:    "Links that are not images are ignored",
			content: "[not an image](file.png)",
			want:    nil,
		},
		{
			name:    "Whitespace around target is trimmed",
			content: "![a](  padded.png  )",
			want:    []string{"padded.png"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ImageTargets(tc.content)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ImageTargets() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := testutil.WriteTree(t, map[string]string{
		"docs/guide.md": "![local](img/local.png)\n" +
			"![shared](/assets/shared.png \"shared\")\n" +
			"<img src=\"../assets/html.png\">\n" +
			"![missing](img/missing.png)\n" +
			"![remote](https://example.com/remote.png)\n",
		"docs/img/local.png": "",
		"assets/shared.png":  "",
		"assets/html.png":    "",
	})

	// --- Act ---
	refs, err := Extract(context.Background(), filepath.Join(base, "docs", "guide.md"), base)

	// --- Assert ---
	require.NoError(t, err)
	want := map[string]struct{}{
		filepath.Join(base, "docs", "img", "local.png"): {},
		filepath.Join(base, "assets", "shared.png"):     {},
		filepath.Join(base, "assets", "html.png"):       {},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_UnreadableFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	_, err := Extract(context.Background(), filepath.Join(base, "absent.md"), base)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	require.True(t, errors.Is(err, fs.ErrNotExist))
	require.Contains(t, err.Error(), "failed to read file")
}
