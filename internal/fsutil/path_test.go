package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mdprune/internal/testutil"
)

func TestWithin(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/docs/site")

	assert.True(t, Within(base, base))
	assert.True(t, Within(filepath.FromSlash("/docs/site/img/a.png"), base))
	assert.False(t, Within(filepath.FromSlash("/docs/sitemap/a.png"), base))
	assert.False(t, Within(filepath.FromSlash("/docs/a.png"), base))
}

func TestCanonical_ResolvesSymlinks(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, map[string]string{"real/a.png": ""})
	testutil.Symlink(t, filepath.Join(root, "real"), filepath.Join(root, "alias"))

	got, err := Canonical(filepath.Join(root, "alias", "a.png"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "a.png"), got)
}

func TestCanonical_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := Canonical(filepath.Join(t.TempDir(), "nope.png"))

	require.Error(t, err)
}

func TestSlashRel(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/docs")

	assert.Equal(t, "img/a.png", SlashRel(filepath.FromSlash("/docs/img/a.png"), base))
	assert.Equal(t, "/other/a.png", SlashRel(filepath.FromSlash("/other/a.png"), base))
}
