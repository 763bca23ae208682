package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mdprune/internal/action"
	"github.com/vk/mdprune/internal/testutil"
)

type fakeTrash struct{ trashed []string }

func (f *fakeTrash) Trash(path string) error {
	f.trashed = append(f.trashed, path)
	return os.Remove(path)
}

func newTestConfig(t *testing.T, dir string, a action.Action) *Config {
	t.Helper()
	cfg, err := NewConfig(Config{
		Directory:   dir,
		Action:      a,
		LogLevel:    "debug",
		LogFormat:   "text",
		WorkerCount: 2,
	})
	require.NoError(t, err)
	return cfg
}

func TestRun_RecyclesOrphans(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := testutil.WriteTree(t, map[string]string{
		"docs/index.md":     "![a](img/used.png)",
		"docs/img/used.png": "",
		"docs/img/old.png":  "",
		"docs/stale.gif":    "",
	})
	trash := &fakeTrash{}
	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	app := NewApp(out, logs, newTestConfig(t, filepath.Join(base, "docs"), action.Action{Kind: action.Recycle}), WithTrash(trash))

	// --- Act ---
	err := app.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "docs/img/old.png", lines[0])
	assert.Equal(t, "docs/stale.gif", lines[1])
	assert.Contains(t, lines[2], "Recycled: 2 image(s)")
	assert.Len(t, trash.trashed, 2)
	assert.Equal(t, []string{"docs/img/used.png", "docs/index.md"}, testutil.ListFiles(t, base))
	assert.Contains(t, logs.String(), "Scan finished.")
}

func TestRun_DeleteWithNothingToDoPrintsNothing(t *testing.T) {
	t.Parallel()

	base := testutil.WriteTree(t, map[string]string{
		"index.md": "![a](a.png)",
		"a.png":    "",
	})
	out := &bytes.Buffer{}
	app := NewApp(out, &testutil.SafeBuffer{}, newTestConfig(t, base, action.Action{Kind: action.Delete}))

	err := app.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, []string{"a.png", "index.md"}, testutil.ListFiles(t, base))
}

func TestRun_MovesOrphans(t *testing.T) {
	t.Parallel()

	base := testutil.WriteTree(t, map[string]string{
		"site/a.png": "",
		"site/b.svg": "",
	})
	out := &bytes.Buffer{}
	cfg := newTestConfig(t, filepath.Join(base, "site"), action.Action{Kind: action.Move, Dir: filepath.Join(base, "attic")})
	app := NewApp(out, &testutil.SafeBuffer{}, cfg)

	err := app.Run(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "site/a.png\nsite/b.svg\n")
	assert.Contains(t, out.String(), "Moved: 2 image(s)")
	assert.Equal(t, []string{"attic/a.png", "attic/b.svg"}, testutil.ListFiles(t, base))
}

func TestRun_DirectoryErrors(t *testing.T) {
	t.Parallel()

	base := testutil.WriteTree(t, map[string]string{"file.md": ""})

	testCases := []struct {
		name    string
		dir     string
		wantErr error
	}{
		{name: "Missing directory", dir: filepath.Join(base, "missing"), wantErr: ErrDirectoryNotFound},
		{name: "Path is a file", dir: filepath.Join(base, "file.md"), wantErr: ErrNotADirectory},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := NewApp(&bytes.Buffer{}, &testutil.SafeBuffer{}, newTestConfig(t, tc.dir, action.Action{Kind: action.Delete}))

			err := app.Run(context.Background())

			require.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Contains(t, err.Error(), tc.dir)
		})
	}
}

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{WorkerCount: 1})
	require.Error(t, err)

	_, err = NewConfig(Config{Directory: ".", Action: action.Action{Kind: action.Move}, WorkerCount: 1})
	require.Error(t, err)

	_, err = NewConfig(Config{Directory: ".", WorkerCount: 0})
	require.Error(t, err)

	cfg, err := NewConfig(Config{Directory: ".", WorkerCount: 1})
	require.NoError(t, err)
	assert.Equal(t, action.Recycle, cfg.Action.Kind)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docs", displayName("docs"))
	assert.Equal(t, "docs", displayName("notes/docs/"))
	assert.Equal(t, ".", displayName("."))
	assert.Equal(t, ".", displayName(".."))
	assert.Equal(t, ".", displayName("/"))
}

func TestNewLogger_LevelsAndFormats(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := newLogger("info", "json", buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("bogus", "text", buf).Info("below default warn")
	assert.Empty(t, buf.String())
}
