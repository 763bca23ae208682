package cli_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/mdprune/internal/action"
	"github.com/vk/mdprune/internal/app"
	"github.com/vk/mdprune/internal/cli"
)

var defaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"}

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Defaults recycle",
			args: []string{"docs"},
			expectedConfig: &app.Config{
				Directory:   "docs",
				Action:      action.Action{Kind: action.Recycle},
				Extensions:  defaultExtensions,
				LogFormat:   "text",
				LogLevel:    "warn",
				WorkerCount: 4,
			},
		},
		{
			name: "Happy Path with all flags",
			args: []string{
				"--delete",
				"--extensions= PNG, jpg ,,",
				"--log-level=DEBUG",
				"--log-format=json",
				"--workers=8",
				"/notes",
			},
			expectedConfig: &app.Config{
				Directory:   "/notes",
				Action:      action.Action{Kind: action.Delete},
				Extensions:  []string{"png", "jpg"},
				LogFormat:   "json",
				LogLevel:    "debug",
				WorkerCount: 8,
			},
		},
		{
			name: "Move with flags after the directory",
			args: []string{"docs", "--move", "/tmp/orphans", "-log-level", "info"},
			expectedConfig: &app.Config{
				Directory:   "docs",
				Action:      action.Action{Kind: action.Move, Dir: "/tmp/orphans"},
				Extensions:  defaultExtensions,
				LogFormat:   "text",
				LogLevel:    "info",
				WorkerCount: 4,
			},
		},
		{
			name: "Explicit recycle",
			args: []string{"--recycle", "docs"},
			expectedConfig: &app.Config{
				Directory:   "docs",
				Action:      action.Action{Kind: action.Recycle},
				Extensions:  defaultExtensions,
				LogFormat:   "text",
				LogLevel:    "warn",
				WorkerCount: 4,
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
				require.Contains(t, output, "-extensions")
			},
		},
		{
			name:       "No directory triggers clean exit with usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
			},
		},
		{name: "Delete and move are exclusive", args: []string{"--delete", "--move=x", "docs"}, expectErr: true},
		{name: "Recycle and delete are exclusive", args: []string{"--recycle", "--delete", "docs"}, expectErr: true},
		{name: "Move needs a directory", args: []string{"--move=", "docs"}, expectErr: true},
		{name: "Two directories", args: []string{"a", "b"}, expectErr: true},
		{name: "Empty extensions", args: []string{"--extensions=,", "docs"}, expectErr: true},
		{name: "Zero workers", args: []string{"--workers=0", "docs"}, expectErr: true},
		{name: "Invalid log level returns an error", args: []string{"--log-level=foo", "docs"}, expectErr: true},
		{name: "Invalid log format returns an error", args: []string{"--log-format=yaml", "docs"}, expectErr: true},
		{name: "Unknown flag returns an error", args: []string{"--bogus", "docs"}, expectErr: true},
		{name: "Flags after the terminator are positional", args: []string{"--", "docs", "--delete"}, expectErr: true},
		{
			name: "Terminator allows a directory that looks like a flag",
			args: []string{"--delete", "--", "--docs"},
			expectedConfig: &app.Config{
				Directory:   "--docs",
				Action:      action.Action{Kind: action.Delete},
				Extensions:  defaultExtensions,
				LogFormat:   "text",
				LogLevel:    "warn",
				WorkerCount: 4,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			appConfig, shouldExit, err := cli.Parse(tc.args, out)

			// --- Assert ---
			if tc.expectErr {
				require.Error(t, err)
				var exitErr *cli.ExitError
				require.True(t, errors.As(err, &exitErr), "Expected error to be of type ExitError")
				require.Equal(t, 2, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, appConfig); diff != "" {
					t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
