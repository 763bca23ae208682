package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gookit/color"
	"github.com/vk/mdprune/internal/action"
	"github.com/vk/mdprune/internal/app"
	"github.com/vk/mdprune/internal/scanner"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("mdprune", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprintf(output, `
%s

%s
  mdprune [options] DIRECTORY

%s
  DIRECTORY
    Directory tree holding the Markdown files and images to check.

%s
`,
			color.Bold.Sprint("mdprune - Remove orphaned image files from markdown directories."),
			color.Bold.Sprint("Usage:"),
			color.Bold.Sprint("Arguments:"),
			color.Bold.Sprint("Options:"))
		flagSet.PrintDefaults()
	}

	recycleFlag := flagSet.Bool("recycle", false, "Move orphaned images to the system recycle bin (default).")
	deleteFlag := flagSet.Bool("delete", false, "Permanently delete orphaned images.")
	moveFlag := flagSet.String("move", "", "Move orphaned images to the specified `DIR`.")
	extensionsFlag := flagSet.String("extensions", strings.Join(scanner.DefaultExtensions, ","), "Image file extensions to consider (comma-separated).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of markdown files parsed concurrently.")

	// Flags may follow the directory, so parsing resumes after each
	// positional argument.
	var positional []string
	rest := args
	for {
		if err := flagSet.Parse(rest); err != nil {
			if err == flag.ErrHelp {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if flagSet.NArg() == 0 {
			break
		}
		// After "--" everything is positional, flag-like or not.
		if consumed := len(rest) - flagSet.NArg(); consumed > 0 && rest[consumed-1] == "--" {
			positional = append(positional, flagSet.Args()...)
			break
		}
		positional = append(positional, flagSet.Arg(0))
		rest = flagSet.Args()[1:]
	}
	slog.Debug("Arguments parsed successfully.", "positional", positional)

	if len(positional) == 0 {
		slog.Debug("No directory provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if len(positional) > 1 {
		return nil, false, usageError("expected exactly one DIRECTORY, got %d arguments", len(positional))
	}
	directory := positional[0]

	// --move with an empty value still counts as chosen.
	moveSet := false
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "move" {
			moveSet = true
		}
	})

	chosen := 0
	for _, set := range []bool{*recycleFlag, *deleteFlag, moveSet} {
		if set {
			chosen++
		}
	}
	if chosen > 1 {
		return nil, false, usageError("--recycle, --delete and --move are mutually exclusive")
	}

	act := action.Action{Kind: action.Recycle}
	switch {
	case *deleteFlag:
		act = action.Action{Kind: action.Delete}
	case moveSet:
		if *moveFlag == "" {
			return nil, false, usageError("--move requires a directory")
		}
		act = action.Action{Kind: action.Move, Dir: *moveFlag}
	}

	extensions := splitExtensions(*extensionsFlag)
	if len(extensions) == 0 {
		return nil, false, usageError("--extensions must list at least one extension")
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Directory:   directory,
		Action:      act,
		Extensions:  extensions,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// splitExtensions splits a comma-separated list into trimmed, lower-cased
// extensions. Empty items are dropped.
func splitExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
