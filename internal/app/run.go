package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/vk/mdprune/internal/action"
	"github.com/vk/mdprune/internal/ctxlog"
	"github.com/vk/mdprune/internal/fsutil"
	"github.com/vk/mdprune/internal/scanner"
)

var (
	// ErrDirectoryNotFound is returned when the target directory does not exist.
	ErrDirectoryNotFound = errors.New("directory does not exist")
	// ErrNotADirectory is returned when the target path is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")
)

// Run executes the prune lifecycle: validate the directory, find orphaned
// images, list them and apply the configured action.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "directory", a.config.Directory, "action", a.config.Action.Kind.String())

	if err := checkDirectory(a.config.Directory); err != nil {
		return err
	}

	result, err := scanner.FindOrphans(ctx, a.config.Directory, scanner.Options{
		Extensions: a.config.Extensions,
		Workers:    a.config.WorkerCount,
	})
	if err != nil {
		return err
	}
	a.logger.Info("Scan finished.", "images", len(result.Images), "referenced", len(result.Referenced), "orphans", len(result.Orphans))

	if len(result.Orphans) == 0 {
		a.logger.Debug("No orphaned images, nothing to do.")
		return nil
	}

	dirName := displayName(a.config.Directory)
	for _, orphan := range result.Orphans {
		fmt.Fprintf(a.outW, "%s/%s\n", dirName, fsutil.SlashRel(orphan, result.BaseDir))
	}

	trash := a.trash
	if trash == nil && a.config.Action.Kind == action.Recycle {
		if trash, err = action.DefaultTrash(); err != nil {
			return err
		}
	}

	count, err := action.NewExecutor(trash).Execute(ctx, a.config.Action, result.Orphans)
	if err != nil {
		a.logger.Debug("Action aborted.", "handled", count)
		return err
	}
	fmt.Fprintln(a.outW, color.Green.Sprint(a.config.Action.Summary(count)))

	a.logger.Debug("App.Run method finished.")
	return nil
}

func checkDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	return nil
}

// displayName is the last element of the directory argument as the user
// typed it, or "." when it has none.
func displayName(dir string) string {
	name := filepath.Base(filepath.Clean(dir))
	switch name {
	case ".", "..", string(filepath.Separator):
		return "."
	}
	return name
}
