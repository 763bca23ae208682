// Package action disposes of orphaned images: moving them to the recycle bin,
// deleting them, or moving them into a directory.
package action

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/vk/mdprune/internal/ctxlog"
	"github.com/vk/mdprune/internal/fsutil"
)

// Kind selects what happens to orphaned images.
type Kind int

const (
	// Recycle moves images to the platform recycle bin.
	Recycle Kind = iota
	// Delete removes images permanently.
	Delete
	// Move relocates images into a directory.
	Move
)

func (k Kind) String() string {
	switch k {
	case Recycle:
		return "recycle"
	case Delete:
		return "delete"
	case Move:
		return "move"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Action is a Kind plus its target directory, which only Move uses.
type Action struct {
	Kind Kind
	Dir  string
}

// Summary is the line reported after count images were handled.
func (a Action) Summary(count int) string {
	switch a.Kind {
	case Delete:
		return fmt.Sprintf("Deleted: %d image(s)", count)
	case Move:
		return fmt.Sprintf("Moved: %d image(s)", count)
	default:
		return fmt.Sprintf("Recycled: %d image(s)", count)
	}
}

// FileError describes a failed operation on a single file.
type FileError struct {
	Op     string
	Path   string
	Target string
	Err    error
}

func (e *FileError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("failed to %s file from %s to %s: %v", e.Op, e.Path, e.Target, e.Err)
	}
	return fmt.Sprintf("failed to %s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Trasher moves a file into a recycle bin.
type Trasher interface {
	Trash(path string) error
}

// Executor applies actions to files.
type Executor struct {
	trash Trasher
}

// NewExecutor returns an Executor that recycles through trash. A nil trash
// makes Recycle fail.
func NewExecutor(trash Trasher) *Executor {
	return &Executor{trash: trash}
}

// Execute applies a to every path in order and stops at the first failure.
// It returns how many files were handled before returning.
func (e *Executor) Execute(ctx context.Context, a Action, paths []string) (int, error) {
	ctx = ctxlog.With(ctx, "action", a.Kind.String())
	logger := ctxlog.FromContext(ctx)

	var dir string
	if a.Kind == Move {
		var err error
		dir, err = prepareDir(a.Dir)
		if err != nil {
			return 0, err
		}
		logger.Debug("Move target ready.", "dir", dir)
	}

	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		var err error
		switch a.Kind {
		case Delete:
			err = remove(p)
		case Move:
			err = moveInto(p, dir)
		case Recycle:
			err = e.recycle(p)
		default:
			err = fmt.Errorf("unknown action %s", a.Kind)
		}
		if err != nil {
			return i, err
		}
		logger.Debug("Image handled.", "path", p)
	}
	return len(paths), nil
}

func remove(p string) error {
	if err := os.Remove(p); err != nil {
		return &FileError{Op: "delete file", Path: p, Err: unwrapPathError(err)}
	}
	return nil
}

func (e *Executor) recycle(p string) error {
	if e.trash == nil {
		return &FileError{Op: "move to recycle bin", Path: p, Err: ErrTrashUnavailable}
	}
	if err := e.trash.Trash(p); err != nil {
		return &FileError{Op: "move to recycle bin", Path: p, Err: err}
	}
	return nil
}

func prepareDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("move requires a target directory")
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", dir, err)
	}
	if !fsutil.Exists(expanded) {
		if err := os.MkdirAll(expanded, 0755); err != nil {
			return "", &FileError{Op: "create directory", Path: expanded, Err: unwrapPathError(err)}
		}
	}
	return expanded, nil
}

func moveInto(p, dir string) error {
	target := filepath.Join(dir, filepath.Base(p))
	if fsutil.Exists(target) {
		target = UniquePath(target)
	}
	if err := renameOrCopy(p, target); err != nil {
		return &FileError{Op: "move", Path: p, Target: target, Err: unwrapPathError(err)}
	}
	return nil
}

// UniquePath returns the first free path of the form stem_N.ext next to
// target, counting from 1. Names without an extension become stem_N.
func UniquePath(target string) string {
	dir := filepath.Dir(target)
	stem := fsutil.Stem(target)
	ext, hasExt := fsutil.Extension(target)

	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d", stem, n)
		if hasExt && ext != "" {
			name += "." + ext
		}
		candidate := filepath.Join(dir, name)
		if !fsutil.Exists(candidate) {
			return candidate
		}
	}
}

// unwrapPathError drops the *os.PathError or *os.LinkError layer, whose
// paths FileError already reports.
func unwrapPathError(err error) error {
	switch e := err.(type) {
	case *os.PathError:
		return e.Err
	case *os.LinkError:
		return e.Err
	}
	return err
}
