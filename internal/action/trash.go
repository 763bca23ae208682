package action

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/vk/mdprune/internal/fsutil"
)

// ErrTrashUnavailable is returned when no recycle bin exists on this platform.
var ErrTrashUnavailable = errors.New("recycle bin is not available on this platform")

// DefaultTrash returns the recycle bin of the current user: the
// freedesktop.org trash on Linux and the BSDs, ~/.Trash on macOS.
func DefaultTrash() (Trasher, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return &DirTrash{Dir: filepath.Join(home, ".Trash")}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		return NewFreedesktopTrash(filepath.Join(dataHome, "Trash")), nil
	default:
		return nil, ErrTrashUnavailable
	}
}

// FreedesktopTrash implements the freedesktop.org trash layout. Files on the
// same device as Root go to the home trash; files on other mounts go to the
// trash of that mount ($topdir/.Trash/$uid or $topdir/.Trash-$uid), and are
// copied into the home trash when neither can be used.
type FreedesktopTrash struct {
	Root string

	now    func() time.Time
	topdir func(path string) (string, error)
}

// NewFreedesktopTrash returns a trash whose home trash is root.
func NewFreedesktopTrash(root string) *FreedesktopTrash {
	return &FreedesktopTrash{Root: root, now: time.Now, topdir: mountPoint}
}

// Trash moves path into the trash.
func (t *FreedesktopTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	home, err := sameDevice(abs, t.Root)
	if err != nil {
		return err
	}
	if home {
		return t.trashInto(t.Root, abs, abs, os.Rename)
	}

	if top, err := t.topdir(abs); err == nil {
		if root, err := topdirTrash(top); err == nil {
			rel, err := filepath.Rel(top, abs)
			if err == nil {
				return t.trashInto(root, abs, rel, os.Rename)
			}
		}
	}
	return t.trashInto(t.Root, abs, abs, moveAcrossDevices)
}

// trashInto files abs under root. recorded is the Path= value of the info
// file: absolute for the home trash, relative to the mount for topdir ones.
func (t *FreedesktopTrash) trashInto(root, abs, recorded string, move func(src, dst string) error) error {
	filesDir := filepath.Join(root, "files")
	infoDir := filepath.Join(root, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}

	name, info, err := reserve(filesDir, infoDir, filepath.Base(abs))
	if err != nil {
		return err
	}

	body := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		(&url.URL{Path: filepath.ToSlash(recorded)}).EscapedPath(),
		t.now().Format("2006-01-02T15:04:05"))
	if _, err := info.WriteString(body); err != nil {
		info.Close()
		os.Remove(info.Name())
		return err
	}
	if err := info.Close(); err != nil {
		os.Remove(info.Name())
		return err
	}

	if err := move(abs, filepath.Join(filesDir, name)); err != nil {
		os.Remove(info.Name())
		return err
	}
	return nil
}

// reserve claims a name that is free in both directories by exclusively
// creating its .trashinfo file. Clashes in either directory count towards
// the same suffix.
func reserve(filesDir, infoDir, base string) (string, *os.File, error) {
	stem := fsutil.Stem(base)
	ext, hasExt := fsutil.Extension(base)

	name := base
	for n := 1; ; n++ {
		if !fsutil.Exists(filepath.Join(filesDir, name)) {
			f, err := os.OpenFile(filepath.Join(infoDir, name+".trashinfo"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
			if err == nil {
				return name, f, nil
			}
			if !errors.Is(err, os.ErrExist) {
				return "", nil, err
			}
		}
		name = fmt.Sprintf("%s_%d", stem, n)
		if hasExt && ext != "" {
			name += "." + ext
		}
	}
}

// topdirTrash returns the trash directory for the mount rooted at top,
// creating the per-user directory when needed. A shared $topdir/.Trash is
// only used when it is a real sticky directory.
func topdirTrash(top string) (string, error) {
	uid := strconv.Itoa(os.Getuid())

	shared := filepath.Join(top, ".Trash")
	if fi, err := os.Lstat(shared); err == nil && fi.IsDir() && fi.Mode()&os.ModeSticky != 0 {
		root := filepath.Join(shared, uid)
		if err := os.MkdirAll(root, 0700); err == nil {
			return root, nil
		}
	}

	root := filepath.Join(top, ".Trash-"+uid)
	if err := os.Mkdir(root, 0700); err != nil && !errors.Is(err, os.ErrExist) {
		return "", err
	}
	fi, err := os.Lstat(root)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return root, nil
}

// mountPoint returns the topmost directory above path that is still on the
// same device.
func mountPoint(path string) (string, error) {
	dev, err := deviceID(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir, nil
		}
		pdev, err := deviceID(parent)
		if err != nil {
			return "", err
		}
		if pdev != dev {
			return dir, nil
		}
		dir = parent
	}
}

// sameDevice reports whether path lives on the device of target, or of its
// nearest existing ancestor when target does not exist yet.
func sameDevice(path, target string) (bool, error) {
	dev, err := deviceID(path)
	if err != nil {
		return false, err
	}
	for {
		tdev, err := deviceID(target)
		if err == nil {
			return dev == tdev, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
		parent := filepath.Dir(target)
		if parent == target {
			return false, err
		}
		target = parent
	}
}

// DirTrash is a recycle bin that is a plain directory, such as ~/.Trash on
// macOS. Name clashes get a numeric suffix.
type DirTrash struct {
	Dir string
}

// Trash moves path into the directory.
func (t *DirTrash) Trash(path string) error {
	if err := os.MkdirAll(t.Dir, 0700); err != nil {
		return err
	}
	target := filepath.Join(t.Dir, filepath.Base(path))
	if fsutil.Exists(target) {
		target = UniquePath(target)
	}
	return renameOrCopy(path, target)
}
