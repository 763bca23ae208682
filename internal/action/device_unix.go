//go:build unix

package action

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// deviceID returns the device number of the file system holding path,
// without following a final symlink.
func deviceID(path string) (uint64, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("no device information for %s", path)
	}
	return uint64(st.Dev), nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
