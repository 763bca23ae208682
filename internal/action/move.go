package action

import (
	"io"
	"os"
)

// renameOrCopy renames src to dst, copying and removing src when the two
// are on different devices.
func renameOrCopy(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	return moveAcrossDevices(src, dst)
}

// moveAcrossDevices copies the regular file src to dst, which must not
// exist, and removes src once the copy is on disk.
func moveAcrossDevices(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
