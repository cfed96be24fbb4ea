package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches persist through the active backend, so tests never touch the disk.
type GacheFs struct{}

// OpenFile opens a file on the active backend.
func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

// MkdirAll creates a directory tree on the active backend.
func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
