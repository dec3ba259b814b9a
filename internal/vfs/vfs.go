// Package vfs confines all document access to a single root directory.
//
// Every configuration document lives under one root. Building the root as a
// chrooted billy filesystem means import references that climb out of the
// tree ("../../etc/passwd") fail at the filesystem layer instead of needing
// path inspection at every call site.
package vfs

import (
	"errors"
	"os"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS is the filesystem handle passed around the document layer.
type FS = billy.Filesystem

// NewRoot returns a filesystem confined to dir on the host disk.
func NewRoot(dir string) FS {
	return osfs.New(dir)
}

// NewMemory returns an empty in-memory filesystem. Used in tests.
func NewMemory() FS {
	return memfs.New()
}

// Scope confines an existing filesystem to a subdirectory.
func Scope(fs FS, dir string) FS {
	return chroot.New(fs, dir)
}

// ReadFile reads the whole file at path.
func ReadFile(fs FS, path string) ([]byte, error) {
	return util.ReadFile(fs, path)
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(fs FS, path string, data []byte) error {
	if dir := dirOf(fs, path); dir != "" && dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return util.WriteFile(fs, path, data, 0o644)
}

// Exists reports whether path names an existing file.
func Exists(fs FS, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ModTime returns the modification time of path.
func ModTime(fs FS, path string) (time.Time, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// IsEscape reports whether err was caused by a path crossing the root
// boundary.
func IsEscape(err error) bool {
	return errors.Is(err, billy.ErrCrossedBoundary)
}

func dirOf(fs FS, path string) string {
	joined := fs.Join(path, "..")
	return joined
}
