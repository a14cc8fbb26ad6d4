// Package srcfs is the filesystem seen by the assembler when it follows
// include directives.
package srcfs

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrFileNotFound = errors.New("file not found")

// FS is the set of file operations the assembler needs.
type FS interface {
	// ReadFile returns the whole contents of path.
	ReadFile(path string) ([]byte, error)
	// IsRegularFile reports whether path names an existing regular file.
	IsRegularFile(path string) bool
	// Abs returns an absolute, cleaned form of path.
	Abs(path string) (string, error)
}

// Resolve returns the absolute path of target. Relative targets are taken
// relative to the directory containing base.
func Resolve(fsys FS, base, target string) (string, error) {
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	_, parentDir, err := PathInfo(fsys, base)
	if err != nil {
		return "", err
	}
	return filepath.Join(parentDir, target), nil
}

// PathInfo returns the absolute path of relPath and the directory holding it.
func PathInfo(fsys FS, relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = fsys.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// OS is the host filesystem.
type OS struct{}

func (OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Join(ErrFileNotFound, err)
	}
	return data, err
}

func (OS) IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (OS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}
