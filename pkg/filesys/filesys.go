// Package filesys provides a small collection of utility functions for the
// file system operations fxkv performs: preparing the working directory,
// opening the shared tree and transaction-log files, and checking existence.
package filesys

import (
	"errors"
	"os"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	// If 'force' is false and the path exists
	// return the error (indicating the directory already exists).
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return os.ErrExist
		}
		return err
	}

	// If the path exists and it's not a directory, return an error.
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	// Create all necessary parent directories if they don't exist, with the specified permissions.
	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// DeleteDir destroys a store's working directory: the tree payload files,
// the transaction log and the directory itself are removed recursively. A
// database opened at the path afterwards starts empty.
func DeleteDir(path string) error {
	return os.RemoveAll(path)
}

// OpenShared opens the file at `filePath` for both reading and writing,
// creating it when absent. Tree payload files and the transaction log are
// opened this way: writers append by seeking to the end themselves, and
// recovery seeks backwards through the same handle, so O_APPEND is
// deliberately not used.
func OpenShared(filePath string) (*os.File, error) {
	return os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0644)
}

// Exists reports whether something lives at the given path. Absence is a
// normal answer, not an error; only a stat failure other than not-exist is
// returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
