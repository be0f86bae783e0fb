// Package persist writes files so that readers only ever see the old or the
// new contents. Data goes to a temporary file in the target directory, is
// fsynced, and is renamed over the target; a failure at any step leaves the
// target untouched.
package persist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// File and directory modes. Database files hold ciphertext but are still
// private to the owner.
const (
	FileMode = 0o600
	DirMode  = 0o700
)

// ErrNotExist is returned by Read when the file is missing.
var ErrNotExist = fs.ErrNotExist

// Write atomically replaces path with data.
func Write(path string, data []byte) error {
	return WriteFrom(path, bytes.NewReader(data))
}

// WriteFrom atomically replaces path with everything read from r. If r fails
// part way, the temporary file is removed and path keeps its prior contents.
func WriteFrom(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err := os.Chmod(path, FileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// Replace fsyncs src, a finished file in the target directory, and renames
// it over dst. The caller creates src; on error src is left for the caller
// to remove.
func Replace(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	err = f.Sync()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("sync %s: %w", src, err)
	}
	if err := os.Chmod(src, FileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", src, err)
	}
	if err := atomic.ReplaceFile(src, dst); err != nil {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	return nil
}

// Read returns the file contents. A missing file is an error wrapping
// ErrNotExist.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// EnsureDirectory creates dir and its parents if needed. Idempotent.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// Delete removes path. A missing file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// List returns the regular files in dir whose names end in ext, sorted by
// name. A missing directory yields an empty list.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ext {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
