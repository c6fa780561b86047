package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local stores files on the local filesystem below a root directory.
type Local struct {
	root string
	now  func() time.Time
}

// NewLocal creates a Local store rooted at root. The root is created lazily.
func NewLocal(root string) *Local {
	return &Local{root: root, now: time.Now}
}

// Root returns the upload root directory.
func (s *Local) Root() string {
	return s.root
}

// Save writes r to a temporary file next to its destination and renames it
// into place, so callers never observe a partial file.
func (s *Local) Save(_ context.Context, r io.Reader, originalName, className, groupName string) (StoredFile, error) {
	dir := filepath.Join(s.root, SanitizeName(className), SanitizeName(groupName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	destPath := filepath.Join(dir, storedName(s.now(), originalName))

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	size, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return StoredFile{}, fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return StoredFile{}, fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return StoredFile{}, fmt.Errorf("rename file: %w", err)
	}

	return StoredFile{Path: destPath, OriginalName: originalName, Size: size}, nil
}

// Open opens a stored file for reading.
func (s *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Exists reports whether a regular file is present at path.
func (s *Local) Exists(_ context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
