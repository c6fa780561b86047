package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrFileNotFound is returned when a stored path has no content behind it,
// typically because the file was removed outside the application.
var ErrFileNotFound = errors.New("stored file not found")

// StoredFile describes content written by Save.
type StoredFile struct {
	Path         string
	OriginalName string
	Size         int64
}

// Store persists uploaded submission content under
// <root>/<class>/<group>/<unix seconds>_<name>, all components sanitized
// (the file name keeps its extension dot).
// Two saves in the same second with the same sanitized names overwrite
// each other; the later write wins.
type Store interface {
	Save(ctx context.Context, r io.Reader, originalName, className, groupName string) (StoredFile, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadAll loads the whole stored file into memory.
func ReadAll(ctx context.Context, s Store, path string) ([]byte, error) {
	rc, err := s.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func storedName(now time.Time, originalName string) string {
	return fmt.Sprintf("%d_%s", now.Unix(), SanitizeFileName(originalName))
}
