package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/kurin/blazer/b2"
)

// B2 stores files as objects in a Backblaze B2 bucket. Stored paths are
// object keys laid out like the local tree, prefixed with the upload root.
type B2 struct {
	bucket *b2.Bucket
	prefix string
	now    func() time.Time
}

// NewB2 connects to the bucket. prefix is usually the configured upload dir.
func NewB2(ctx context.Context, accountID, appKey, bucketName, prefix string) (*B2, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("get bucket: %w", err)
	}

	return &B2{
		bucket: bucket,
		prefix: strings.Trim(path.Clean("/"+strings.ReplaceAll(prefix, "\\", "/")), "/"),
		now:    time.Now,
	}, nil
}

// Save uploads r. B2 only makes an object visible once the writer closes.
func (s *B2) Save(ctx context.Context, r io.Reader, originalName, className, groupName string) (StoredFile, error) {
	key := path.Join(s.prefix, SanitizeName(className), SanitizeName(groupName), storedName(s.now(), originalName))

	w := s.bucket.Object(key).NewWriter(ctx)
	size, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return StoredFile{}, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return StoredFile{}, fmt.Errorf("close object writer: %w", err)
	}

	return StoredFile{Path: key, OriginalName: originalName, Size: size}, nil
}

// Open returns a reader over the object at key.
func (s *B2) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	return obj.NewReader(ctx), nil
}

// Exists reports whether an object is stored under key.
func (s *B2) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	if _, err := s.bucket.Object(key).Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", key, err)
	}
	return true, nil
}
