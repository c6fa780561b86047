package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

// Bucket names used by the embedded store.
var (
	BucketSubmissions = []byte("submissions")
	BucketClasses     = []byte("classes")
	BucketClassNames  = []byte("class_names")
)

// NewBoltDB opens (or creates) the embedded database at path and makes sure
// every bucket exists.
func NewBoltDB(path string, log zerolog.Logger) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{BucketSubmissions, BucketClasses, BucketClassNames} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	log.Info().Str("path", path).Msg("Bolt store opened")

	return db, nil
}
