package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/stemsi/kumpul-tugas/internal/database"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"go.etcd.io/bbolt"
)

// BoltClassRepository keeps the class registry in bbolt. A second bucket
// maps class names to ids and enforces name uniqueness.
type BoltClassRepository struct {
	db *bbolt.DB
}

// NewBoltClassRepository creates a new BoltClassRepository.
func NewBoltClassRepository(db *bbolt.DB) *BoltClassRepository {
	return &BoltClassRepository{db: db}
}

// InsertIfAbsent registers name as active unless it already exists.
func (r *BoltClassRepository) InsertIfAbsent(_ context.Context, name string) (bool, error) {
	inserted := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		classes, names, err := classBuckets(tx)
		if err != nil {
			return err
		}
		if names.Get([]byte(name)) != nil {
			return nil
		}

		seq, err := classes.NextSequence()
		if err != nil {
			return err
		}
		entry := model.ClassEntry{ID: int64(seq), ClassName: name, IsActive: true}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := classes.Put(idKey(entry.ID), data); err != nil {
			return err
		}
		if err := names.Put([]byte(name), idKey(entry.ID)); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

// ListAll retrieves all classes ordered by name.
func (r *BoltClassRepository) ListAll(_ context.Context) ([]model.ClassEntry, error) {
	classes := []model.ClassEntry{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, _, err := classBuckets(tx)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var c model.ClassEntry
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			classes = append(classes, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].ClassName < classes[j].ClassName
	})
	return classes, nil
}

// SetActive flips the is_active flag of a class.
func (r *BoltClassRepository) SetActive(_ context.Context, id int64, active bool) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, _, err := classBuckets(tx)
		if err != nil {
			return err
		}
		v := b.Get(idKey(id))
		if v == nil {
			return nil
		}

		var c model.ClassEntry
		if err := json.Unmarshal(v, &c); err != nil {
			return err
		}
		c.IsActive = active
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return b.Put(idKey(id), data)
	})
}

// ListActiveNames retrieves the names of active classes.
func (r *BoltClassRepository) ListActiveNames(ctx context.Context) ([]string, error) {
	classes, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, c := range classes {
		if c.IsActive {
			names = append(names, c.ClassName)
		}
	}
	return names, nil
}

func classBuckets(tx *bbolt.Tx) (classes, names *bbolt.Bucket, err error) {
	classes = tx.Bucket(database.BucketClasses)
	names = tx.Bucket(database.BucketClassNames)
	if classes == nil || names == nil {
		return nil, nil, fmt.Errorf("class buckets not found")
	}
	return classes, names, nil
}
