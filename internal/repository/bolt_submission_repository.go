package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/stemsi/kumpul-tugas/internal/database"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"go.etcd.io/bbolt"
)

// BoltSubmissionRepository keeps the ledger in an embedded bbolt file.
// Rows are JSON values keyed by their big-endian sequence id, so a cursor
// walks them in insertion order.
type BoltSubmissionRepository struct {
	db *bbolt.DB
}

// NewBoltSubmissionRepository creates a new BoltSubmissionRepository.
func NewBoltSubmissionRepository(db *bbolt.DB) *BoltSubmissionRepository {
	return &BoltSubmissionRepository{db: db}
}

// Insert appends a submission row.
func (r *BoltSubmissionRepository) Insert(_ context.Context, s *model.Submission) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(database.BucketSubmissions)
		if b == nil {
			return fmt.Errorf("bucket %s not found", database.BucketSubmissions)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		row := *s
		row.ID = int64(seq)
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := b.Put(idKey(row.ID), data); err != nil {
			return err
		}
		s.ID = row.ID
		return nil
	})
}

// ListAll retrieves every submission, most recent first.
func (r *BoltSubmissionRepository) ListAll(_ context.Context) ([]model.Submission, error) {
	submissions := []model.Submission{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(database.BucketSubmissions)
		if b == nil {
			return fmt.Errorf("bucket %s not found", database.BucketSubmissions)
		}
		return b.ForEach(func(_, v []byte) error {
			var s model.Submission
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			submissions = append(submissions, s)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Stable sort keeps cursor (insertion) order within one timestamp.
	sort.SliceStable(submissions, func(i, j int) bool {
		return submissions[i].Timestamp > submissions[j].Timestamp
	})
	return submissions, nil
}

// GetByID retrieves a submission by its ID.
func (r *BoltSubmissionRepository) GetByID(_ context.Context, id int64) (*model.Submission, error) {
	var s *model.Submission
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(database.BucketSubmissions)
		if b == nil {
			return fmt.Errorf("bucket %s not found", database.BucketSubmissions)
		}
		v := b.Get(idKey(id))
		if v == nil {
			return ErrNotFound
		}
		s = &model.Submission{}
		return json.Unmarshal(v, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
