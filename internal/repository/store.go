package repository

import (
	"context"
	"errors"

	"github.com/stemsi/kumpul-tugas/internal/model"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// SubmissionStore is the append-only submission ledger.
type SubmissionStore interface {
	// Insert appends s, filling in its ID. Timestamp must already be set.
	Insert(ctx context.Context, s *model.Submission) error
	// ListAll returns every row, timestamp descending, ties by insertion order.
	ListAll(ctx context.Context) ([]model.Submission, error)
	GetByID(ctx context.Context, id int64) (*model.Submission, error)
}

// ClassStore is the class registry.
type ClassStore interface {
	// InsertIfAbsent adds an active entry unless the exact name exists.
	// Existing entries are left untouched. Reports whether a row was added.
	InsertIfAbsent(ctx context.Context, name string) (bool, error)
	// ListAll returns every entry ordered by class name.
	ListAll(ctx context.Context) ([]model.ClassEntry, error)
	// SetActive updates the flag. Unknown ids are silently ignored.
	SetActive(ctx context.Context, id int64, active bool) error
	// ListActiveNames returns active class names in ascending order.
	ListActiveNames(ctx context.Context) ([]string, error)
}
