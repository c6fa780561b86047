package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kumpul-tugas/internal/model"
)

// SubmissionRepository is the PostgreSQL submission ledger.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Insert appends a submission row.
func (r *SubmissionRepository) Insert(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (timestamp, class_name, group_name, notes, file_path, file_name, file_size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		s.Timestamp, s.ClassName, s.GroupName, s.Notes, s.FilePath, s.FileName, s.FileSize,
	).Scan(&s.ID)
}

// ListAll retrieves every submission, most recent first.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, timestamp, class_name, group_name, notes, file_path, file_name, file_size
		 FROM submissions ORDER BY timestamp DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.ClassName, &s.GroupName, &s.Notes, &s.FilePath, &s.FileName, &s.FileSize); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, timestamp, class_name, group_name, notes, file_path, file_name, file_size
		 FROM submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.Timestamp, &s.ClassName, &s.GroupName, &s.Notes, &s.FilePath, &s.FileName, &s.FileSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
