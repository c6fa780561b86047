package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kumpul-tugas/internal/model"
)

// ClassRepository is the PostgreSQL class registry.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// InsertIfAbsent registers name as active unless it already exists.
func (r *ClassRepository) InsertIfAbsent(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO classes (class_name, is_active) VALUES ($1, 1)
		 ON CONFLICT (class_name) DO NOTHING`, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListAll retrieves all classes.
func (r *ClassRepository) ListAll(ctx context.Context) ([]model.ClassEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_name, is_active FROM classes ORDER BY class_name COLLATE "C" ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassEntry{}
	for rows.Next() {
		var (
			c      model.ClassEntry
			active int32
		)
		if err := rows.Scan(&c.ID, &c.ClassName, &active); err != nil {
			return nil, err
		}
		c.IsActive = active == 1
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// SetActive flips the is_active flag of a class.
func (r *ClassRepository) SetActive(ctx context.Context, id int64, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	_, err := r.pool.Exec(ctx, `UPDATE classes SET is_active = $1 WHERE id = $2`, flag, id)
	return err
}

// ListActiveNames retrieves the names of active classes.
func (r *ClassRepository) ListActiveNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT class_name FROM classes WHERE is_active = 1 ORDER BY class_name COLLATE "C" ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
