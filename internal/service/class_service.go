package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/repository"
)

// ErrEmptyClassName is returned when a class name is blank after trimming.
var ErrEmptyClassName = errors.New("class name is empty")

// NoActiveClassMessage explains why the submission form is closed.
const NoActiveClassMessage = "Belum ada master kelas yang aktif. Silakan hubungi dosen/admin untuk menambahkan kelas terlebih dahulu."

// ClassService handles the class registry.
type ClassService struct {
	classes repository.ClassStore
	log     zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classes repository.ClassStore, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes: classes,
		log:     log.With().Str("component", "class_service").Logger(),
	}
}

// AddOrActivate registers a class. Re-adding an existing name succeeds
// without changing it, so an inactive class stays inactive.
// Returns false with ErrEmptyClassName when name is blank.
func (s *ClassService) AddOrActivate(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyClassName
	}

	inserted, err := s.classes.InsertIfAbsent(ctx, name)
	if err != nil {
		s.log.Error().Err(err).Str("class_name", name).Msg("failed to add class")
		return false, err
	}
	s.log.Info().Str("class_name", name).Bool("inserted", inserted).Msg("class registered")
	return true, nil
}

// ListAll returns every registered class ordered by name.
func (s *ClassService) ListAll(ctx context.Context) ([]model.ClassEntry, error) {
	return s.classes.ListAll(ctx)
}

// SetActive activates or deactivates a class. Unknown ids are ignored.
func (s *ClassService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.classes.SetActive(ctx, id, active); err != nil {
		s.log.Error().Err(err).Int64("class_id", id).Msg("failed to toggle class")
		return err
	}
	return nil
}

// ListActiveNames returns the class choices offered to students.
func (s *ClassService) ListActiveNames(ctx context.Context) ([]string, error) {
	return s.classes.ListActiveNames(ctx)
}
