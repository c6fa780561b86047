package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/repository"
)

// Validation errors for student submissions. Nothing is written when one
// of these is returned.
var (
	ErrNoActiveClass  = errors.New("no active class available")
	ErrClassNotActive = errors.New("class is not an active class")
	ErrClassRequired  = errors.New("class name is required")
	ErrGroupRequired  = errors.New("group name is required")
	ErrFileRequired   = errors.New("at least one file is required")
	ErrFileTooLarge   = errors.New("file too large")
	ErrTooManyFiles   = errors.New("too many files")
)

const maxFilesPerRequest = 20

// Upload is one file taken from a submission form.
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// SubmissionService stores student submissions: content goes to the file
// store, metadata to the ledger, one row per file.
type SubmissionService struct {
	ledger   repository.SubmissionStore
	classes  *ClassService
	files    filestore.Store
	feed     Feed
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. classes may be nil,
// in which case any non-empty class name is accepted.
func NewSubmissionService(
	ledger repository.SubmissionStore,
	classes *ClassService,
	files filestore.Store,
	feed Feed,
	maxBytes int64,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		ledger:   ledger,
		classes:  classes,
		files:    files,
		feed:     feed,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log.With().Str("component", "submission_service").Logger(),
	}
}

// RegistryEnabled reports whether submissions are restricted to active classes.
func (s *SubmissionService) RegistryEnabled() bool {
	return s.classes != nil
}

// Submit validates the form and stores every upload. The file write and the
// ledger insert are separate steps; a failure in between leaves an orphan
// file and aborts the remaining uploads.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmitRequest, uploads []Upload) ([]model.Submission, error) {
	className := strings.TrimSpace(req.ClassName)
	groupName := strings.TrimSpace(req.GroupName)
	notes := strings.TrimSpace(req.Notes)

	if err := s.validate(ctx, className, groupName, uploads); err != nil {
		return nil, err
	}

	saved := make([]model.Submission, 0, len(uploads))
	for _, u := range uploads {
		stored, err := s.files.Save(ctx, u.Reader, u.Name, className, groupName)
		if err != nil {
			s.log.Error().Err(err).Str("file_name", u.Name).Msg("failed to store upload")
			return saved, fmt.Errorf("store %s: %w", u.Name, err)
		}

		sub := model.Submission{
			Timestamp: model.FormatTimestamp(s.now()),
			ClassName: className,
			GroupName: groupName,
			Notes:     notes,
			FilePath:  stored.Path,
			FileName:  stored.OriginalName,
			FileSize:  stored.Size,
		}
		if err := s.ledger.Insert(ctx, &sub); err != nil {
			s.log.Error().Err(err).Str("file_path", stored.Path).Msg("failed to record submission")
			return saved, fmt.Errorf("record %s: %w", u.Name, err)
		}
		saved = append(saved, sub)

		if s.feed != nil {
			if err := s.feed.Publish(ctx, sub); err != nil {
				s.log.Warn().Err(err).Int64("submission_id", sub.ID).Msg("failed to publish submission")
			}
		}
	}

	s.log.Info().
		Str("class_name", className).
		Str("group_name", groupName).
		Int("files", len(saved)).
		Msg("submission stored")

	return saved, nil
}

func (s *SubmissionService) validate(ctx context.Context, className, groupName string, uploads []Upload) error {
	if s.classes != nil {
		active, err := s.classes.ListActiveNames(ctx)
		if err != nil {
			return fmt.Errorf("list active classes: %w", err)
		}
		if len(active) == 0 {
			return ErrNoActiveClass
		}
		if className != "" && !contains(active, className) {
			return ErrClassNotActive
		}
	}

	if className == "" {
		return ErrClassRequired
	}
	if groupName == "" {
		return ErrGroupRequired
	}
	if len(uploads) == 0 {
		return ErrFileRequired
	}
	if len(uploads) > maxFilesPerRequest {
		return fmt.Errorf("%w: %d (max: %d)", ErrTooManyFiles, len(uploads), maxFilesPerRequest)
	}
	for _, u := range uploads {
		if s.maxBytes > 0 && u.Size > s.maxBytes {
			return fmt.Errorf("%w: %s is %d bytes (max: %d)", ErrFileTooLarge, u.Name, u.Size, s.maxBytes)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
