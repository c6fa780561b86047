package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/model"
)

// ArchiveReport tells which records made it into an archive.
type ArchiveReport struct {
	Added   int     `json:"added"`
	Skipped []int64 `json:"skipped"`
}

// ArchiveService bundles stored submissions into one ZIP file.
type ArchiveService struct {
	files filestore.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewArchiveService creates a new ArchiveService.
func NewArchiveService(files filestore.Store, log zerolog.Logger) *ArchiveService {
	return &ArchiveService{
		files: files,
		now:   time.Now,
		log:   log.With().Str("component", "archive_service").Logger(),
	}
}

// ArchiveEntryName is the path of a submission inside an archive:
// <sanitized class>/<sanitized group>/<original file name>.
func ArchiveEntryName(sub model.Submission) string {
	name := sub.FileName
	if name == "" {
		name = path.Base(filepath.ToSlash(sub.FilePath))
	}
	return filestore.SanitizeName(sub.ClassName) + "/" + filestore.SanitizeName(sub.GroupName) + "/" + name
}

// Build writes one deflated entry per record, in record order. Records
// whose file is gone are skipped. Duplicate entry names are all written.
func (s *ArchiveService) Build(ctx context.Context, records []model.Submission) (*bytes.Buffer, ArchiveReport, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	report := ArchiveReport{Skipped: []int64{}}
	modified := s.now()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		ok, err := s.files.Exists(ctx, rec.FilePath)
		if err != nil {
			return nil, report, err
		}
		if !ok {
			s.log.Warn().Int64("submission_id", rec.ID).Str("file_path", rec.FilePath).Msg("skipping missing file")
			report.Skipped = append(report.Skipped, rec.ID)
			continue
		}

		added, err := s.addEntry(ctx, zw, rec, modified)
		if err != nil {
			return nil, report, err
		}
		if !added {
			report.Skipped = append(report.Skipped, rec.ID)
			continue
		}
		report.Added++
	}

	if err := zw.Close(); err != nil {
		return nil, report, fmt.Errorf("close archive: %w", err)
	}
	return buf, report, nil
}

func (s *ArchiveService) addEntry(ctx context.Context, zw *zip.Writer, rec model.Submission, modified time.Time) (bool, error) {
	rc, err := s.files.Open(ctx, rec.FilePath)
	if err != nil {
		// Removed between the existence check and the open.
		if errors.Is(err, filestore.ErrFileNotFound) {
			s.log.Warn().Int64("submission_id", rec.ID).Str("file_path", rec.FilePath).Msg("skipping missing file")
			return false, nil
		}
		return false, err
	}
	defer rc.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     ArchiveEntryName(rec),
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return false, fmt.Errorf("create entry: %w", err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return false, fmt.Errorf("write entry %s: %w", rec.FilePath, err)
	}
	return true, nil
}
