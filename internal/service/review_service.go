package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Filter sentinels meaning "no filter" for one dimension.
const (
	AllClasses = "(Semua Kelas)"
	AllGroups  = "(Semua Kelompok)"
)

// Per-row message shown when a ledger row has lost its file.
const FileMissingMessage = "File tidak ditemukan di server."

// Review errors.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNoSubmissions      = errors.New("no submissions match the filter")
	ErrArchiveDisabled    = errors.New("bulk archive is disabled")
)

// ReviewService is the admin review surface: filtering, summaries and
// downloads over the ledger. Every method needs the caller's live admin
// session.
type ReviewService struct {
	ledger  repository.SubmissionStore
	files   filestore.Store
	archive *ArchiveService
	now     func() time.Time
	log     zerolog.Logger
}

// NewReviewService creates a new ReviewService. archive may be nil when
// bulk download is disabled.
func NewReviewService(ledger repository.SubmissionStore, files filestore.Store, archive *ArchiveService, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		ledger:  ledger,
		files:   files,
		archive: archive,
		now:     time.Now,
		log:     log.With().Str("component", "review_service").Logger(),
	}
}

// ArchiveEnabled reports whether bulk download is available.
func (s *ReviewService) ArchiveEnabled() bool {
	return s.archive != nil
}

// List returns the filtered rows, each annotated with whether its file can
// still be downloaded, plus the filter choices for the current selection.
func (s *ReviewService) List(ctx context.Context, sess *model.AdminSession, filter model.SubmissionFilter) ([]model.SubmissionRow, model.FilterOptions, error) {
	if err := s.requireSession(sess); err != nil {
		return nil, model.FilterOptions{}, err
	}

	records, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, model.FilterOptions{}, fmt.Errorf("list submissions: %w", err)
	}

	opts := BuildFilterOptions(records, filter.ClassName)
	filtered := FilterSubmissions(records, filter)

	rows := make([]model.SubmissionRow, 0, len(filtered))
	for _, sub := range filtered {
		row := model.SubmissionRow{Submission: sub}
		ok, err := s.files.Exists(ctx, sub.FilePath)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int64("submission_id", sub.ID).Msg("failed to check stored file")
			row.FileError = err.Error()
		case !ok:
			row.FileError = FileMissingMessage
		default:
			row.FileAvailable = true
		}
		rows = append(rows, row)
	}
	return rows, opts, nil
}

// Summary counts submissions per (class, group) over the whole ledger,
// ignoring any listing filter.
func (s *ReviewService) Summary(ctx context.Context, sess *model.AdminSession) ([]model.GroupSummary, error) {
	if err := s.requireSession(sess); err != nil {
		return nil, err
	}

	records, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return Summarize(records), nil
}

// Download reads one stored file fully into memory. The suggested file
// name is the uploader's original name.
func (s *ReviewService) Download(ctx context.Context, sess *model.AdminSession, id int64) (string, []byte, error) {
	if err := s.requireSession(sess); err != nil {
		return "", nil, err
	}

	sub, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrSubmissionNotFound
		}
		return "", nil, fmt.Errorf("get submission: %w", err)
	}

	data, err := filestore.ReadAll(ctx, s.files, sub.FilePath)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			s.log.Warn().Int64("submission_id", id).Str("file_path", sub.FilePath).Msg("download of missing file")
		}
		return "", nil, err
	}
	return sub.FileName, data, nil
}

// Archive bundles the filtered submissions into a ZIP named after the filter.
func (s *ReviewService) Archive(ctx context.Context, sess *model.AdminSession, filter model.SubmissionFilter) (string, *bytes.Buffer, ArchiveReport, error) {
	if err := s.requireSession(sess); err != nil {
		return "", nil, ArchiveReport{}, err
	}
	if s.archive == nil {
		return "", nil, ArchiveReport{}, ErrArchiveDisabled
	}

	records, err := s.ledger.ListAll(ctx)
	if err != nil {
		return "", nil, ArchiveReport{}, fmt.Errorf("list submissions: %w", err)
	}
	filtered := FilterSubmissions(records, filter)
	if len(filtered) == 0 {
		return "", nil, ArchiveReport{}, ErrNoSubmissions
	}

	buf, report, err := s.archive.Build(ctx, filtered)
	if err != nil {
		return "", nil, report, fmt.Errorf("build archive: %w", err)
	}

	s.log.Info().
		Int("added", report.Added).
		Int("skipped", len(report.Skipped)).
		Msg("archive built")

	return ArchiveName(filter, s.now()), buf, report, nil
}

// ExportSummary renders the summary table as an XLSX workbook.
func (s *ReviewService) ExportSummary(ctx context.Context, sess *model.AdminSession) (string, *bytes.Buffer, error) {
	summary, err := s.Summary(ctx, sess)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ringkasan"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeSummarySheet(f, sheet, summary); err != nil {
		return "", nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("write workbook: %w", err)
	}
	return fmt.Sprintf("ringkasan_tugas_%s.xlsx", s.now().Format("20060102_150405")), buf, nil
}

// writeSummarySheet fills sheet with a header row followed by one row per
// group. It stops at the first cell that cannot be written.
func writeSummarySheet(f *excelize.File, sheet string, summary []model.GroupSummary) error {
	rows := [][]interface{}{{"Kelas", "Kelompok", "Jumlah Tugas"}}
	for _, g := range summary {
		rows = append(rows, []interface{}{g.ClassName, g.GroupName, g.Count})
	}

	for r, values := range rows {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func (s *ReviewService) requireSession(sess *model.AdminSession) error {
	if !sess.Active(s.now()) {
		return ErrNotAuthenticated
	}
	return nil
}

// ─── Pure helpers ──────────────────────────────────────────────────────

func classFilterActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != AllClasses
}

func groupFilterActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != AllGroups
}

// FilterSubmissions keeps records whose class, then group, match exactly.
// An empty value or the matching sentinel leaves that dimension unfiltered.
func FilterSubmissions(records []model.Submission, filter model.SubmissionFilter) []model.Submission {
	out := make([]model.Submission, 0, len(records))
	for _, r := range records {
		if classFilterActive(filter.ClassName) && r.ClassName != filter.ClassName {
			continue
		}
		if groupFilterActive(filter.GroupName) && r.GroupName != filter.GroupName {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildFilterOptions lists the distinct classes in the ledger and the
// distinct groups inside the selected class, each sorted and led by its
// "all" sentinel.
func BuildFilterOptions(records []model.Submission, className string) model.FilterOptions {
	classes := map[string]struct{}{}
	groups := map[string]struct{}{}
	for _, r := range records {
		classes[r.ClassName] = struct{}{}
		if !classFilterActive(className) || r.ClassName == className {
			groups[r.GroupName] = struct{}{}
		}
	}
	return model.FilterOptions{
		Classes: append([]string{AllClasses}, sortedKeys(classes)...),
		Groups:  append([]string{AllGroups}, sortedKeys(groups)...),
	}
}

// Summarize counts records per (class, group), ordered by class then group.
func Summarize(records []model.Submission) []model.GroupSummary {
	type key struct{ class, group string }
	counts := map[key]int{}
	for _, r := range records {
		counts[key{r.ClassName, r.GroupName}]++
	}

	summary := make([]model.GroupSummary, 0, len(counts))
	for k, n := range counts {
		summary = append(summary, model.GroupSummary{ClassName: k.class, GroupName: k.group, Count: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].ClassName != summary[j].ClassName {
			return summary[i].ClassName < summary[j].ClassName
		}
		return summary[i].GroupName < summary[j].GroupName
	})
	return summary
}

// ArchiveName is the suggested download name for a bulk archive. The group
// only appears when a class is selected too.
func ArchiveName(filter model.SubmissionFilter, now time.Time) string {
	base := "tugas_semua_kelas"
	if classFilterActive(filter.ClassName) {
		base = "tugas_" + filestore.SanitizeName(filter.ClassName)
		if groupFilterActive(filter.GroupName) {
			base += "_" + filestore.SanitizeName(filter.GroupName)
		}
	}
	return fmt.Sprintf("%s_%s.zip", base, now.Format("20060102_150405"))
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
