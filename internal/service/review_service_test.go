package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/xuri/excelize/v2"
)

func seedLedger(t *testing.T, env *testEnv) []model.Submission {
	t.Helper()
	ctx := context.Background()

	var all []model.Submission
	for i, in := range []struct{ class, group, file string }{
		{"Math101", "TeamA", "a1.pdf"},
		{"Math101", "TeamB", "b1.pdf"},
		{"Math101", "TeamA", "a2.pdf"},
		{"CS-101", "TeamA", "c1.pdf"},
	} {
		env.setNow(time.Date(2025, 1, 1, 10, 0, i, 0, time.Local))
		saved, err := env.submit.Submit(ctx, model.SubmitRequest{ClassName: in.class, GroupName: in.group},
			[]Upload{upload(in.file, "content of "+in.file)})
		if err != nil {
			t.Fatalf("seed %s: %v", in.file, err)
		}
		all = append(all, saved...)
	}
	return all
}

func TestFilterSubmissions(t *testing.T) {
	records := []model.Submission{
		{ID: 1, ClassName: "Math101", GroupName: "TeamA"},
		{ID: 2, ClassName: "Math101", GroupName: "TeamB"},
		{ID: 3, ClassName: "CS-101", GroupName: "TeamA"},
		{ID: 4, ClassName: "math101", GroupName: "TeamA"},
	}

	ids := func(subs []model.Submission) []int64 {
		out := []int64{}
		for _, s := range subs {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter model.SubmissionFilter
		want   []int64
	}{
		{"class and group", model.SubmissionFilter{ClassName: "Math101", GroupName: "TeamA"}, []int64{1}},
		{"class only", model.SubmissionFilter{ClassName: "Math101", GroupName: AllGroups}, []int64{1, 2}},
		{"group only", model.SubmissionFilter{ClassName: AllClasses, GroupName: "TeamA"}, []int64{1, 3, 4}},
		{"sentinels", model.SubmissionFilter{ClassName: AllClasses, GroupName: AllGroups}, []int64{1, 2, 3, 4}},
		{"empty", model.SubmissionFilter{}, []int64{1, 2, 3, 4}},
		{"no match", model.SubmissionFilter{ClassName: "Physics"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(FilterSubmissions(records, tt.filter)); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFilterOptions(t *testing.T) {
	records := []model.Submission{
		{ClassName: "Math101", GroupName: "TeamB"},
		{ClassName: "Math101", GroupName: "TeamA"},
		{ClassName: "CS-101", GroupName: "TeamZ"},
	}

	opts := BuildFilterOptions(records, "Math101")
	if !reflect.DeepEqual(opts.Classes, []string{AllClasses, "CS-101", "Math101"}) {
		t.Fatalf("classes = %v", opts.Classes)
	}
	if !reflect.DeepEqual(opts.Groups, []string{AllGroups, "TeamA", "TeamB"}) {
		t.Fatalf("groups = %v", opts.Groups)
	}

	opts = BuildFilterOptions(records, AllClasses)
	if len(opts.Groups) != 4 {
		t.Fatalf("unfiltered groups = %v", opts.Groups)
	}
}

func TestSummarizeOrder(t *testing.T) {
	records := []model.Submission{
		{ClassName: "Math101", GroupName: "TeamB"},
		{ClassName: "CS-101", GroupName: "TeamA"},
		{ClassName: "Math101", GroupName: "TeamA"},
		{ClassName: "Math101", GroupName: "TeamA"},
	}

	want := []model.GroupSummary{
		{ClassName: "CS-101", GroupName: "TeamA", Count: 1},
		{ClassName: "Math101", GroupName: "TeamA", Count: 2},
		{ClassName: "Math101", GroupName: "TeamB", Count: 1},
	}
	if got := Summarize(records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v", got)
	}
}

func TestArchiveName(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	tests := []struct {
		filter model.SubmissionFilter
		want   string
	}{
		{model.SubmissionFilter{}, "tugas_semua_kelas_20250203_040506.zip"},
		{model.SubmissionFilter{ClassName: AllClasses, GroupName: "Team A"}, "tugas_semua_kelas_20250203_040506.zip"},
		{model.SubmissionFilter{ClassName: "CS 101"}, "tugas_CS_101_20250203_040506.zip"},
		{model.SubmissionFilter{ClassName: "CS 101", GroupName: "Team A"}, "tugas_CS_101_Team_A_20250203_040506.zip"},
	}
	for _, tt := range tests {
		if got := ArchiveName(tt.filter, now); got != tt.want {
			t.Errorf("ArchiveName(%+v) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}

func TestReviewRequiresSession(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	expired := &model.AdminSession{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}

	if _, _, err := env.review.List(ctx, nil, model.SubmissionFilter{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("List(nil) = %v", err)
	}
	if _, err := env.review.Summary(ctx, expired); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Summary(expired) = %v", err)
	}
	if _, _, err := env.review.Download(ctx, nil, 1); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Download(nil) = %v", err)
	}
	if _, _, _, err := env.review.Archive(ctx, nil, model.SubmissionFilter{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Archive(nil) = %v", err)
	}
}

func TestReviewListReportsMissingFilePerRow(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	seeded := seedLedger(t, env)

	if err := os.Remove(seeded[1].FilePath); err != nil {
		t.Fatal(err)
	}

	rows, opts, err := env.review.List(ctx, testSession(), model.SubmissionFilter{ClassName: "Math101"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if row.ID == seeded[1].ID {
			if row.FileAvailable || row.FileError != FileMissingMessage {
				t.Fatalf("missing row = %+v", row)
			}
		} else if !row.FileAvailable {
			t.Fatalf("row %d should be available: %+v", row.ID, row)
		}
	}
	if !reflect.DeepEqual(opts.Groups, []string{AllGroups, "TeamA", "TeamB"}) {
		t.Fatalf("group options = %v", opts.Groups)
	}

	if _, _, err := env.review.Download(ctx, testSession(), seeded[1].ID); !errors.Is(err, filestore.ErrFileNotFound) {
		t.Fatalf("Download(missing) = %v", err)
	}
	name, data, err := env.review.Download(ctx, testSession(), seeded[0].ID)
	if err != nil || name != "a1.pdf" || string(data) != "content of a1.pdf" {
		t.Fatalf("Download = %q, %q, %v", name, data, err)
	}
	if _, _, err := env.review.Download(ctx, testSession(), 9999); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("Download(unknown) = %v", err)
	}
}

func TestSummaryIgnoresFiltersAndDeactivation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	env.classes.AddOrActivate(ctx, "CS-101")
	if _, err := env.submit.Submit(ctx, model.SubmitRequest{ClassName: "CS-101", GroupName: "TeamA"}, []Upload{upload("x.txt", "x")}); err != nil {
		t.Fatal(err)
	}

	all, _ := env.classes.ListAll(ctx)
	env.classes.SetActive(ctx, all[0].ID, false)

	names, _ := env.classes.ListActiveNames(ctx)
	if len(names) != 0 {
		t.Fatalf("active names = %v", names)
	}

	rows, _, err := env.review.List(ctx, testSession(), model.SubmissionFilter{})
	if err != nil || len(rows) != 1 || rows[0].ClassName != "CS-101" {
		t.Fatalf("List = %+v, %v", rows, err)
	}
	summary, err := env.review.Summary(ctx, testSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 1 || summary[0].ClassName != "CS-101" || summary[0].Count != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestReviewArchive(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	seedLedger(t, env)

	name, buf, report, err := env.review.Archive(ctx, testSession(), model.SubmissionFilter{ClassName: "Math101", GroupName: "TeamA"})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if report.Added != 2 || len(report.Skipped) != 0 {
		t.Fatalf("report = %+v", report)
	}
	if !bytes.HasPrefix([]byte(name), []byte("tugas_Math101_TeamA_")) {
		t.Fatalf("name = %q", name)
	}
	entries := readZip(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}

	if _, _, _, err := env.review.Archive(ctx, testSession(), model.SubmissionFilter{ClassName: "Nope"}); !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("Archive(empty) = %v", err)
	}

	disabled := NewReviewService(env.ledger, env.files, nil, env.review.log)
	if _, _, _, err := disabled.Archive(ctx, testSession(), model.SubmissionFilter{}); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("Archive(disabled) = %v", err)
	}
}

func TestExportSummary(t *testing.T) {
	env := newTestEnv(t, false)
	seedLedger(t, env)

	name, buf, err := env.review.ExportSummary(context.Background(), testSession())
	if err != nil {
		t.Fatalf("ExportSummary: %v", err)
	}
	if filepath.Ext(name) != ".xlsx" {
		t.Fatalf("name = %q", name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Ringkasan")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Kelas", "Kelompok", "Jumlah Tugas"},
		{"CS-101", "TeamA", "1"},
		{"Math101", "TeamA", "2"},
		{"Math101", "TeamB", "1"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestWriteSummarySheetReportsMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	summary := []model.GroupSummary{{ClassName: "Math101", GroupName: "TeamA", Count: 2}}
	err := writeSummarySheet(f, "TidakAda", summary)
	if err == nil {
		t.Fatal("expected error for a missing sheet")
	}
	var missing excelize.ErrSheetNotExist
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want ErrSheetNotExist", err)
	}
}
