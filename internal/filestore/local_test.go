package filestore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLocal(t *testing.T, at time.Time) *Local {
	t.Helper()
	s := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	s.now = func() time.Time { return at }
	return s
}

func TestLocalSaveLayout(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := newTestLocal(t, at)
	content := []byte("hello world!")

	got, err := s.Save(context.Background(), bytes.NewReader(content), "report.pdf", "CS 101", "Team A")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := filepath.Join(s.Root(), "CS_101", "Team_A", "1700000000_report.pdf")
	if got.Path != want {
		t.Fatalf("path = %q, want %q", got.Path, want)
	}
	if got.OriginalName != "report.pdf" {
		t.Fatalf("original name = %q", got.OriginalName)
	}
	if got.Size != 12 {
		t.Fatalf("size = %d, want 12", got.Size)
	}

	onDisk, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatalf("stored content = %q", onDisk)
	}

	entries, err := os.ReadDir(filepath.Dir(got.Path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLocalSaveExistingDirectory(t *testing.T) {
	s := newTestLocal(t, time.Unix(1700000000, 0))
	ctx := context.Background()

	if _, err := s.Save(ctx, strings.NewReader("a"), "a.txt", "X", "Y"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, strings.NewReader("b"), "b.txt", "X", "Y"); err != nil {
		t.Fatalf("second save into existing dir: %v", err)
	}
}

func TestLocalSaveSameSecondOverwrites(t *testing.T) {
	s := newTestLocal(t, time.Unix(1700000000, 0))
	ctx := context.Background()

	first, err := s.Save(ctx, strings.NewReader("first"), "tugas.docx", "X", "Y")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(ctx, strings.NewReader("second!"), "tugas.docx", "X", "Y")
	if err != nil {
		t.Fatal(err)
	}
	if first.Path != second.Path {
		t.Fatalf("expected colliding paths, got %q and %q", first.Path, second.Path)
	}

	data, err := ReadAll(ctx, s, first.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second!" {
		t.Fatalf("content = %q, want last write", data)
	}
}

func TestLocalMissingFile(t *testing.T) {
	s := newTestLocal(t, time.Now())
	ctx := context.Background()
	missing := filepath.Join(s.Root(), "nope", "gone.txt")

	ok, err := s.Exists(ctx, missing)
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v; want false, nil", ok, err)
	}
	if ok, _ := s.Exists(ctx, ""); ok {
		t.Fatal("empty path should not exist")
	}

	if _, err := s.Open(ctx, missing); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Open error = %v, want ErrFileNotFound", err)
	}
	if _, err := ReadAll(ctx, s, missing); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("ReadAll error = %v, want ErrFileNotFound", err)
	}
}

func TestLocalExistsAfterExternalDelete(t *testing.T) {
	s := newTestLocal(t, time.Now())
	ctx := context.Background()

	stored, err := s.Save(ctx, strings.NewReader("x"), "x.txt", "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, stored.Path); !ok {
		t.Fatal("file should exist after save")
	}
	if err := os.Remove(stored.Path); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, stored.Path); ok {
		t.Fatal("file should be gone after external delete")
	}
}
