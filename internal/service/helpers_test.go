package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stemsi/kumpul-tugas/internal/database"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/logger"
	"github.com/stemsi/kumpul-tugas/internal/model"
	"github.com/stemsi/kumpul-tugas/internal/repository"
)

type testEnv struct {
	ledger  *repository.BoltSubmissionRepository
	files   *filestore.Local
	classes *ClassService
	submit  *SubmissionService
	archive *ArchiveService
	review  *ReviewService
	feed    *MemoryFeed
}

func newTestEnv(t *testing.T, withRegistry bool) *testEnv {
	t.Helper()

	dir := t.TempDir()
	log := logger.Nop()
	db, err := database.NewBoltDB(filepath.Join(dir, "test.db"), log)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		ledger: repository.NewBoltSubmissionRepository(db),
		files:  filestore.NewLocal(filepath.Join(dir, "uploads")),
		feed:   NewMemoryFeed(),
	}
	env.classes = NewClassService(repository.NewBoltClassRepository(db), log)

	var registry *ClassService
	if withRegistry {
		registry = env.classes
	}
	env.submit = NewSubmissionService(env.ledger, registry, env.files, env.feed, 1024, log)
	env.archive = NewArchiveService(env.files, log)
	env.review = NewReviewService(env.ledger, env.files, env.archive, log)
	return env
}

func testSession() *model.AdminSession {
	now := time.Now()
	return &model.AdminSession{ID: "test-session", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
}

// setNow pins the clock used for ledger timestamps.
func (e *testEnv) setNow(t time.Time) {
	e.submit.now = func() time.Time { return t }
}
