package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/filestore"
	"github.com/stemsi/kumpul-tugas/internal/repository"
)

// DefaultIntegrityInterval is how often the ledger is checked against the
// file store.
const DefaultIntegrityInterval = 30 * time.Minute

// IntegrityReport is the outcome of one ledger scan.
type IntegrityReport struct {
	CheckedAt time.Time `json:"checked_at"`
	Total     int       `json:"total"`
	Missing   []int64   `json:"missing"`
}

// IntegrityWorker periodically looks for ledger rows whose stored file is
// gone. It only reports; rows are never modified.
type IntegrityWorker struct {
	ledger   repository.SubmissionStore
	files    filestore.Store
	interval time.Duration
	log      zerolog.Logger

	mu   sync.RWMutex
	last *IntegrityReport
}

func NewIntegrityWorker(ledger repository.SubmissionStore, files filestore.Store, interval time.Duration, log zerolog.Logger) *IntegrityWorker {
	if interval <= 0 {
		interval = DefaultIntegrityInterval
	}
	return &IntegrityWorker{
		ledger:   ledger,
		files:    files,
		interval: interval,
		log:      log.With().Str("component", "integrity_worker").Logger(),
	}
}

// Start scans once immediately, then every interval until ctx is done.
func (w *IntegrityWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("IntegrityWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Scan(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("integrity scan failed")
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("IntegrityWorker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Scan checks every ledger row once.
func (w *IntegrityWorker) Scan(ctx context.Context) (IntegrityReport, error) {
	records, err := w.ledger.ListAll(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}

	report := IntegrityReport{CheckedAt: time.Now(), Total: len(records), Missing: []int64{}}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ok, err := w.files.Exists(ctx, rec.FilePath)
		if err != nil {
			return report, err
		}
		if !ok {
			report.Missing = append(report.Missing, rec.ID)
		}
	}

	if len(report.Missing) > 0 {
		w.log.Warn().
			Int("total", report.Total).
			Int("missing", len(report.Missing)).
			Ints64("submission_ids", report.Missing).
			Msg("submissions without stored file")
	} else {
		w.log.Debug().Int("total", report.Total).Msg("ledger intact")
	}

	w.mu.Lock()
	w.last = &report
	w.mu.Unlock()

	return report, nil
}

// Last returns the most recent report, or nil before the first scan.
func (w *IntegrityWorker) Last() *IntegrityReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
