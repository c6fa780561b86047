package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/worker"
)

const checkTimeout = 3 * time.Second

// HealthCheck probes one dependency (database, redis, bucket).
type HealthCheck func(ctx context.Context) error

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	startTime time.Time
	uploadDir string
	checks    map[string]HealthCheck
	integrity *worker.IntegrityWorker
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. uploadDir is empty when
// files are not kept on local disk; integrity may be nil.
func NewSystemHandler(uploadDir string, checks map[string]HealthCheck, integrity *worker.IntegrityWorker, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		uploadDir: uploadDir,
		checks:    checks,
		integrity: integrity,
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Timestamp int64             `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`

	// Last ledger scan
	Integrity *worker.IntegrityReport `json:"integrity,omitempty"`

	// Upload storage
	DiskUsedBytes  uint64  `json:"disk_used_bytes,omitempty"`
	DiskTotalBytes uint64  `json:"disk_total_bytes,omitempty"`
	DiskPercent    float64 `json:"disk_percent,omitempty"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	results, healthy := h.runChecks(c.Request.Context())
	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}

// SystemStatus godoc
// GET /api/v1/admin/system/status
// Returns a one-shot snapshot of runtime, disk and dependency state.
func (h *SystemHandler) SystemStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.collect(c.Request.Context()))
}

func (h *SystemHandler) collect(ctx context.Context) systemStatus {
	m := systemStatus{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}
	m.Checks, _ = h.runChecks(ctx)
	if h.integrity != nil {
		m.Integrity = h.integrity.Last()
	}

	// ── Disk ──
	if h.uploadDir != "" {
		diskTotal, diskFree, err := readDisk(h.uploadDir)
		if err == nil && diskTotal > 0 {
			m.DiskTotalBytes = diskTotal
			m.DiskUsedBytes = diskTotal - diskFree
			m.DiskPercent = float64(m.DiskUsedBytes) / float64(diskTotal) * 100
		}
	}

	// ── Go Runtime ──
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.NumGC = ms.NumGC

	return m
}

func (h *SystemHandler) runChecks(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](checkCtx)
		cancel()
		if err != nil {
			h.log.Warn().Err(err).Str("check", name).Msg("health check failed")
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

// readDisk uses syscall.Statfs to get disk usage.
func readDisk(path string) (total, free uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total = stat.Blocks * uint64(stat.Bsize)
	free = stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
