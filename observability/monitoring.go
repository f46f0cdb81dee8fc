package observability

import (
	"context"
	"letter-lab/domain"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats is the snapshot served on /healthz.
type MonitoringStats struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	// --- LETTER METRICS ---
	Composed       uint64 `json:"composed"`
	OpenedCompact  uint64 `json:"opened_compact"`
	OpenedLegacy   uint64 `json:"opened_legacy"`
	OpenedFallback uint64 `json:"opened_fallback"`
	CensoredWords  uint64 `json:"censored_words"`
	DroppedEvents  uint64 `json:"dropped_events"`

	// --- SYSTEM METRICS ---
	AllocMemMb    uint64  `json:"alloc_mem_mb"`
	NumGC         uint32  `json:"num_gc"`
	NumGoroutine  int     `json:"num_goroutine"`
	ProcessCPU    float64 `json:"process_cpu_percent"`
	ProcessRSSMb  uint64  `json:"process_rss_mb"`
	StatsQueueLen int     `json:"stats_queue_len"`
	StatsQueueCap int     `json:"stats_queue_cap"`
}

// MonitoringManager aggregates counters in memory and refreshes system metrics periodically.
type MonitoringManager struct {
	log         *slog.Logger
	startedAt   time.Time
	interval    time.Duration
	queueLen    func() int
	queueCap    int
	mu          sync.RWMutex
	latestStats MonitoringStats

	composed       uint64
	openedCompact  uint64
	openedLegacy   uint64
	openedFallback uint64
	censoredWords  uint64
	droppedEvents  uint64
}

func NewMonitoringManager(log *slog.Logger, interval time.Duration) *MonitoringManager {
	return &MonitoringManager{
		log:       log,
		startedAt: time.Now(),
		interval:  interval,
		queueLen:  func() int { return 0 },
	}
}

// WatchQueue exposes the fill level of a buffered channel in snapshots.
func (mm *MonitoringManager) WatchQueue(length func() int, capacity int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.queueLen = length
	mm.queueCap = capacity
}

func (mm *MonitoringManager) IncrComposed() {
	atomic.AddUint64(&mm.composed, 1)
}

func (mm *MonitoringManager) IncrOpened(format domain.Format) {
	switch format {
	case domain.FormatCompact:
		atomic.AddUint64(&mm.openedCompact, 1)
	case domain.FormatLegacy:
		atomic.AddUint64(&mm.openedLegacy, 1)
	default:
		atomic.AddUint64(&mm.openedFallback, 1)
	}
}

func (mm *MonitoringManager) AddCensoredWords(n int) {
	atomic.AddUint64(&mm.censoredWords, uint64(n))
}

func (mm *MonitoringManager) IncrDroppedEvents() {
	atomic.AddUint64(&mm.droppedEvents, 1)
}

// Run refreshes system metrics until the context is canceled.
func (mm *MonitoringManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	mm.updateSystemStats()
	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Monitoring manager stopped")
			return ctx.Err()
		case <-ticker.C:
			mm.updateSystemStats()
		}
	}
}

func (mm *MonitoringManager) updateSystemStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var cpu float64
	var rss uint64
	if p, err := process.NewProcess(int32(os.Getpid())); err != nil {
		mm.log.Debug("Error while retrieving process", "err", err)
	} else {
		if cpu, err = p.CPUPercent(); err != nil {
			mm.log.Debug("Error while finding process cpu usage", "err", err)
		}
		if info, err := p.MemoryInfo(); err != nil {
			mm.log.Debug("Error while finding process ram usage", "err", err)
		} else {
			rss = info.RSS / 1024 / 1024
		}
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.ProcessCPU = cpu
	mm.latestStats.ProcessRSSMb = rss

	mm.log.Debug("📊 Stats updated",
		"mem_mb", mm.latestStats.AllocMemMb,
		"rss_mb", rss,
		"cpu", cpu,
	)
}

// GetLatest merges live counters into the last system snapshot.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	stats := mm.latestStats
	stats.Status = "ok"
	stats.UptimeSeconds = time.Since(mm.startedAt).Seconds()
	stats.Composed = atomic.LoadUint64(&mm.composed)
	stats.OpenedCompact = atomic.LoadUint64(&mm.openedCompact)
	stats.OpenedLegacy = atomic.LoadUint64(&mm.openedLegacy)
	stats.OpenedFallback = atomic.LoadUint64(&mm.openedFallback)
	stats.CensoredWords = atomic.LoadUint64(&mm.censoredWords)
	stats.DroppedEvents = atomic.LoadUint64(&mm.droppedEvents)
	stats.NumGoroutine = runtime.NumGoroutine()
	stats.StatsQueueLen = mm.queueLen()
	stats.StatsQueueCap = mm.queueCap
	return stats
}
