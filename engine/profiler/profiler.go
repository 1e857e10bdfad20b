package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-raymarch/log"
)

var logger = log.New("profiler")

// Stats is one profiling sample covering the frames drawn since the previous sample.
type Stats struct {
	FPS           float64
	FrameTime     time.Duration // mean time between frames
	HeapMB        float64
	AllocRateMB   float64 // MB allocated per second over the sample
	GCCount       uint32
	LastPause     time.Duration
	MaxPause      time.Duration // longest pause since the previous sample
	SysMB         float64
	SampleElapsed time.Duration
}

// Profiler counts frames and logs a Stats sample once per interval.
// It is not safe for concurrent use; the render loop owns it.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	readMemStats func(m *runtime.MemStats)
}

// NewProfiler creates a Profiler that samples every interval. A non-positive interval
// falls back to one second.
//
// Parameters:
//   - interval: the time between samples
//
// Returns:
//   - *Profiler: the new profiler, with its clock starting now
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		readMemStats:   runtime.ReadMemStats,
	}
}

// Tick records one frame and logs a sample when the interval has elapsed.
//
// Returns:
//   - bool: true if a sample was logged this tick
func (p *Profiler) Tick() bool {
	stats, ok := p.tick(time.Now())
	if ok {
		logger.Infof("FPS: %.2f | Frame: %v | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %v, max: %v) | Sys: %.2f MB",
			stats.FPS, stats.FrameTime, stats.HeapMB, stats.AllocRateMB, stats.GCCount, stats.LastPause, stats.MaxPause, stats.SysMB)
	}
	return ok
}

func (p *Profiler) tick(now time.Time) (Stats, bool) {
	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	p.readMemStats(&p.memStats)
	stats := Stats{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:     elapsed / time.Duration(p.frameCount),
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       p.memStats.NumGC,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		SampleElapsed: elapsed,
	}

	// PauseNs is a ring of the last 256 pauses.
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		stats.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			stats.MaxPause = max(stats.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
