package profiler

import (
	"runtime"
	"testing"
	"time"
)

func TestTickSamples(t *testing.T) {
	start := time.Unix(100, 0)
	p := NewProfiler(time.Second)
	p.lastTime = start
	p.readMemStats = func(m *runtime.MemStats) {
		m.Alloc = 2 * 1024 * 1024
		m.TotalAlloc = 4 * 1024 * 1024
		m.Sys = 8 * 1024 * 1024
		m.NumGC = 3
		m.PauseNs[0] = 1000
		m.PauseNs[1] = 5000
		m.PauseNs[2] = 2000
	}

	for i := 1; i < 30; i++ {
		if _, ok := p.tick(start.Add(time.Duration(i) * 10 * time.Millisecond)); ok {
			t.Fatalf("expected no sample before the interval, got one at frame %d", i)
		}
	}

	stats, ok := p.tick(start.Add(2 * time.Second))
	if !ok {
		t.Fatalf("expected a sample once the interval elapsed")
	}
	if stats.FPS != 15 {
		t.Fatalf("expected 15 FPS, got %v", stats.FPS)
	}
	if stats.FrameTime != 2*time.Second/30 {
		t.Fatalf("expected a mean frame time of %v, got %v", 2*time.Second/30, stats.FrameTime)
	}
	if stats.HeapMB != 2 || stats.SysMB != 8 || stats.AllocRateMB != 2 {
		t.Fatalf("unexpected memory stats %+v", stats)
	}
	if stats.LastPause != 2*time.Microsecond || stats.MaxPause != 5*time.Microsecond {
		t.Fatalf("unexpected pauses last=%v max=%v", stats.LastPause, stats.MaxPause)
	}
	if p.frameCount != 0 || !p.lastTime.Equal(start.Add(2*time.Second)) || p.lastGCCount != 3 {
		t.Fatalf("expected the counters to reset after a sample")
	}

	// No new collections: the max pause only covers the new window.
	stats, ok = p.tick(start.Add(3 * time.Second))
	if !ok || stats.MaxPause != 0 || stats.AllocRateMB != 0 {
		t.Fatalf("expected an empty pause window and no allocation, got %+v", stats)
	}
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	if p := NewProfiler(0); p.updateInterval != time.Second {
		t.Fatalf("expected a one second interval, got %v", p.updateInterval)
	}
}
