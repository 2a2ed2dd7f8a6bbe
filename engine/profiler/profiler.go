package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/starfield/engine/frame"
)

// Summary aggregates the frames recorded over one reporting interval.
type Summary struct {
	Frames         int
	FPS            float64
	AvgPack        time.Duration
	MaxPack        time.Duration
	AvgDrawn       float64
	AvgCulled      float64
	TransformBytes int
	MaterialBytes  int
	HeapMB         float64
	AllocRateMB    float64
	GCCount        uint32
	MaxPauseUs     uint64
}

// Profiler tracks frame packing cost and memory statistics.
// Outputs a Summary to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time

	packTotal   time.Duration
	packMax     time.Duration
	drawnTotal  int
	culledTotal int
	last        frame.Stats
	summary     Summary
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often the profiler reports. Non-positive values are ignored.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - opts: optional settings such as WithInterval
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record should be called once per packed frame with the frame's statistics.
// Logs a Summary when the update interval has elapsed.
//
// Parameters:
//   - stats: the statistics of the frame just packed
//
// Returns:
//   - bool: true if stats were logged this call, false otherwise
func (p *Profiler) Record(stats frame.Stats) bool {
	p.frameCount++
	p.packTotal += stats.Duration
	p.packMax = max(p.packMax, stats.Duration)
	p.drawnTotal += stats.Drawn
	p.culledTotal += stats.Culled
	p.last = stats

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	gcCount := p.memStats.NumGC

	// PauseNs is a circular buffer of the last 256 pauses
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	n := float64(p.frameCount)
	p.summary = Summary{
		Frames:         p.frameCount,
		FPS:            n / elapsed.Seconds(),
		AvgPack:        p.packTotal / time.Duration(p.frameCount),
		MaxPack:        p.packMax,
		AvgDrawn:       float64(p.drawnTotal) / n,
		AvgCulled:      float64(p.culledTotal) / n,
		TransformBytes: p.last.TransformBytes,
		MaterialBytes:  p.last.MaterialBytes,
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:    float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        gcCount,
		MaxPauseUs:     maxPauseUs,
	}
	s := p.summary
	log.Printf("[Profiler] FPS: %.2f | Pack: %s avg, %s max | Draws: %.1f (culled %.1f) | Arena: %d+%d B | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs)",
		s.FPS, s.AvgPack, s.MaxPack, s.AvgDrawn, s.AvgCulled, s.TransformBytes, s.MaterialBytes, s.HeapMB, s.AllocRateMB, s.GCCount, s.MaxPauseUs)

	p.frameCount = 0
	p.packTotal = 0
	p.packMax = 0
	p.drawnTotal = 0
	p.culledTotal = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Summary returns the most recently logged summary.
func (p *Profiler) Summary() Summary {
	return p.summary
}
