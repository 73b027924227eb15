package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// phaseStat accumulates the time spent in one frame phase during the current interval.
type phaseStat struct {
	total time.Duration
	max   time.Duration
	count int
}

// Profiler tracks frame rate, memory statistics and per-phase frame timings.
// Outputs stats to the logger at a configurable interval. It is owned by the render
// thread and is not safe for concurrent use.
type Profiler struct {
	logger *zap.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	phaseOrder []string
	phases     map[string]*phaseStat
	averages   map[string]time.Duration
	fps        float64
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         zap.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
		phases:         make(map[string]*phaseStat),
		averages:       make(map[string]time.Duration),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Measure starts timing a frame phase and returns the function that stops it.
//
// Parameters:
//   - phase: the phase name, e.g. "shadows"
//
// Returns:
//   - func(): stops the measurement and records it
func (p *Profiler) Measure(phase string) func() {
	start := p.now()
	return func() {
		p.Record(phase, p.now().Sub(start))
	}
}

// Record adds a measured duration to a frame phase.
//
// Parameters:
//   - phase: the phase name
//   - d: the time spent
func (p *Profiler) Record(phase string, d time.Duration) {
	s, ok := p.phases[phase]
	if !ok {
		s = &phaseStat{}
		p.phases[phase] = s
		p.phaseOrder = append(p.phaseOrder, phase)
	}
	s.total += d
	s.count++
	if d > s.max {
		s.max = d
	}
}

// PhaseAverages returns the mean time per phase over the last completed interval.
//
// Returns:
//   - map[string]time.Duration: phase name to average duration
func (p *Profiler) PhaseAverages() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.averages))
	for k, v := range p.averages {
		out[k] = v
	}
	return out
}

// FPS returns the frame rate measured over the last completed interval.
func (p *Profiler) FPS() float64 {
	return p.fps
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory,
// and the average and worst time of every recorded phase.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	p.fps = float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (tracks churn)
	// Sys: Total bytes of memory obtained from the OS
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	fields := []zap.Field{
		zap.Float64("fps", p.fps),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc_count", gcCount),
		zap.Uint64("gc_last_us", lastPauseUs),
		zap.Uint64("gc_max_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	}
	clear(p.averages)
	for _, name := range p.phaseOrder {
		s := p.phases[name]
		if s.count == 0 {
			continue
		}
		avg := s.total / time.Duration(s.count)
		p.averages[name] = avg
		fields = append(fields, zap.Duration(name+"_avg", avg), zap.Duration(name+"_max", s.max))
		*s = phaseStat{}
	}
	p.logger.Info("frame stats", fields...)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
