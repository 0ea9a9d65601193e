package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-astc/common"
)

// Stats describes one finished compression call.
type Stats struct {
	// Label is the source texture label.
	Label string

	// Duration is the wall time of the call, including the completion fence when enabled.
	Duration time.Duration

	// Blocks is the number of blocks written.
	Blocks int

	// Bytes is the size of the compressed payload.
	Bytes int

	// Reallocated is true when the intermediate texture had to be created for the call.
	Reallocated bool
}

// Profiler accumulates compression statistics and memory usage.
// Outputs a summary to the logger at a configurable interval.
type Profiler struct {
	mu sync.Mutex

	calls          int
	blocks         int
	bytes          int
	reallocations  int
	busy           time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	totalCalls int
	totalBytes int
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often Record logs a summary.
//
// Parameters:
//   - d: the summary interval; non-positive values log on every call
func (p *Profiler) SetInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateInterval = d
}

// Record adds one compression call and logs a summary when the update interval has elapsed.
// The summary holds calls/s, MB/s of compressed blocks, the average GPU time per call, heap
// usage, allocation rate and GC pauses.
//
// Parameters:
//   - s: the call statistics
//
// Returns:
//   - bool: true if a summary was logged by this call
func (p *Profiler) Record(s Stats) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.blocks += s.Blocks
	p.bytes += s.Bytes
	p.busy += s.Duration
	p.totalCalls++
	p.totalBytes += s.Bytes
	if s.Reallocated {
		p.reallocations++
	}

	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"calls/s", float64(p.calls)/seconds,
		"blocks", p.blocks,
		"MB/s", float64(p.bytes)/1024/1024/seconds,
		"avgCall", p.busy/time.Duration(p.calls),
		"reallocations", p.reallocations,
		"heapMB", float64(p.memStats.Alloc)/1024/1024,
		"allocMB/s", float64(allocDelta)/1024/1024/seconds,
		"gc", gcCount,
		"gcLastUs", lastPauseUs,
		"gcMaxUs", maxPauseUs,
	)

	p.calls, p.blocks, p.bytes, p.reallocations, p.busy = 0, 0, 0, 0, 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Totals returns the number of calls and compressed bytes recorded since creation.
//
// Returns:
//   - int: calls
//   - int: compressed bytes
func (p *Profiler) Totals() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalCalls, p.totalBytes
}
