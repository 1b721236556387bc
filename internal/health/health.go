// Package health derives an aggregate health signal from orchestrator state
// and process resource usage.
package health

import (
	"runtime"
	"sync"

	"llamad/pkg/types"
)

// Aggregate health values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Defaults applied when corresponding ReporterConfig fields are unset.
const (
	defaultHeapLimitBytes = 8 << 30 // 8 GiB
	defaultDegradedAt     = 0.9
)

// StatusProvider is the slice of the orchestrator the reporter consumes.
type StatusProvider interface {
	Status() types.StatusResponse
	ReadyCount() int
}

// ReporterConfig tunes the health reporter.
type ReporterConfig struct {
	// HeapLimitBytes is the base for the heap-usage ratio.
	HeapLimitBytes uint64
	// DegradedAt is the heap ratio above which health degrades.
	DegradedAt float64
}

// Reporter computes health from orchestrator state, heap usage and the last
// error any component recorded.
type Reporter struct {
	svc        StatusProvider
	heapLimit  uint64
	degradedAt float64
	readHeap   func() uint64

	mu      sync.Mutex
	lastErr string
}

// New constructs a Reporter, applying package defaults for unset fields.
func New(svc StatusProvider, cfg ReporterConfig) *Reporter {
	r := &Reporter{
		svc:        svc,
		heapLimit:  cfg.HeapLimitBytes,
		degradedAt: cfg.DegradedAt,
		readHeap:   heapInUse,
	}
	if r.heapLimit == 0 {
		r.heapLimit = defaultHeapLimitBytes
	}
	if r.degradedAt <= 0 {
		r.degradedAt = defaultDegradedAt
	}
	return r
}

// RecordError marks the process unhealthy until ClearError is called.
// Components use it to signal transient faults worth surfacing.
func (r *Reporter) RecordError(msg string) {
	r.mu.Lock()
	r.lastErr = msg
	r.mu.Unlock()
}

// ClearError clears the recorded error.
func (r *Reporter) ClearError() {
	r.mu.Lock()
	r.lastErr = ""
	r.mu.Unlock()
}

// Report computes the current aggregate health.
func (r *Reporter) Report() types.HealthResponse {
	r.mu.Lock()
	lastErr := r.lastErr
	r.mu.Unlock()

	ratio := float64(r.readHeap()) / float64(r.heapLimit)
	ready := r.svc.ReadyCount()
	resp := types.HealthResponse{
		HeapRatio:   ratio,
		ReadyModels: ready,
		LastError:   lastErr,
	}
	switch {
	case lastErr != "":
		resp.Status = StatusUnhealthy
	case ratio > r.degradedAt:
		resp.Status = StatusDegraded
	case ready == 0:
		resp.Status = StatusDegraded
	default:
		resp.Status = StatusHealthy
	}
	return resp
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}
