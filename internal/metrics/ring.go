package metrics

import (
	"sync"
	"time"
)

// Ring is a fixed-capacity history of samples, grounded on the original's
// MetricsStorage: a mutex-guarded deque that drops its oldest entry once
// full rather than growing without bound.
type Ring struct {
	mu       sync.RWMutex
	samples  []Sample
	capacity int
	next     int
	size     int
}

// NewRing returns a Ring holding at most capacity samples. capacity <= 0 is
// clamped to 1.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{samples: make([]Sample, capacity), capacity: capacity}
}

// Add appends s, evicting the oldest sample if the ring is full.
func (r *Ring) Add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[r.next] = s
	r.next = (r.next + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Latest returns the most recently added sample and true, or a zero Sample
// and false if the ring is empty.
func (r *Ring) Latest() (Sample, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.size == 0 {
		return Sample{}, false
	}
	idx := (r.next - 1 + r.capacity) % r.capacity
	return r.samples[idx], true
}

// Recent returns up to n of the most recently added samples, oldest first.
func (r *Ring) Recent(n int) []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n > r.size {
		n = r.size
	}
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		idx := (r.next - n + i + r.capacity*2) % r.capacity
		out[i] = r.samples[idx]
	}
	return out
}

// Since returns every retained sample whose Timestamp is at or after t,
// oldest first.
func (r *Ring) Since(t time.Time) []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.allLocked()
	var out []Sample
	for _, s := range all {
		if !s.Timestamp.Before(t) {
			out = append(out, s)
		}
	}
	return out
}

// allLocked returns every retained sample, oldest first. Caller must hold
// at least r.mu.RLock.
func (r *Ring) allLocked() []Sample {
	out := make([]Sample, r.size)
	start := (r.next - r.size + r.capacity*2) % r.capacity
	for i := 0; i < r.size; i++ {
		out[i] = r.samples[(start+i)%r.capacity]
	}
	return out
}

// Len returns the number of samples currently retained.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Aggregate summarizes every retained sample: average/min/max CPU and
// memory percent, plus cumulative network totals, matching the original's
// AggregatedStats.
type Aggregate struct {
	AvgCPU          float64
	MinCPU          float64
	MaxCPU          float64
	AvgMemory       float64
	MinMemory       float64
	MaxMemory       float64
	TotalNetworkRx  uint64
	TotalNetworkTx  uint64
}

// AggregateAll computes summary statistics over every retained sample.
func (r *Ring) AggregateAll() Aggregate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.allLocked()

	var agg Aggregate
	if len(all) == 0 {
		return agg
	}

	agg.MinCPU = all[0].CPUPercent
	agg.MaxCPU = all[0].CPUPercent
	agg.MinMemory = all[0].MemoryPercent
	agg.MaxMemory = all[0].MemoryPercent

	var sumCPU, sumMem float64
	for _, s := range all {
		sumCPU += s.CPUPercent
		sumMem += s.MemoryPercent
		if s.CPUPercent < agg.MinCPU {
			agg.MinCPU = s.CPUPercent
		}
		if s.CPUPercent > agg.MaxCPU {
			agg.MaxCPU = s.CPUPercent
		}
		if s.MemoryPercent < agg.MinMemory {
			agg.MinMemory = s.MemoryPercent
		}
		if s.MemoryPercent > agg.MaxMemory {
			agg.MaxMemory = s.MemoryPercent
		}
	}
	agg.AvgCPU = sumCPU / float64(len(all))
	agg.AvgMemory = sumMem / float64(len(all))

	first, last := all[0], all[len(all)-1]
	if last.NetworkRxBytes > first.NetworkRxBytes {
		agg.TotalNetworkRx = last.NetworkRxBytes - first.NetworkRxBytes
	}
	if last.NetworkTxBytes > first.NetworkTxBytes {
		agg.TotalNetworkTx = last.NetworkTxBytes - first.NetworkTxBytes
	}
	return agg
}
