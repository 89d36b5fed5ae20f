package metrics

import (
	"testing"
	"time"
)

func sampleAt(cpu float64, t time.Time) Sample {
	return Sample{CPUPercent: cpu, Timestamp: t}
}

func TestRingEvictsOldestWhenFull(t *testing.T) {
	r := NewRing(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		r.Add(sampleAt(float64(i), base.Add(time.Duration(i)*time.Second)))
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	recent := r.Recent(3)
	if len(recent) != 3 || recent[0].CPUPercent != 2 || recent[2].CPUPercent != 4 {
		t.Fatalf("recent = %+v, want [2,3,4]", recent)
	}
}

func TestRingLatest(t *testing.T) {
	r := NewRing(2)
	if _, ok := r.Latest(); ok {
		t.Fatal("expected no latest sample on empty ring")
	}
	r.Add(sampleAt(10, time.Now()))
	r.Add(sampleAt(20, time.Now()))
	latest, ok := r.Latest()
	if !ok || latest.CPUPercent != 20 {
		t.Fatalf("latest = %+v, ok=%v", latest, ok)
	}
}

func TestRingSinceFiltersByTimestamp(t *testing.T) {
	r := NewRing(10)
	base := time.Now()
	for i := 0; i < 5; i++ {
		r.Add(sampleAt(float64(i), base.Add(time.Duration(i)*time.Second)))
	}
	cutoff := base.Add(2 * time.Second)
	since := r.Since(cutoff)
	if len(since) != 3 {
		t.Fatalf("len(since) = %d, want 3", len(since))
	}
}

func TestRingAggregateAll(t *testing.T) {
	r := NewRing(10)
	base := time.Now()
	for i, cpu := range []float64{10, 50, 30} {
		r.Add(Sample{CPUPercent: cpu, MemoryPercent: cpu, Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	agg := r.AggregateAll()
	if agg.MinCPU != 10 || agg.MaxCPU != 50 {
		t.Fatalf("agg = %+v", agg)
	}
	wantAvg := (10.0 + 50.0 + 30.0) / 3
	if agg.AvgCPU != wantAvg {
		t.Fatalf("AvgCPU = %v, want %v", agg.AvgCPU, wantAvg)
	}
}
