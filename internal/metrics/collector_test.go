//go:build linux

package metrics

import "testing"

func TestCollectReturnsPlausibleSample(t *testing.T) {
	c := NewCollector("/")

	if _, err := c.Collect(); err != nil {
		t.Fatalf("first collect: %v", err)
	}

	s, err := c.Collect()
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}

	if s.MemoryTotal == 0 {
		t.Error("expected nonzero MemoryTotal")
	}
	if s.MemoryPercent < 0 || s.MemoryPercent > 100 {
		t.Errorf("MemoryPercent = %v, out of range", s.MemoryPercent)
	}
	if s.DiskTotal == 0 {
		t.Error("expected nonzero DiskTotal")
	}
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent = %v, out of range", s.CPUPercent)
	}
}
