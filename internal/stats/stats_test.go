package stats

import (
	"testing"
	"time"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	s := NewLatency(time.Hour)
	for _, ms := range []int64{500, 100, 400, 200, 300} {
		s.Record(ms)
	}

	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencyObserveDuration(t *testing.T) {
	s := NewLatency(time.Hour)
	s.Observe(1500 * time.Microsecond)
	s.Observe(2 * time.Second)
	snap := s.Snapshot()
	if snap.MinMs != 1 || snap.MaxMs != 2000 {
		t.Fatalf("expected min=1 max=2000, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLatencyPrunesExpiredSamples(t *testing.T) {
	s := NewLatency(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(25 * time.Millisecond)

	if snap := s.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	s.Record(200)
	snap := s.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected single fresh sample of 200, got %+v", snap)
	}
}

func TestLatencyClampsNegative(t *testing.T) {
	s := NewLatency(time.Hour)
	s.Record(-10)
	if snap := s.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestLatencyEmpty(t *testing.T) {
	if snap := NewLatency(0).Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
