package llm

import (
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(100, 1, true)
	stats.Record(200, 1, true)
	stats.Record(300, 2, true)
	stats.Record(400, 1, true)
	stats.Record(500, 1, true)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
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
	if snap.Retries != 1 {
		t.Fatalf("expected retries=1, got %d", snap.Retries)
	}
}

func TestLLMStatsFailuresExcludedFromLatency(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(100, 1, true)
	stats.Record(90000, 5, false)

	snap := stats.Snapshot()
	if snap.Calls != 2 || snap.Failures != 1 {
		t.Fatalf("expected calls=2 failures=1, got calls=%d failures=%d", snap.Calls, snap.Failures)
	}
	if snap.Retries != 4 {
		t.Fatalf("expected retries=4, got %d", snap.Retries)
	}
	if snap.Count != 1 || snap.MaxMs != 100 {
		t.Fatalf("expected only the successful call in latency figures, got count=%d max=%d", snap.Count, snap.MaxMs)
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewLLMStats(10 * time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100, 1, true)
	now = now.Add(11 * time.Minute)

	snap := stats.Snapshot()
	if snap.Calls != 0 {
		t.Fatalf("expected calls=0 after prune, got %d", snap.Calls)
	}

	stats.Record(200, 1, true)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStatsRecordClampsInput(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10, 0, true)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.Retries != 0 {
		t.Fatalf("expected retries=0, got %d", snap.Retries)
	}
}
