package metrics

import (
	"sync"
	"testing"
)

func TestMetricsInc(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricRefreshSuccess)
	m.Inc(MetricRefreshSuccess)
	m.Inc(MetricLogout)

	if got := m.Value(MetricRefreshSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricLogout); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := New(Config{Enabled: false})
	m.Inc(MetricRefreshSuccess)
	if got := m.Value(MetricRefreshSuccess); got != 0 {
		t.Fatalf("disabled metrics must stay zero, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot must be empty, got %d entries", len(snap.Counters))
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogout)
	if got := m.Value(MetricLogout); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsOutOfRange(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricIDCount + 7)
	if got := m.Value(MetricIDCount + 7); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := New(Config{Enabled: true})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricBroadcastApplied)
			}
		}()
	}
	wg.Wait()
	if got := m.Value(MetricBroadcastApplied); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricLinkRequested)
	snap := m.Snapshot()
	if snap.Counters[MetricLinkRequested] != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap.Counters)
	}
	// The snapshot is a copy; later increments do not leak into it.
	m.Inc(MetricLinkRequested)
	if snap.Counters[MetricLinkRequested] != 1 {
		t.Fatal("snapshot mutated after the fact")
	}
}
