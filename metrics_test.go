package goTenant

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSigninSuccess)

	if got := m.Value(MetricSigninSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSigninSuccess)
	m.Inc(MetricSigninSuccess)
	m.Inc(MetricSigninSuccess)

	if got := m.Value(MetricSigninSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsOutOfRangeIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount + 5)

	if got := m.Value(metricIDCount + 5); got != 0 {
		t.Fatalf("expected 0 for unknown id, got %d", got)
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricAuthenticateLatency, 3*time.Millisecond)
	m.Observe(MetricAuthenticateLatency, 20*time.Millisecond)
	m.Observe(MetricAuthenticateLatency, 10*time.Second)
	m.Observe(MetricSigninSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricAuthenticateLatency]
	if !ok {
		t.Fatal("expected authenticate latency histogram")
	}
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	if buckets[0] != 1 || buckets[2] != 1 || buckets[histBucketCount-1] != 1 {
		t.Fatalf("unexpected bucket distribution %v", buckets)
	}
	if _, ok := snap.Histograms[MetricSigninSuccess]; ok {
		t.Fatal("only authenticate latency carries a histogram")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricSigninSuccess)
	m.Observe(MetricAuthenticateLatency, time.Millisecond)
	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricSigninSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestEngineAuthenticateRecordsLatency(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	e, done := newTestEngine(t, cfg)
	defer done()

	mustSignup(t, e, "lat@example.com", "")
	pair := mustSignin(t, e, "lat@example.com")
	if _, err := e.Authenticate(t.Context(), pair.AccessToken); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	var total uint64
	for _, n := range e.MetricsSnapshot().Histograms[MetricAuthenticateLatency] {
		total += n
	}
	if total != 1 {
		t.Fatalf("expected one latency sample, got %d", total)
	}
}
