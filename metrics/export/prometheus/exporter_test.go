package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goTenant "github.com/MrEthical07/goTenant"
)

type fakeSource struct {
	snapshot goTenant.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goTenant.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func emptySnapshot() goTenant.MetricsSnapshot {
	return goTenant.MetricsSnapshot{
		Counters:   map[goTenant.MetricID]uint64{},
		Histograms: map[goTenant.MetricID][]uint64{},
	}
}

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporter(fakeSource{snapshot: emptySnapshot()})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderCountersAndHistogram(t *testing.T) {
	exp := NewExporter(fakeSource{
		snapshot: goTenant.MetricsSnapshot{
			Counters: map[goTenant.MetricID]uint64{
				goTenant.MetricSigninSuccess: 7,
				goTenant.MetricRoleDenied:    2,
			},
			Histograms: map[goTenant.MetricID][]uint64{
				goTenant.MetricAuthenticateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"gotenant_signin_success_total 7",
		"gotenant_role_denied_total 2",
		"gotenant_refresh_failure_total 0",
		`gotenant_authenticate_latency_seconds_bucket{le="0.005"} 1`,
		`gotenant_authenticate_latency_seconds_bucket{le="+Inf"} 36`,
		"gotenant_authenticate_latency_seconds_count 36",
		"gotenant_audit_dropped_total 2",
		"# TYPE gotenant_signup_success_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderNilExporter(t *testing.T) {
	var exp *Exporter
	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	snap := emptySnapshot()
	snap.Counters[goTenant.MetricSigninSuccess] = 1
	exp := NewExporter(fakeSource{snapshot: snap})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gotenant_signin_success_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	snap := emptySnapshot()
	snap.Counters[goTenant.MetricSigninSuccess] = 1000
	snap.Counters[goTenant.MetricRefreshSuccess] = 800
	snap.Histograms[goTenant.MetricAuthenticateLatency] = []uint64{10, 20, 30, 40, 50, 60, 70, 80}
	exp := NewExporter(fakeSource{snapshot: snap})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
