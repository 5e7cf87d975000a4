package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	router := chi.NewRouter()
	router.Use(collector.Middleware)
	router.Get("/api/v1/systems/{system}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/systems/electrical", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := testutil.ToFloat64(collector.APIRequests.WithLabelValues("GET", "/api/v1/systems/{system}", "200")); got != 1 {
		t.Fatalf("api_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "api_request_duration_seconds", map[string]string{
		"method": "GET",
		"route":  "/api/v1/systems/{system}",
	}); count != 1 {
		t.Fatalf("api_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	router := chi.NewRouter()
	router.Use(collector.Middleware)
	router.Get("/api/v1/alerts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := testutil.ToFloat64(collector.APIRequests.WithLabelValues("GET", "/api/v1/alerts", "404")); got != 1 {
		t.Fatalf("api_requests_total error label = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesSimulationGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	collector.ObserveFrame(2 * time.Millisecond)
	collector.SetBusesPowered(5)
	collector.SetCircuitPressure("GREEN", 2987.5)
	collector.SetCabin(6400, 7.2)
	collector.SetActiveAlerts("WARNING", 2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"sim_frame_duration_seconds",
		"sim_frames_total",
		"sim_electrical_buses_powered",
		"sim_hydraulic_pressure_psi",
		"sim_cabin_altitude_ft",
		"sim_cabin_differential_psi",
		"sim_active_alerts",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if got := testutil.ToFloat64(collector.CircuitPressure.WithLabelValues("GREEN")); got != 2987.5 {
		t.Fatalf("sim_hydraulic_pressure_psi{circuit=GREEN} = %v, want 2987.5", got)
	}
}

func TestNewSimCollectorTolerateDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewSimCollector(reg); err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector on reused registry: %v", err)
	}
	second.SetBusesPowered(3)
	if got := testutil.ToFloat64(second.BusesPowered); got != 3 {
		t.Fatalf("reused gauge = %v, want 3", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
