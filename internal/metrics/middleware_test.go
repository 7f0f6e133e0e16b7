package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/ask", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Delete("/v1/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/v1/retrieve", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# scrape"))
	})
	return r
}

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := newTestRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/ask", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "ask", "200")); v < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", v)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := newTestRouter()

	for _, id := range []string{"a1", "b2", "c3"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+id, http.NoBody))
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("DELETE", "session_delete", "204")); v < 3 {
		t.Errorf("expected session ids collapsed into one route label, got %f", v)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	r := newTestRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/retrieve", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "retrieve", "502")); v < 1 {
		t.Errorf("expected 502 to be recorded, got %f", v)
	}
}

func TestMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	r := newTestRouter()

	for _, p := range []string{"/wp-login.php", "/v1/ask/extra", "/.env"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, http.NoBody))
	}

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); v < 3 {
		t.Errorf("expected unknown paths under the unmatched label, got %f", v)
	}
}

func TestMiddleware_MetricsScrapeNotTimed(t *testing.T) {
	r := newTestRouter()
	before := testutil.CollectAndCount(httpRequestDuration)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "metrics", "200")); v < 1 {
		t.Errorf("expected scrape to be counted, got %f", v)
	}
	if after := testutil.CollectAndCount(httpRequestDuration); after != before {
		t.Errorf("expected no duration series for scrapes, got %d new", after-before)
	}
	if v := testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics")); v != 0 {
		t.Errorf("expected in-flight to return to 0, got %f", v)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/v1/ask", "ask"},
		{"/v1/retrieve/", "retrieve"},
		{"/v1/sessions/{id}", "session_delete"},
		{"/v1/sessions/3f2a", "session_delete"},
		{"/v1/sessions/3f2a/messages", "unmatched"},
		{"/health", "health"},
		{"", "unmatched"},
		{"/admin", "unmatched"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.pattern); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()

	RetrievalSkippedTotal.WithLabelValues("missing_text").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "circulars_retrieval_skipped_total") {
			found = true
		}
	}
	if !found {
		t.Fatal("retrieval metrics not registered with the default registry")
	}
}
