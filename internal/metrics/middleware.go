package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Route labels. Anything chi did not match is folded into routeUnmatched so
// scanners hitting random paths cannot grow the label set.
const (
	routeAsk           = "ask"
	routeRetrieve      = "retrieve"
	routeSessionDelete = "session_delete"
	routeHealth        = "health"
	routeMetrics       = "metrics"
	routeUnmatched     = "unmatched"
)

var routeLabels = map[string]string{
	"/v1/ask":           routeAsk,
	"/v1/retrieve":      routeRetrieve,
	"/v1/sessions/{id}": routeSessionDelete,
	"/health":           routeHealth,
	"/metrics":          routeMetrics,
}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by API route",
			// /v1/ask spans an embedding call and a chat completion.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by API route",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestsInFlight)
}

// Middleware records HTTP request duration, count and in-flight requests per
// route. Scrapes of /metrics are counted but not timed.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The pattern is only known after routing, so in-flight is keyed
			// by the raw path and falls back to unmatched.
			inflight := routeLabel(r.URL.Path)
			httpRequestsInFlight.WithLabelValues(inflight).Inc()
			defer httpRequestsInFlight.WithLabelValues(inflight).Dec()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := routeUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = routeLabel(rctx.RoutePattern())
			}
			status := strconv.Itoa(ww.status)

			httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			if route != routeMetrics {
				httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			}
		})
	}
}

// routeLabel maps a chi route pattern to a fixed route name.
func routeLabel(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "/")
	if label, ok := routeLabels[pattern]; ok {
		return label
	}
	if strings.HasPrefix(pattern, "/v1/sessions/") && strings.Count(pattern, "/") == 3 {
		return routeSessionDelete
	}
	return routeUnmatched
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
