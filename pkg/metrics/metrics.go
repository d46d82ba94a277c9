package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "xbtdash",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	castsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "casts_processed_total",
			Subsystem: "xbtdash",
			Help:      "Casts processed, by probe type.",
		},
		[]string{"probe"},
	)

	inflectionPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "inflection_points",
			Subsystem: "xbtdash",
			Help:      "Inflection points found per cast.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		castsProcessed,
		inflectionPoints,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveCast counts a processed cast and the number of inflection points it
// produced.
func ObserveCast(probe string, inflections int) {
	castsProcessed.With(prometheus.Labels{"probe": probe}).Inc()
	inflectionPoints.Observe(float64(inflections))
}

// LatencyHandler is mux middleware. Requests are labelled with the route
// template rather than the raw path so cast ids do not become labels.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := routePath(r)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	if r.URL == nil {
		return ""
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
