package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/spencer-p/xbtdash/pkg/cache"
	"github.com/spencer-p/xbtdash/pkg/data"
	"github.com/spencer-p/xbtdash/pkg/fallrate"
	"github.com/spencer-p/xbtdash/pkg/instruments"
	"github.com/spencer-p/xbtdash/pkg/log"
	"github.com/spencer-p/xbtdash/pkg/metrics"
	"github.com/spencer-p/xbtdash/pkg/profile"
)

const (
	day = 24 * time.Hour

	// cache for slightly less than one day so daily clients don't see stale
	// data
	DefaultCacheTTL = day - time.Hour

	// maxBodyBytes bounds a submitted cast. A 10 Hz deep probe records well
	// under a hundred thousand samples.
	maxBodyBytes = 8 << 20
)

type Options struct {
	CacheTTL            time.Duration
	MaxInflectionPoints int
}

type server struct {
	store     data.Store
	cache     *cache.Timed
	maxPoints int
}

// Register installs the cast API on r. Casts are archived in store.
func Register(r *mux.Router, store data.Store, opts Options) *cache.Timed {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxInflectionPoints <= 0 {
		opts.MaxInflectionPoints = profile.DefaultMaxInflectionPoints
	}
	s := &server{
		store:     store,
		cache:     cache.NewTimed(opts.CacheTTL),
		maxPoints: opts.MaxInflectionPoints,
	}

	r.Use(logRequests, metrics.LatencyHandler)
	r.HandleFunc("/api/v1/casts", s.createCast).Methods(http.MethodPost)
	r.Handle("/api/v1/casts/{id}", s.cached(s.getCast)).Methods(http.MethodGet)
	r.Handle("/api/v1/casts/{id}/profile", s.cached(s.getProfile, "resolution")).Methods(http.MethodGet)
	r.Handle("/api/v1/casts/{id}/inflections", s.cached(s.getInflections, "method")).Methods(http.MethodGet)
	r.Handle("/api/v1/casts/{id}/temperature", s.cached(s.getTemperature, "depth")).Methods(http.MethodGet)
	r.Handle("/api/v1/probes", s.cached(getProbes)).Methods(http.MethodGet)
	return s.cache
}

// statusError carries the HTTP status an error should be reported with.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{code: http.StatusBadRequest, err: err}
}

func statusOf(err error) int {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se.code
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fallrate.ErrInvalidFrequency),
		errors.Is(err, instruments.ErrUnknownProbe),
		errors.Is(err, instruments.ErrUnknownRecorder),
		errors.Is(err, data.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		log.Errorw("Request failed", "method", r.Method, "url", r.URL.String(), "error", err)
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprintf(w, "Failed to %s %s: %v\n", r.Method, r.URL.Path, err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// cached serves the JSON rendering of fetch, keeping successful responses in
// the cache. Casts never change once stored, so entries are only dropped when
// they expire. params names the query parameters fetch reads; no others take
// part in the cache key.
func (s *server) cached(fetch func(r *http.Request) (any, error), params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := cacheKey(r, params)

		// serve cache version from memory if possible
		if cached, ok := s.cache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		log.Debugw("Cache miss", "key", key)

		result, err := fetch(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := writeJSON(&buf, result); err != nil {
			writeError(w, r, fmt.Errorf("failed to encode result: %w", err))
			return
		}
		s.cache.Set(key, buf.Bytes())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	})
}

// cacheKey is the method and path plus the named query parameters, in a
// canonical order.
func cacheKey(r *http.Request, params []string) string {
	q := url.Values{}
	for _, p := range params {
		if v := r.FormValue(p); v != "" {
			q.Set(p, v)
		}
	}
	if len(q) == 0 {
		return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	}
	return fmt.Sprintf("%s %s?%s", r.Method, r.URL.Path, q.Encode())
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infow("Request", "method", r.Method, "url", r.URL.String())
		next.ServeHTTP(w, r)
	})
}

func getProbes(*http.Request) (any, error) {
	return instruments.Probes(), nil
}
