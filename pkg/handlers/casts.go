package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/spencer-p/xbtdash/pkg/cast"
	"github.com/spencer-p/xbtdash/pkg/data"
	"github.com/spencer-p/xbtdash/pkg/fallrate"
	"github.com/spencer-p/xbtdash/pkg/instruments"
	"github.com/spencer-p/xbtdash/pkg/log"
	"github.com/spencer-p/xbtdash/pkg/metrics"
	"github.com/spencer-p/xbtdash/pkg/profile"
)

var (
	errNoModel    = errors.New("either probe_type and recorder_type or coefficients and frequency are required")
	errNoSamples  = errors.New("temperatures are required")
	errResolution = errors.New("resolution must be raw, 1, 2 or smoothed")
	errMethod     = errors.New("method must be acceleration or envelope")
	errDepth      = errors.New("depth must be a whole number of meters")
	errNoReading  = errors.New("no smoothed temperature at that depth")
)

// castRequest is a submitted cast. The fall-rate model comes either from the
// instrument codes or directly from coefficients and a frequency.
type castRequest struct {
	Temperatures        []float64              `json:"temperatures"`
	Probe               *int                   `json:"probe_type,omitempty"`
	Recorder            *int                   `json:"recorder_type,omitempty"`
	Coefficients        *fallrate.Coefficients `json:"coefficients,omitempty"`
	Frequency           float64                `json:"frequency,omitempty"`
	MaxInflectionPoints int                    `json:"max_inflection_points,omitempty"`
}

type castSummary struct {
	ID               string                `json:"id"`
	Probe            string                `json:"probe,omitempty"`
	Coefficients     fallrate.Coefficients `json:"coefficients"`
	Frequency        float64               `json:"frequency"`
	Samples          int                   `json:"samples"`
	FinalDepth       float64               `json:"final_depth"`
	TailDepth        int                   `json:"tail_depth"`
	InflectionPoints profile.Profile       `json:"inflection_points"`
}

// profileResponse carries points for the depth resolutions and temperatures
// for the smoothed series. Whichever one is set is present even when empty.
type profileResponse struct {
	ID           string           `json:"id"`
	Resolution   string           `json:"resolution"`
	Points       *profile.Profile `json:"points,omitempty"`
	Temperatures *[]float64       `json:"temperatures,omitempty"`
}

type inflectionResponse struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Points profile.Profile `json:"points"`
}

type temperatureResponse struct {
	ID          string  `json:"id"`
	Depth       int     `json:"depth"`
	Temperature float64 `json:"temperature"`
}

func (req *castRequest) cast(defaultMax int) (*cast.Cast, error) {
	if len(req.Temperatures) == 0 {
		return nil, badRequest(errNoSamples)
	}
	maxPoints := defaultMax
	if req.MaxInflectionPoints > 0 {
		maxPoints = req.MaxInflectionPoints
	}
	opt := cast.WithMaxInflectionPoints(maxPoints)

	switch {
	case req.Coefficients != nil:
		m, err := fallrate.New(*req.Coefficients, req.Frequency)
		if err != nil {
			return nil, err
		}
		return cast.NewWithModel(req.Temperatures, m, opt), nil
	case req.Probe != nil && req.Recorder != nil:
		return cast.New(req.Temperatures, instruments.Recorder(*req.Recorder), instruments.Probe(*req.Probe), opt)
	default:
		return nil, badRequest(errNoModel)
	}
}

func (s *server) createCast(w http.ResponseWriter, r *http.Request) {
	var req castRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, badRequest(fmt.Errorf("failed to decode cast: %w", err)))
		return
	}

	c, err := req.cast(s.maxPoints)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var probe, recorder int
	if req.Coefficients == nil {
		probe, recorder = *req.Probe, *req.Recorder
	}
	rec := data.NewRecord(c, recorder, probe)

	// Reject casts whose depths cannot be resampled before archiving them.
	summary, err := summarize(rec, c)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	summary.ID = rec.ID

	metrics.ObserveCast(summary.probeLabel(), len(summary.InflectionPoints))
	log.Infow("Processed cast",
		"id", rec.ID,
		"samples", summary.Samples,
		"final_depth", summary.FinalDepth,
		"inflections", len(summary.InflectionPoints))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", r.URL.Path+"/"+rec.ID)
	w.WriteHeader(http.StatusCreated)
	if err := writeJSON(w, summary); err != nil {
		log.Errorf("Failed to encode JSON result: %+v", err)
	}
}

func summarize(rec *data.CastRecord, c *cast.Cast) (*castSummary, error) {
	tail, err := c.TailDepth()
	if err != nil {
		return nil, err
	}
	summary := &castSummary{
		ID:               rec.ID,
		Coefficients:     c.Model().Coefficients,
		Frequency:        c.Model().Frequency,
		Samples:          c.Len(),
		FinalDepth:       c.RawProfile().MaxDepth(),
		TailDepth:        tail,
		InflectionPoints: c.InflectionPoints(),
	}
	if rec.Probe != 0 {
		summary.Probe = instruments.Probe(rec.Probe).String()
	}
	return summary, nil
}

func (s *castSummary) probeLabel() string {
	if s.Probe == "" {
		return "custom"
	}
	return s.Probe
}

// load fetches the cast named by the request path.
func (s *server) load(r *http.Request) (*data.CastRecord, *cast.Cast, error) {
	id := mux.Vars(r)["id"]
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	c, err := rec.Cast()
	if err != nil {
		return nil, nil, err
	}
	return rec, c, nil
}

func (s *server) getCast(r *http.Request) (any, error) {
	rec, c, err := s.load(r)
	if err != nil {
		return nil, err
	}
	return summarize(rec, c)
}

func (s *server) getProfile(r *http.Request) (any, error) {
	resolution := r.FormValue("resolution")
	if resolution == "" {
		resolution = "1"
	}
	switch resolution {
	case "raw", "1", "2", "smoothed":
	default:
		return nil, badRequest(errResolution)
	}

	rec, c, err := s.load(r)
	if err != nil {
		return nil, err
	}
	resp := profileResponse{ID: rec.ID, Resolution: resolution}
	if resolution == "smoothed" {
		temps := c.SmoothedTemperatures()
		resp.Temperatures = &temps
		return resp, nil
	}

	var points profile.Profile
	switch resolution {
	case "raw":
		points = c.RawProfile()
	case "1":
		points, err = c.OneMeterProfile()
	case "2":
		points, err = c.TwoMeterProfile()
	}
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = profile.Profile{}
	}
	resp.Points = &points
	return resp, nil
}

func (s *server) getInflections(r *http.Request) (any, error) {
	method := r.FormValue("method")
	if method == "" {
		method = "acceleration"
	}
	if method != "acceleration" && method != "envelope" {
		return nil, badRequest(errMethod)
	}

	rec, c, err := s.load(r)
	if err != nil {
		return nil, err
	}
	resp := inflectionResponse{ID: rec.ID, Method: method}
	if method == "envelope" {
		resp.Points, err = c.EnvelopeInflectionPoints()
		if err != nil {
			return nil, err
		}
	} else {
		resp.Points = c.InflectionPoints()
	}
	return resp, nil
}

func (s *server) getTemperature(r *http.Request) (any, error) {
	depth, err := strconv.Atoi(r.FormValue("depth"))
	if err != nil {
		return nil, badRequest(errDepth)
	}

	rec, c, err := s.load(r)
	if err != nil {
		return nil, err
	}
	temp, ok := c.SmoothedTemperatureAtDepth(depth)
	if !ok {
		return nil, &statusError{code: http.StatusNotFound, err: errNoReading}
	}
	return temperatureResponse{ID: rec.ID, Depth: depth, Temperature: temp}, nil
}
