// Package cast is the query surface for one XBT cast: a temperature series
// together with the fall-rate model of the probe and recorder that took it.
//
// A Cast never changes after construction and every accessor recomputes its
// result from the raw series, so a Cast may be shared between goroutines.
package cast

import (
	"fmt"

	"github.com/spencer-p/xbtdash/pkg/fallrate"
	"github.com/spencer-p/xbtdash/pkg/instruments"
	"github.com/spencer-p/xbtdash/pkg/profile"
)

type Cast struct {
	temps     []float64
	model     fallrate.Model
	maxPoints int
}

type Option func(*Cast)

// WithMaxInflectionPoints caps the number of inflection points either
// detector reports. Values below one are ignored.
func WithMaxInflectionPoints(n int) Option {
	return func(c *Cast) {
		if n > 0 {
			c.maxPoints = n
		}
	}
}

// New resolves the fall-rate model for the recorder and probe and returns a
// cast over a copy of temps.
func New(temps []float64, r instruments.Recorder, p instruments.Probe, opts ...Option) (*Cast, error) {
	m, err := instruments.Model(r, p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fall-rate model: %w", err)
	}
	return NewWithModel(temps, m, opts...), nil
}

// NewWithModel returns a cast over a copy of temps using an already resolved
// model.
func NewWithModel(temps []float64, m fallrate.Model, opts ...Option) *Cast {
	c := &Cast{
		temps:     append([]float64(nil), temps...),
		model:     m,
		maxPoints: profile.DefaultMaxInflectionPoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model is the fall-rate model of the cast.
func (c *Cast) Model() fallrate.Model {
	return c.model
}

// Len is the number of samples in the cast.
func (c *Cast) Len() int {
	return len(c.temps)
}

// Temperatures returns a copy of the raw series.
func (c *Cast) Temperatures() []float64 {
	return append([]float64{}, c.temps...)
}

// MaxInflectionPoints is the cap applied by the inflection detectors.
func (c *Cast) MaxInflectionPoints() int {
	return c.maxPoints
}

func (c *Cast) DepthAt(i int) float64 {
	return c.model.DepthAt(i)
}

// Depths returns the depth of every sample.
func (c *Cast) Depths() []float64 {
	return c.model.Depths(len(c.temps))
}

func (c *Cast) RawProfile() profile.Profile {
	return profile.Build(c.temps, c.model)
}

// OneMeterProfile interpolates the raw profile onto whole meters.
func (c *Cast) OneMeterProfile() (profile.Profile, error) {
	return profile.OneMeter(c.RawProfile())
}

// TwoMeterProfile is every other point of the one meter profile, at even
// depths.
func (c *Cast) TwoMeterProfile() (profile.Profile, error) {
	oneMeter, err := c.OneMeterProfile()
	if err != nil {
		return nil, err
	}
	return profile.TwoMeter(oneMeter), nil
}

// InflectionPoints runs the curvature sign-change detector over the raw
// profile.
func (c *Cast) InflectionPoints() profile.Profile {
	return profile.Inflections(c.RawProfile(), c.maxPoints)
}

// EnvelopeInflectionPoints runs the legacy slope-envelope detector.
func (c *Cast) EnvelopeInflectionPoints() (profile.Profile, error) {
	return profile.EnvelopeInflections(c.RawProfile(), c.model, c.maxPoints)
}

// SmoothedTemperatures is the median-filtered series with its tail trimmed.
func (c *Cast) SmoothedTemperatures() []float64 {
	return profile.Smooth(c.RawProfile())
}

// TailDepth is the index into the one meter profile where the isothermal
// tail begins, or its length when there is no tail.
func (c *Cast) TailDepth() (int, error) {
	oneMeter, err := c.OneMeterProfile()
	if err != nil {
		return 0, err
	}
	return profile.TailDepth(oneMeter), nil
}

// SmoothedTemperatureAtDepth looks up the smoothed temperature at a whole
// meter depth.
func (c *Cast) SmoothedTemperatureAtDepth(depth int) (float64, bool) {
	return profile.SmoothedAt(c.SmoothedTemperatures(), c.model, float64(depth))
}
