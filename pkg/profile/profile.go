// Package profile turns a time-sampled XBT temperature series into
// depth-referenced profiles and derives resamplings, a median-smoothed
// series, the depth of the isothermal tail and the inflection points that
// describe the shape of the profile.
//
// Every function here is pure: inputs are never modified and results are
// freshly allocated.
package profile

import (
	"fmt"

	"github.com/spencer-p/xbtdash/pkg/fallrate"
)

// TailThreshold is the temperature in degrees Celsius at or above which a
// reading is considered part of the isothermal tail left after the wire
// breaks.
const TailThreshold = 34.5

// DefaultMaxInflectionPoints caps the number of inflection points reported
// for a cast.
const DefaultMaxInflectionPoints = 100

// Point is a single temperature reading at a depth in meters.
type Point struct {
	Depth       float64 `json:"depth"`
	Temperature float64 `json:"temperature"`
}

// Profile is a series of points ordered by depth.
type Profile []Point

// Build pairs each temperature with the depth the model assigns to its
// sample index.
func Build(temps []float64, m fallrate.Model) Profile {
	p := make(Profile, len(temps))
	for i, t := range temps {
		p[i] = Point{Depth: m.DepthAt(i), Temperature: t}
	}
	return p
}

// Depths returns the depth component of p.
func (p Profile) Depths() []float64 {
	depths := make([]float64, len(p))
	for i := range p {
		depths[i] = p[i].Depth
	}
	return depths
}

// Temperatures returns the temperature component of p.
func (p Profile) Temperatures() []float64 {
	temps := make([]float64, len(p))
	for i := range p {
		temps[i] = p[i].Temperature
	}
	return temps
}

// MaxDepth is the depth of the last point, or zero for an empty profile.
func (p Profile) MaxDepth() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].Depth
}

func (pt Point) String() string {
	return fmt.Sprintf("%.2f m %.3f C", pt.Depth, pt.Temperature)
}
