// Package fallrate implements the XBT fall-rate equation, which converts the
// elapsed time of a sample into the depth the probe had reached when the
// sample was taken.
package fallrate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFrequency is returned when a sampling frequency is not a finite,
// positive number of Hertz.
var ErrInvalidFrequency = errors.New("sample frequency must be positive")

// Coefficients are the probe specific terms of the fall-rate equation
// depth = A*t + 0.001*B*t^2, with t in seconds and depth in meters.
type Coefficients struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Model computes sample depths for one cast. The zero value is not usable;
// construct one with New.
type Model struct {
	Coefficients
	// Frequency is the recorder sampling frequency in Hz.
	Frequency float64
}

// New validates the frequency and returns a Model.
func New(c Coefficients, frequency float64) (Model, error) {
	if math.IsNaN(frequency) || math.IsInf(frequency, 0) || frequency <= 0 {
		return Model{}, fmt.Errorf("%w: got %g Hz", ErrInvalidFrequency, frequency)
	}
	return Model{Coefficients: c, Frequency: frequency}, nil
}

// TimeAt returns the elapsed fall time of the sample at index i. The first
// sample is taken one sample period after the probe enters the water.
func (m Model) TimeAt(i int) float64 {
	return float64(i+1) / m.Frequency
}

// DepthAt returns the depth of the sample at index i.
func (m Model) DepthAt(i int) float64 {
	return m.depth(m.TimeAt(i))
}

// Depths returns the depths of the first n samples.
func (m Model) Depths(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	depths := make([]float64, n)
	for i := range depths {
		depths[i] = m.DepthAt(i)
	}
	return depths
}

// TimeAtDepth inverts the fall-rate equation, returning the fall time at
// which the probe reaches depth. ok is false if no non-negative real
// solution exists.
func (m Model) TimeAtDepth(depth float64) (t float64, ok bool) {
	a := 0.001 * m.B
	b := m.A
	c := -depth

	if a == 0 {
		if b == 0 {
			return 0, false
		}
		t = -c / b
		return t, t >= 0
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	t = (-b + math.Sqrt(disc)) / (2 * a)
	return t, t >= 0
}

func (m Model) depth(t float64) float64 {
	return m.A*t + 0.001*m.B*t*t
}
