package profile

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// ErrDepthNotAscending is returned when a profile cannot be interpolated
// because its depths do not strictly increase. This only happens with
// pathological fall-rate coefficients.
var ErrDepthNotAscending = errors.New("profile depths are not strictly ascending")

// OneMeter linearly interpolates raw onto the depths 1, 2, ..., floor(d)
// where d is the depth of the last raw point. Depths shallower than the
// first raw point take its temperature.
func OneMeter(raw Profile) (Profile, error) {
	last := int(math.Floor(raw.MaxDepth()))
	if len(raw) == 0 || last <= 0 {
		return Profile{}, nil
	}

	result := make(Profile, last)
	if len(raw) == 1 {
		for i := range result {
			result[i] = Point{Depth: float64(i + 1), Temperature: raw[0].Temperature}
		}
		return result, nil
	}

	// PiecewiseLinear.Fit panics on unordered knots.
	for i := 1; i < len(raw); i++ {
		if !(raw[i].Depth > raw[i-1].Depth) {
			return nil, fmt.Errorf("%w: depth[%d] = %g, depth[%d] = %g",
				ErrDepthNotAscending, i-1, raw[i-1].Depth, i, raw[i].Depth)
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(raw.Depths(), raw.Temperatures()); err != nil {
		return nil, err
	}
	for i := range result {
		d := float64(i + 1)
		result[i] = Point{Depth: d, Temperature: pl.Predict(d)}
	}
	return result, nil
}

// TwoMeter subsamples a one meter profile onto even depths. A trailing odd
// meter is dropped.
func TwoMeter(oneMeter Profile) Profile {
	n := len(oneMeter) / 2
	result := make(Profile, n)
	for i := range result {
		result[i] = oneMeter[2*i+1]
	}
	return result
}
