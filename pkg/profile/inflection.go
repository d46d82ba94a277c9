package profile

import "math"

// Inflections finds the points of raw where the curvature of the
// depth-temperature curve changes sign. At most maxPoints points are
// returned, in order of increasing depth, and every one is a point of raw.
//
// Each run of three consecutive points gives a trailing and a leading slope
// (depth per degree) and an acceleration. A point is an inflection when the
// acceleration changes sign from the previous run and both slopes have the
// same sign; slopes of opposite sign mark a local extremum instead. Runs
// with a zero temperature step are skipped. A point whose temperature rounds
// to the same tenth of a degree as the previously recorded point is dropped.
func Inflections(raw Profile, maxPoints int) Profile {
	points := Profile{}
	var prevAccel float64

	for k := 0; k+2 < len(raw); k++ {
		p0, p1, p2 := raw[k], raw[k+1], raw[k+2]
		dD0 := p0.Depth - p1.Depth
		dD1 := p1.Depth - p2.Depth
		dT0 := p0.Temperature - p1.Temperature
		dT1 := p1.Temperature - p2.Temperature

		if dT0*dT1 == 0 {
			continue
		}

		slope0 := dD0 / dT0
		slope1 := dD1 / dT1
		accel := dD0/(dT0*dT0) - dD1/(dT0*dT1)

		if accel*prevAccel < 0 && slope0*slope1 > 0 && len(points) < maxPoints {
			points = append(points, p1)
			if n := len(points); n > 1 && tenths(points[n-1].Temperature) == tenths(points[n-2].Temperature) {
				points = points[:n-1]
			}
		}
		prevAccel = accel
	}
	return points
}

// tenths rounds a temperature to the nearest tenth of a degree, expressed in
// tenths.
func tenths(t float64) float64 {
	return math.Round(t * 10)
}
