package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/spencer-p/xbtdash/pkg/fallrate"
)

// maxHalfWindow is the widest median window half-width, giving an eleven
// sample window away from the ends of the series.
const maxHalfWindow = 5

// MedianSmooth median-filters the temperatures of raw. The final sample is
// left out of the series, and the first and last samples of what remains are
// never smoothed, so the result has len(raw)-3 values.
//
// Near the ends of the series the window shrinks so that it never reaches
// past either end.
func MedianSmooth(raw Profile) []float64 {
	if len(raw) < 2 {
		return []float64{}
	}
	temps := raw[:len(raw)-1].Temperatures()
	last := len(temps) - 1
	if last < 2 {
		return []float64{}
	}

	smoothed := make([]float64, 0, last-1)
	window := make([]float64, 0, 2*maxHalfWindow+1)
	for i := 1; i < last; i++ {
		half := halfWindow(i, last)
		window = append(window[:0], temps[i-half:i+half+1]...)
		sort.Float64s(window)
		smoothed = append(smoothed, stat.Quantile(0.5, stat.Empirical, window, nil))
	}
	return smoothed
}

// halfWindow picks the largest half-width, at most maxHalfWindow, for which
// [i-half, i+half] lies within [0, last].
func halfWindow(i, last int) int {
	for half := maxHalfWindow; half > 1; half-- {
		if i-half >= 0 && i+half <= last {
			return half
		}
	}
	return 1
}

// TrimTail removes the run of tail readings at the end of s. The first two
// values are always kept.
func TrimTail(s []float64) []float64 {
	end := len(s)
	for end > 2 && s[end-1] >= TailThreshold {
		end--
	}
	trimmed := make([]float64, end)
	copy(trimmed, s)
	return trimmed
}

// Smooth median-filters raw and trims its tail.
func Smooth(raw Profile) []float64 {
	return TrimTail(MedianSmooth(raw))
}

// TailDepth finds where the isothermal tail of a one meter profile begins,
// scanning upward from the bottom for the first step that is both above the
// tail and stable: the shallower reading is below TailThreshold and the
// temperature change is strictly between -0.2 and 0.1 degrees. It returns
// the index of the deeper point of that step, or len(oneMeter) if there is
// none.
func TailDepth(oneMeter Profile) int {
	for i := len(oneMeter) - 1; i >= 1; i-- {
		above := oneMeter[i-1].Temperature
		if above >= TailThreshold {
			continue
		}
		delta := oneMeter[i].Temperature - above
		if delta <= -0.2 || delta >= 0.1 {
			continue
		}
		return i
	}
	return len(oneMeter)
}

// SmoothedAt returns the smoothed temperature at depth. The fall time to
// depth is converted to a fractional position in the smoothed series using
// the recorder frequency, and the two neighbouring smoothed values are
// blended. ok is false when depth is shallower than 1m, the probe never
// reaches it, or it falls outside the smoothed series.
func SmoothedAt(smoothed []float64, m fallrate.Model, depth float64) (temp float64, ok bool) {
	if depth < 1 {
		return 0, false
	}
	t, ok := m.TimeAtDepth(depth)
	if !ok {
		return 0, false
	}

	pos, frac := math.Modf(t * m.Frequency)
	i := int(pos)
	if i < 1 || i > len(smoothed)-1 {
		return 0, false
	}
	lo, hi := smoothed[i-1], smoothed[i]
	return lo + (hi-lo)*frac, true
}
