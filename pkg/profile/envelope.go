package profile

import (
	"github.com/spencer-p/xbtdash/pkg/fallrate"
)

const (
	envelopeMinDepth  = 5
	envelopeTolerance = 0.15
	envelopeMaxTol    = 2.0
	envelopeGrowth    = 1.10
)

// EnvelopeInflections is the slope-envelope inflection detector used by
// older XBT processing tools. It walks the smoothed profile one meter at a
// time from 2m down to the tail depth, keeping a pair of limiting slopes
// that bracket every temperature seen since the last recorded point within
// a tolerance of q degrees. A point is recorded whenever the profile leaves
// that envelope.
//
// q starts at 0.15 degrees and grows by 10% until the points, plus one at
// the tail depth, fit under maxPoints. Consecutive points at the same depth
// are merged, and the middle of any three consecutive points whose
// temperatures round to the same tenth of a degree is dropped.
//
// Profiles shallower than 5m have no points.
func EnvelopeInflections(raw Profile, m fallrate.Model, maxPoints int) (Profile, error) {
	if raw.MaxDepth() < envelopeMinDepth {
		return Profile{}, nil
	}
	oneMeter, err := OneMeter(raw)
	if err != nil {
		return nil, err
	}
	env := envelope{
		smoothed: Smooth(raw),
		model:    m,
		tail:     TailDepth(oneMeter),
	}

	var points Profile
	for q := envelopeTolerance; q < envelopeMaxTol; q *= envelopeGrowth {
		points = env.scan(q)
		if len(points) == 0 {
			return points, nil
		}
		if len(points) < maxPoints {
			if t, ok := env.at(env.tail); ok {
				points = append(points, Point{Depth: float64(env.tail), Temperature: t})
			}
			return dropFlatMiddles(mergeDepths(points)), nil
		}
	}
	if len(points) > maxPoints {
		points = points[:maxPoints]
	}
	return points, nil
}

type envelope struct {
	smoothed []float64
	model    fallrate.Model
	tail     int
}

func (e envelope) at(depth int) (float64, bool) {
	return SmoothedAt(e.smoothed, e.model, float64(depth))
}

// scan performs one pass with tolerance q.
func (e envelope) scan(q float64) Profile {
	t1, ok := e.at(2)
	if !ok {
		return Profile{}
	}
	d1 := 2.0
	points := Profile{{Depth: d1, Temperature: t1}}

	t2, ok := e.at(3)
	if !ok {
		return points
	}
	right := (t2 - t1 + q) / (3 - d1)
	left := (t2 - t1 - q) / (3 - d1)

	reset := false
	for i := 4; i < e.tail; i++ {
		t2, ok := e.at(i)
		if !ok {
			break
		}
		d2 := float64(i)
		dt, dd := t2-t1, d2-d1
		if reset {
			right = (dt + q) / dd
			left = (dt - q) / dd
			reset = false
		}

		if slope := dt / dd; slope > right || slope < left {
			t1, d1 = t2, d2
			points = append(points, Point{Depth: d2, Temperature: t2})
			reset = true
			continue
		}

		if s := (dt + q) / dd; s < right {
			right = s
		}
		if s := (dt - q) / dd; s > left {
			left = s
		}
	}
	return points
}

func mergeDepths(points Profile) Profile {
	merged := make(Profile, 0, len(points))
	for _, p := range points {
		if n := len(merged); n > 0 && merged[n-1].Depth == p.Depth {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

func dropFlatMiddles(points Profile) Profile {
	flat := func(i int) bool {
		a := tenths(points[i].Temperature)
		return a == tenths(points[i+1].Temperature) && a == tenths(points[i+2].Temperature)
	}
	for i := 0; i+2 < len(points); i++ {
		for i+2 < len(points) && flat(i) {
			points = append(points[:i+1], points[i+2:]...)
		}
	}
	return points
}
