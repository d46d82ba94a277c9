// Package data archives processed casts.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spencer-p/xbtdash/pkg/cast"
	"github.com/spencer-p/xbtdash/pkg/fallrate"
)

var (
	ErrNotFound     = errors.New("cast not found")
	ErrInvalidInput = errors.New("invalid cast record")
)

// Store archives cast records. Records are written once and never updated.
type Store interface {
	// Save assigns an id to rec if it has none and stores it.
	Save(ctx context.Context, rec *CastRecord) error
	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*CastRecord, error)
}

// CastRecord is an archived cast: its raw series and the fall-rate model it
// was processed with. Probe and Recorder are zero when the model was given
// directly.
type CastRecord struct {
	ID                  string `gorm:"primaryKey;type:uuid"`
	CreatedAt           time.Time
	Probe               int
	Recorder            int
	A, B                float64
	Frequency           float64
	MaxInflectionPoints int
	Samples             []Sample `gorm:"foreignKey:CastID;constraint:OnDelete:CASCADE"`
}

// Sample is one raw temperature reading of a cast.
type Sample struct {
	ID          uint   `gorm:"primaryKey"`
	CastID      string `gorm:"type:uuid;index"`
	Seq         int
	Temperature float64
}

// NewRecord describes c for archiving.
func NewRecord(c *cast.Cast, recorder, probe int) *CastRecord {
	m := c.Model()
	temps := c.Temperatures()
	rec := &CastRecord{
		Probe:               probe,
		Recorder:            recorder,
		A:                   m.A,
		B:                   m.B,
		Frequency:           m.Frequency,
		MaxInflectionPoints: c.MaxInflectionPoints(),
		Samples:             make([]Sample, len(temps)),
	}
	for i, t := range temps {
		rec.Samples[i] = Sample{Seq: i, Temperature: t}
	}
	return rec
}

// Cast rebuilds the cast the record describes.
func (r *CastRecord) Cast() (*cast.Cast, error) {
	m, err := fallrate.New(fallrate.Coefficients{A: r.A, B: r.B}, r.Frequency)
	if err != nil {
		return nil, err
	}
	return cast.NewWithModel(r.Temperatures(), m, cast.WithMaxInflectionPoints(r.MaxInflectionPoints)), nil
}

// Temperatures returns the raw series in sample order.
func (r *CastRecord) Temperatures() []float64 {
	temps := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		temps[i] = s.Temperature
	}
	return temps
}

// prepare assigns the record id and links and orders its samples.
func (r *CastRecord) prepare(now time.Time) error {
	if r == nil {
		return ErrInvalidInput
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if _, err := uuid.Parse(r.ID); err != nil {
		return ErrInvalidInput
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	for i := range r.Samples {
		r.Samples[i].CastID = r.ID
		r.Samples[i].Seq = i
	}
	return nil
}

func (r *CastRecord) clone() *CastRecord {
	c := *r
	c.Samples = append([]Sample(nil), r.Samples...)
	return &c
}
