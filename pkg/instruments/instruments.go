// Package instruments holds the static calibration tables that map WMO
// instrument codes to fall-rate coefficients (probes) and sampling
// frequencies (recorders).
package instruments

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spencer-p/xbtdash/pkg/fallrate"
)

var (
	ErrUnknownProbe    = errors.New("unknown probe type")
	ErrUnknownRecorder = errors.New("unknown recorder type")
)

// Probe is a WMO code table 1770 instrument type.
type Probe int

// Recorder is a WMO code table 4770 recorder type.
type Recorder int

const (
	SippicanT4          Probe = 1
	SippicanT4New       Probe = 2
	SippicanT5          Probe = 11
	SippicanFastDeep    Probe = 21
	SippicanT6          Probe = 31
	SippicanT6New       Probe = 32
	SippicanT7          Probe = 41
	SippicanT7New       Probe = 42
	SippicanDeepBlue    Probe = 51
	SippicanDeepBlueNew Probe = 52
	SippicanT10         Probe = 61
	SippicanT11         Probe = 71
	TSKT4               Probe = 201
	TSKT4New            Probe = 202
	TSKT6               Probe = 211
	TSKT6New            Probe = 212
	TSKT7               Probe = 221
	TSKT7New            Probe = 222
	TSKT5               Probe = 231
	TSKT10              Probe = 241
)

const (
	SippicanMK9     Recorder = 3
	SippicanMK12    Recorder = 5
	SippicanMK21    Recorder = 6
	SippicanMK21USB Recorder = 7
)

// ProbeInfo describes one row of the probe table.
type ProbeInfo struct {
	Code         Probe                 `json:"code"`
	Name         string                `json:"name"`
	Coefficients fallrate.Coefficients `json:"coefficients"`
}

var (
	hanawa = fallrate.Coefficients{A: 6.691, B: -2.25}
	legacy = fallrate.Coefficients{A: 6.472, B: -2.16}

	probes = map[Probe]ProbeInfo{
		SippicanT4:          {SippicanT4, "Sippican T-4", legacy},
		SippicanT4New:       {SippicanT4New, "Sippican T-4 (Hanawa 1995)", hanawa},
		SippicanT5:          {SippicanT5, "Sippican T-5", fallrate.Coefficients{A: 6.828, B: -1.82}},
		SippicanFastDeep:    {SippicanFastDeep, "Sippican Fast Deep", fallrate.Coefficients{A: 6.346, B: -1.82}},
		SippicanT6:          {SippicanT6, "Sippican T-6", legacy},
		SippicanT6New:       {SippicanT6New, "Sippican T-6 (Hanawa 1995)", hanawa},
		SippicanT7:          {SippicanT7, "Sippican T-7", legacy},
		SippicanT7New:       {SippicanT7New, "Sippican T-7 (Hanawa 1995)", hanawa},
		SippicanDeepBlue:    {SippicanDeepBlue, "Sippican Deep Blue", legacy},
		SippicanDeepBlueNew: {SippicanDeepBlueNew, "Sippican Deep Blue (Hanawa 1995)", hanawa},
		SippicanT10:         {SippicanT10, "Sippican T-10", fallrate.Coefficients{A: 6.301, B: -2.16}},
		SippicanT11:         {SippicanT11, "Sippican T-11", fallrate.Coefficients{A: 1.779, B: -0.255}},
		TSKT4:               {TSKT4, "TSK T-4", legacy},
		TSKT4New:            {TSKT4New, "TSK T-4 (Hanawa 1995)", hanawa},
		TSKT6:               {TSKT6, "TSK T-6", legacy},
		TSKT6New:            {TSKT6New, "TSK T-6 (Hanawa 1995)", hanawa},
		TSKT7:               {TSKT7, "TSK T-7", legacy},
		TSKT7New:            {TSKT7New, "TSK T-7 (Hanawa 1995)", hanawa},
		TSKT5:               {TSKT5, "TSK T-5", fallrate.Coefficients{A: 6.828, B: -1.82}},
		TSKT10:              {TSKT10, "TSK T-10", fallrate.Coefficients{A: 6.301, B: -2.16}},
	}

	// All supported recorders sample at 10 Hz.
	recorders = map[Recorder]float64{
		SippicanMK9:     10,
		SippicanMK12:    10,
		SippicanMK21:    10,
		SippicanMK21USB: 10,
	}
)

// ResolveCoefficients looks up the fall-rate coefficients of a probe.
func ResolveCoefficients(p Probe) (fallrate.Coefficients, error) {
	info, ok := probes[p]
	if !ok {
		return fallrate.Coefficients{}, fmt.Errorf("%w: %03d", ErrUnknownProbe, int(p))
	}
	return info.Coefficients, nil
}

// ResolveSampleFrequency looks up the sampling frequency of a recorder in Hz.
func ResolveSampleFrequency(r Recorder) (float64, error) {
	f, ok := recorders[r]
	if !ok {
		return 0, fmt.Errorf("%w: %02d", ErrUnknownRecorder, int(r))
	}
	return f, nil
}

// Model resolves both codes into a fall-rate model.
func Model(r Recorder, p Probe) (fallrate.Model, error) {
	f, err := ResolveSampleFrequency(r)
	if err != nil {
		return fallrate.Model{}, err
	}
	c, err := ResolveCoefficients(p)
	if err != nil {
		return fallrate.Model{}, err
	}
	return fallrate.New(c, f)
}

// Probes lists the probe table ordered by code.
func Probes() []ProbeInfo {
	result := make([]ProbeInfo, 0, len(probes))
	for _, info := range probes {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result
}

func (p Probe) String() string {
	if info, ok := probes[p]; ok {
		return info.Name
	}
	return fmt.Sprintf("probe(%03d)", int(p))
}
