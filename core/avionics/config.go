package avionics

import (
	"errors"
	"fmt"
)

var (
	ErrConfigInvalid   = errors.New("invalid avionics configuration")
	ErrUnknownEntity   = errors.New("unknown avionics entity")
	ErrDuplicateEntity = errors.New("duplicate avionics entity")
	ErrNoFlightPlan    = errors.New("no flight plan loaded")
)

// StationKind distinguishes ground navigation stations.
type StationKind int

const (
	StationVOR StationKind = iota
	StationILS
)

func (k StationKind) String() string {
	switch k {
	case StationVOR:
		return "VOR"
	case StationILS:
		return "ILS"
	default:
		return "unknown"
	}
}

// RatesConfig fixes the sub-update rates. Each component runs off its own
// accumulator inside one tick call.
type RatesConfig struct {
	FMSHz       float64
	AutopilotHz float64
	NavHz       float64
	RadarHz     float64
}

// BusesConfig names the electrical buses gating each component.
type BusesConfig struct {
	FMS         string
	Autopilot   string
	Nav         string
	Radar       string
	TCAS        string
	Transponder string
}

// AutopilotConfig carries the envelope limits. Exceeding a limit appends a
// warning; it never disengages the autopilot.
type AutopilotConfig struct {
	MaxBankDeg    float64
	MaxClimbFPM   float64
	MaxDescentFPM float64

	// Proportional gains from error to commanded bank / vertical speed.
	BankDegPerHdgErrDeg float64
	VSFPMPerAltErrFt    float64
}

// NavRadioConfig declares one tunable nav receiver.
type NavRadioConfig struct {
	Name string
}

// NavStationConfig is one ground station in the receiver database.
type NavStationConfig struct {
	Ident   string
	Kind    StationKind
	FreqMHz float64
	LatDeg  float64
	LonDeg  float64

	// ILS only.
	CourseDeg     float64
	GlideslopeDeg float64

	RangeNM float64
}

// GPSConfig sizes the receiver acquisition and accuracy model.
type GPSConfig struct {
	MaxSatellites     int
	AcquireSatsPerSec float64
	BaseAccuracyM     float64
	RAIMMinSatellites int
	WAASMinSatellites int
}

// TCASConfig fixes the advisory thresholds. Resolution thresholds must sit
// inside the traffic thresholds.
type TCASConfig struct {
	TARangeNM float64
	TAAltFt   float64
	TATimeSec float64
	RARangeNM float64
	RAAltFt   float64
	RATimeSec float64
}

// RadarConfig sizes the weather radar sweep.
type RadarConfig struct {
	RangeNM        float64
	SweepDegPerSec float64
	SweepLimitDeg  float64
	BeamWidthDeg   float64
}

// Config assembles the avionics suite.
type Config struct {
	Rates     RatesConfig
	Buses     BusesConfig
	Autopilot AutopilotConfig
	NavRadios []NavRadioConfig
	Stations  []NavStationConfig
	GPS       GPSConfig
	TCAS      TCASConfig
	Radar     RadarConfig
}

// Validate fails fast on malformed rates and thresholds.
func (c Config) Validate() error {
	r := c.Rates
	if r.FMSHz <= 0 || r.AutopilotHz <= 0 || r.NavHz <= 0 || r.RadarHz <= 0 {
		return fmt.Errorf("%w: all update rates must be positive", ErrConfigInvalid)
	}
	if c.Autopilot.MaxBankDeg <= 0 || c.Autopilot.MaxClimbFPM <= 0 || c.Autopilot.MaxDescentFPM <= 0 {
		return fmt.Errorf("%w: autopilot limits must be positive", ErrConfigInvalid)
	}

	radioNames := make(map[string]bool, len(c.NavRadios))
	for _, rc := range c.NavRadios {
		if rc.Name == "" {
			return fmt.Errorf("%w: nav radio with empty name", ErrConfigInvalid)
		}
		if radioNames[rc.Name] {
			return fmt.Errorf("%w: nav radio %q", ErrDuplicateEntity, rc.Name)
		}
		radioNames[rc.Name] = true
	}
	stationIdents := make(map[string]bool, len(c.Stations))
	for _, sc := range c.Stations {
		if sc.Ident == "" {
			return fmt.Errorf("%w: station with empty ident", ErrConfigInvalid)
		}
		if stationIdents[sc.Ident] {
			return fmt.Errorf("%w: station %q", ErrDuplicateEntity, sc.Ident)
		}
		stationIdents[sc.Ident] = true
		if sc.FreqMHz <= 0 || sc.RangeNM <= 0 {
			return fmt.Errorf("%w: station %q needs a positive frequency and range", ErrConfigInvalid, sc.Ident)
		}
	}

	if c.GPS.MaxSatellites < 4 {
		return fmt.Errorf("%w: GPS needs at least 4 satellites to ever navigate", ErrConfigInvalid)
	}

	t := c.TCAS
	if t.TARangeNM <= 0 || t.TAAltFt <= 0 || t.TATimeSec <= 0 {
		return fmt.Errorf("%w: TCAS traffic thresholds must be positive", ErrConfigInvalid)
	}
	if t.RARangeNM >= t.TARangeNM || t.RAAltFt >= t.TAAltFt || t.RATimeSec >= t.TATimeSec {
		return fmt.Errorf("%w: resolution thresholds must sit inside traffic thresholds", ErrConfigInvalid)
	}

	if c.Radar.RangeNM <= 0 || c.Radar.SweepDegPerSec <= 0 || c.Radar.SweepLimitDeg <= 0 {
		return fmt.Errorf("%w: radar sweep parameters must be positive", ErrConfigInvalid)
	}
	return nil
}
