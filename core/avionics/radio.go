package avionics

import "math"

// freqMatchMHz is the tuning tolerance when matching a station frequency.
const freqMatchMHz = 0.005

// CDI full-scale deflections. VOR scales are coarser than localizer ones.
const (
	vorFullScaleDeg = 10.0
	locFullScaleDeg = 2.5
	gsFullScaleDeg  = 0.7
)

// navRadio is one tunable VOR/ILS receiver.
type navRadio struct {
	cfg NavRadioConfig

	freqMHz      float64
	obsCourseDeg float64

	tuned      *NavStationConfig
	flagged    bool // no usable signal
	bearingDeg float64
	distanceNM float64
	radialDeg  float64

	cdiDeflection float64 // -1..1 of full scale
	gsDeviation   float64 // -1..1, ILS only
	gsValid       bool
}

// update retunes against the station database and recomputes deviations.
// Runs at the nav rate only.
func (r *navRadio) update(stations []NavStationConfig, lat, lon, altFt float64) {
	r.tuned = nil
	for i := range stations {
		if math.Abs(stations[i].FreqMHz-r.freqMHz) < freqMatchMHz {
			r.tuned = &stations[i]
			break
		}
	}

	r.flagged = true
	r.gsValid = false
	if r.tuned == nil {
		return
	}

	st := r.tuned
	r.distanceNM = greatCircleNM(lat, lon, st.LatDeg, st.LonDeg)
	if r.distanceNM > st.RangeNM {
		return
	}
	r.flagged = false

	r.bearingDeg = initialBearingDeg(lat, lon, st.LatDeg, st.LonDeg)
	r.radialDeg = normalizeDeg(initialBearingDeg(st.LatDeg, st.LonDeg, lat, lon))

	switch st.Kind {
	case StationVOR:
		// Deviation of the aircraft radial from the selected OBS course.
		err := angleDiffDeg(r.radialDeg, r.obsCourseDeg)
		r.cdiDeflection = clampF(err/vorFullScaleDeg, -1, 1)
	case StationILS:
		err := angleDiffDeg(r.radialDeg, normalizeDeg(st.CourseDeg+180))
		r.cdiDeflection = clampF(err/locFullScaleDeg, -1, 1)

		// Glideslope: actual elevation angle to the station against the
		// published path. Stations sit at field elevation zero in this
		// model, so altitude is height above the antenna.
		if r.distanceNM > 0.05 {
			angle := rad2deg(math.Atan2(altFt, r.distanceNM*6076.12))
			r.gsDeviation = clampF((angle-st.GlideslopeDeg)/gsFullScaleDeg, -1, 1)
			r.gsValid = true
		}
	}
}

// GPSState is the receiver acquisition phase.
type GPSState int

const (
	GPSAcquiring GPSState = iota
	GPSNavigating
)

func (s GPSState) String() string {
	switch s {
	case GPSAcquiring:
		return "ACQUIRING"
	case GPSNavigating:
		return "NAVIGATING"
	default:
		return "UNKNOWN"
	}
}

// gps models satellite acquisition, DOP-driven accuracy and the RAIM/WAAS
// availability gates.
type gps struct {
	cfg GPSConfig

	state          GPSState
	trackedSats    float64
	satellitesUsed int
	hdop           float64
	accuracyM      float64
	raimAvailable  bool
	waasAvailable  bool
}

// update ramps tracked satellites while acquiring and derives accuracy from
// the satellites in use. Runs at the nav rate only.
func (g *gps) update(dt float64, powered bool) {
	if !powered {
		g.state = GPSAcquiring
		g.trackedSats = 0
		g.satellitesUsed = 0
		g.raimAvailable = false
		g.waasAvailable = false
		g.hdop = 99
		g.accuracyM = 0
		return
	}

	g.trackedSats += g.cfg.AcquireSatsPerSec * dt
	if g.trackedSats > float64(g.cfg.MaxSatellites) {
		g.trackedSats = float64(g.cfg.MaxSatellites)
	}
	g.satellitesUsed = int(g.trackedSats)

	if g.satellitesUsed >= 4 {
		g.state = GPSNavigating
	} else {
		g.state = GPSAcquiring
	}

	// DOP and accuracy improve inversely with satellites in use.
	if g.satellitesUsed > 0 {
		g.hdop = float64(g.cfg.MaxSatellites) / float64(g.satellitesUsed)
		g.accuracyM = g.cfg.BaseAccuracyM * g.hdop
	} else {
		g.hdop = 99
		g.accuracyM = 0
	}

	g.raimAvailable = g.satellitesUsed >= g.cfg.RAIMMinSatellites
	g.waasAvailable = g.satellitesUsed >= g.cfg.WAASMinSatellites
}

// TransponderMode is the transponder operating mode.
type TransponderMode int

const (
	XpdrStandby TransponderMode = iota
	XpdrModeA
	XpdrModeC
	XpdrModeS
)

func (m TransponderMode) String() string {
	switch m {
	case XpdrStandby:
		return "STBY"
	case XpdrModeA:
		return "MODE A"
	case XpdrModeC:
		return "MODE C"
	case XpdrModeS:
		return "MODE S"
	default:
		return "UNKNOWN"
	}
}

type transponder struct {
	mode     TransponderMode
	code     int
	identSec float64 // remaining ident pulse time
	replying bool
}

func (x *transponder) update(dt float64, powered bool) {
	if x.identSec > 0 {
		x.identSec -= dt
		if x.identSec < 0 {
			x.identSec = 0
		}
	}
	x.replying = powered && x.mode != XpdrStandby
}
