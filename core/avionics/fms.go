package avionics

import "math"

// waypointSequenceNM is the sequencing distance: the FMS advances to the
// next leg once the active waypoint is closer than this.
const waypointSequenceNM = 0.1

// Waypoint is one fix in the lateral/vertical flight plan.
type Waypoint struct {
	Ident  string  `json:"ident"`
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltFt  float64 `json:"alt_ft"`
}

// fms holds the flight-management state: the loaded plan plus the lateral
// and vertical guidance derived from it every FMS sub-update.
type fms struct {
	plan        []Waypoint
	activeIndex int
	powered     bool

	// Lateral guidance.
	bearingDeg      float64
	distanceNM      float64
	crossTrackNM    float64
	desiredTrackDeg float64

	// Vertical guidance.
	requiredVSFPM     float64
	pathDeviationFt   float64
	timeToWaypointSec float64

	planComplete bool
}

func (f *fms) activeWaypoint() (Waypoint, bool) {
	if f.activeIndex < 0 || f.activeIndex >= len(f.plan) {
		return Waypoint{}, false
	}
	return f.plan[f.activeIndex], true
}

// update recomputes lateral and vertical guidance and sequences the active
// waypoint. Runs at the FMS rate only.
func (f *fms) update(lat, lon, altFt, groundSpeedKts float64) {
	wpt, ok := f.activeWaypoint()
	if !ok {
		f.requiredVSFPM = 0
		f.pathDeviationFt = 0
		return
	}

	f.distanceNM = greatCircleNM(lat, lon, wpt.LatDeg, wpt.LonDeg)
	f.bearingDeg = initialBearingDeg(lat, lon, wpt.LatDeg, wpt.LonDeg)
	f.desiredTrackDeg = f.bearingDeg

	// Cross-track error against the current leg. The first leg has no
	// origin waypoint, so cross-track is zero by definition.
	f.crossTrackNM = 0
	if f.activeIndex > 0 {
		prev := f.plan[f.activeIndex-1]
		f.crossTrackNM = crossTrackNM(prev.LatDeg, prev.LonDeg, wpt.LatDeg, wpt.LonDeg, lat, lon)
	}

	// Vertical path: required VS to meet the waypoint altitude, and the
	// deviation from the linear altitude profile along the leg.
	f.requiredVSFPM = 0
	f.timeToWaypointSec = 0
	if groundSpeedKts > 1 {
		f.timeToWaypointSec = f.distanceNM / groundSpeedKts * 3600
		if f.timeToWaypointSec > 1 {
			f.requiredVSFPM = (wpt.AltFt - altFt) / (f.timeToWaypointSec / 60)
		}
	}

	f.pathDeviationFt = 0
	if f.activeIndex > 0 {
		prev := f.plan[f.activeIndex-1]
		legNM := greatCircleNM(prev.LatDeg, prev.LonDeg, wpt.LatDeg, wpt.LonDeg)
		if legNM > 0.01 {
			frac := 1 - f.distanceNM/legNM
			frac = math.Max(0, math.Min(1, frac))
			optimal := prev.AltFt + frac*(wpt.AltFt-prev.AltFt)
			f.pathDeviationFt = altFt - optimal
		}
	}

	// Sequence to the next leg close-in; the final waypoint is held.
	if f.distanceNM < waypointSequenceNM {
		if f.activeIndex < len(f.plan)-1 {
			f.activeIndex++
		} else {
			f.planComplete = true
		}
	}
}
