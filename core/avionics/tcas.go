package avionics

import (
	"math"

	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// ThreatLevel classifies one TCAS contact.
type ThreatLevel int

const (
	ThreatNone ThreatLevel = iota
	ThreatTraffic
	ThreatResolution
)

func (l ThreatLevel) String() string {
	switch l {
	case ThreatNone:
		return "NONE"
	case ThreatTraffic:
		return "TA"
	case ThreatResolution:
		return "RA"
	default:
		return "UNKNOWN"
	}
}

// RASense is the commanded resolution direction, chosen opposite the
// intruder's relative altitude.
type RASense int

const (
	RANone RASense = iota
	RAClimb
	RADescend
)

func (s RASense) String() string {
	switch s {
	case RAClimb:
		return "CLIMB"
	case RADescend:
		return "DESCEND"
	default:
		return "NONE"
	}
}

// TrafficTarget is one externally supplied transponder contact.
type TrafficTarget struct {
	ID               string  `json:"id"`
	LatDeg           float64 `json:"lat_deg"`
	LonDeg           float64 `json:"lon_deg"`
	AltFt            float64 `json:"alt_ft"`
	TrackDeg         float64 `json:"track_deg"`
	GroundSpeedKts   float64 `json:"ground_speed_kts"`
	VerticalSpeedFPM float64 `json:"vertical_speed_fpm"`
}

// Advisory is one classified contact.
type Advisory struct {
	TargetID       string      `json:"target_id"`
	Level          ThreatLevel `json:"level"`
	RangeNM        float64     `json:"range_nm"`
	BearingDeg     float64     `json:"bearing_deg"`
	RelativeAltFt  float64     `json:"relative_alt_ft"`
	ClosureRateKts float64     `json:"closure_rate_kts"`
	TimeToCPASec   float64     `json:"time_to_cpa_sec"`
	Sense          RASense     `json:"sense"`
}

// tcas classifies traffic into advisories. Closure rate is computed from
// the relative horizontal velocity projected onto the line of sight.
type tcas struct {
	cfg TCASConfig

	targets    []TrafficTarget
	advisories []Advisory
}

// update reclassifies all targets. Runs at the nav rate only.
func (t *tcas) update(ac model.AircraftState) {
	t.advisories = t.advisories[:0]

	for _, tgt := range t.targets {
		rangeNM := greatCircleNM(ac.LatitudeDeg, ac.LongitudeDeg, tgt.LatDeg, tgt.LonDeg)
		bearing := initialBearingDeg(ac.LatitudeDeg, ac.LongitudeDeg, tgt.LatDeg, tgt.LonDeg)
		relAlt := tgt.AltFt - ac.AltitudeFt

		closure := closureRateKts(ac, tgt, bearing)
		tcpa := math.Inf(1)
		if closure > 0 {
			tcpa = rangeNM / closure * 3600
		}

		adv := Advisory{
			TargetID:       tgt.ID,
			Level:          ThreatNone,
			RangeNM:        rangeNM,
			BearingDeg:     bearing,
			RelativeAltFt:  relAlt,
			ClosureRateKts: closure,
			TimeToCPASec:   tcpa,
		}

		absAlt := math.Abs(relAlt)
		switch {
		case rangeNM < t.cfg.RARangeNM && absAlt < t.cfg.RAAltFt && tcpa < t.cfg.RATimeSec:
			adv.Level = ThreatResolution
			if relAlt > 0 {
				adv.Sense = RADescend
			} else {
				adv.Sense = RAClimb
			}
		case rangeNM < t.cfg.TARangeNM && absAlt < t.cfg.TAAltFt && tcpa < t.cfg.TATimeSec:
			adv.Level = ThreatTraffic
		}
		if adv.Level != ThreatNone {
			t.advisories = append(t.advisories, adv)
		}
	}
}

// closureRateKts projects own-ship and target horizontal velocities onto
// the line of sight; positive means converging.
func closureRateKts(ac model.AircraftState, tgt TrafficTarget, bearingDeg float64) float64 {
	losRad := deg2rad(bearingDeg)
	losX, losY := math.Sin(losRad), math.Cos(losRad)

	ownHdg := ac.HeadingRad
	ownX := ac.GroundSpeedKts * math.Sin(ownHdg)
	ownY := ac.GroundSpeedKts * math.Cos(ownHdg)

	tgtRad := deg2rad(tgt.TrackDeg)
	tgtX := tgt.GroundSpeedKts * math.Sin(tgtRad)
	tgtY := tgt.GroundSpeedKts * math.Cos(tgtRad)

	// Own velocity toward the target closes; target velocity along the
	// same line opens.
	return (ownX-tgtX)*losX + (ownY-tgtY)*losY
}

func (t *tcas) highestThreat() (Advisory, bool) {
	var best Advisory
	found := false
	for _, adv := range t.advisories {
		if !found || adv.Level > best.Level ||
			(adv.Level == best.Level && adv.RangeNM < best.RangeNM) {
			best = adv
			found = true
		}
	}
	return best, found
}
