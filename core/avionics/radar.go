package avionics

import (
	"math"

	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// WeatherCell is one externally supplied precipitation cell.
type WeatherCell struct {
	ID        string  `json:"id"`
	LatDeg    float64 `json:"lat_deg"`
	LonDeg    float64 `json:"lon_deg"`
	RadiusNM  float64 `json:"radius_nm"`
	Intensity int     `json:"intensity"` // 1 green, 2 yellow, 3 red
}

// RadarReturn is one painted cell, relative to own ship.
type RadarReturn struct {
	CellID             string  `json:"cell_id"`
	RelativeBearingDeg float64 `json:"relative_bearing_deg"`
	DistanceNM         float64 `json:"distance_nm"`
	Intensity          int     `json:"intensity"`
}

// weatherRadar sweeps an antenna back and forth across the nose and paints
// cells the beam passes over. Paint persists until the beam crosses the
// cell's bearing again with nothing there.
type weatherRadar struct {
	cfg RadarConfig

	operating bool
	sweepDeg  float64 // relative bearing of the beam
	sweepDir  float64 // +1 right, -1 left

	cells   []WeatherCell
	returns map[string]RadarReturn
}

func newWeatherRadar(cfg RadarConfig) *weatherRadar {
	return &weatherRadar{cfg: cfg, sweepDir: 1, returns: make(map[string]RadarReturn)}
}

// update advances the sweep and repaints anything inside the swath covered
// this sub-update. Runs at the radar rate only.
func (w *weatherRadar) update(dt float64, ac model.AircraftState, powered bool) {
	w.operating = powered
	if !powered {
		w.sweepDeg = 0
		for id := range w.returns {
			delete(w.returns, id)
		}
		return
	}

	from := w.sweepDeg
	w.sweepDeg += w.sweepDir * w.cfg.SweepDegPerSec * dt
	if w.sweepDeg > w.cfg.SweepLimitDeg {
		w.sweepDeg = w.cfg.SweepLimitDeg
		w.sweepDir = -1
	} else if w.sweepDeg < -w.cfg.SweepLimitDeg {
		w.sweepDeg = -w.cfg.SweepLimitDeg
		w.sweepDir = 1
	}
	lo := math.Min(from, w.sweepDeg) - w.cfg.BeamWidthDeg
	hi := math.Max(from, w.sweepDeg) + w.cfg.BeamWidthDeg

	headingDeg := normalizeDeg(rad2deg(ac.HeadingRad))
	for _, cell := range w.cells {
		dist := greatCircleNM(ac.LatitudeDeg, ac.LongitudeDeg, cell.LatDeg, cell.LonDeg)
		relBearing := angleDiffDeg(
			initialBearingDeg(ac.LatitudeDeg, ac.LongitudeDeg, cell.LatDeg, cell.LonDeg),
			headingDeg)

		swathHit := relBearing >= lo && relBearing <= hi
		if !swathHit {
			continue
		}
		if dist-cell.RadiusNM > w.cfg.RangeNM {
			delete(w.returns, cell.ID)
			continue
		}
		w.returns[cell.ID] = RadarReturn{
			CellID:             cell.ID,
			RelativeBearingDeg: relBearing,
			DistanceNM:         dist,
			Intensity:          cell.Intensity,
		}
	}
}
