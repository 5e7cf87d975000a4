package avionics

import (
	"math"
	"testing"

	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

func testConfig() Config {
	return Config{
		Rates: RatesConfig{FMSHz: 10, AutopilotHz: 50, NavHz: 20, RadarHz: 5},
		Buses: BusesConfig{
			FMS:         "AVIO-BUS",
			Autopilot:   "AVIO-BUS",
			Nav:         "AVIO-BUS",
			Radar:       "AVIO-BUS",
			TCAS:        "AVIO-BUS",
			Transponder: "AVIO-BUS",
		},
		Autopilot: AutopilotConfig{
			MaxBankDeg:          25,
			MaxClimbFPM:         4000,
			MaxDescentFPM:       3000,
			BankDegPerHdgErrDeg: 1.0,
			VSFPMPerAltErrFt:    5.0,
		},
		NavRadios: []NavRadioConfig{{Name: "NAV1"}, {Name: "NAV2"}},
		Stations: []NavStationConfig{
			{Ident: "SFO", Kind: StationVOR, FreqMHz: 115.8, LatDeg: 37.6189, LonDeg: -122.3750, RangeNM: 130},
			{Ident: "ISFO", Kind: StationILS, FreqMHz: 109.5, LatDeg: 37.6, LonDeg: -122.36, CourseDeg: 281, GlideslopeDeg: 3.0, RangeNM: 25},
		},
		GPS: GPSConfig{
			MaxSatellites:     12,
			AcquireSatsPerSec: 0.5,
			BaseAccuracyM:     5,
			RAIMMinSatellites: 5,
			WAASMinSatellites: 6,
		},
		TCAS: TCASConfig{
			TARangeNM: 6, TAAltFt: 1200, TATimeSec: 48,
			RARangeNM: 0.75, RAAltFt: 600, RATimeSec: 25,
		},
		Radar: RadarConfig{RangeNM: 80, SweepDegPerSec: 60, SweepLimitDeg: 60, BeamWidthDeg: 4},
	}
}

func avioPowered() model.ElectricalStatus {
	return model.ElectricalStatus{Buses: []model.BusStatus{
		{Name: "AVIO-BUS", Powered: true, Voltage: 28},
	}}
}

func avioDark() model.ElectricalStatus {
	return model.ElectricalStatus{Buses: []model.BusStatus{{Name: "AVIO-BUS"}}}
}

func cruising(lat, lon, altFt, headingDeg, gsKts float64) model.AircraftState {
	return model.AircraftState{
		LatitudeDeg:    lat,
		LongitudeDeg:   lon,
		AltitudeFt:     altFt,
		HeadingRad:     headingDeg * math.Pi / 180,
		AirspeedKts:    gsKts,
		GroundSpeedKts: gsKts,
		Engines:        []model.EngineState{{N2: 95}, {N2: 95}},
		AmbientTempC:   -40,
	}
}

func hasAlert(alerts []model.Alert, id string) bool {
	for _, a := range alerts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// TestRateAccumulatorsGateSubUpdates checks a 10 Hz component holds its
// state until 100 ms have accumulated, then fires once.
func TestRateAccumulatorsGateSubUpdates(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetFlightPlan([]Waypoint{{Ident: "WPT", LatDeg: 38, LonDeg: -122}}); err != nil {
		t.Fatalf("SetFlightPlan: %v", err)
	}

	ac := cruising(37, -122, 10000, 0, 300)
	s.Update(50, ac, avioPowered())
	if d := s.DisplayData().FMS.DistanceNM; d != 0 {
		t.Fatalf("FMS computed distance %.1f nm before its interval elapsed", d)
	}
	s.Update(50, ac, avioPowered())
	if d := s.DisplayData().FMS.DistanceNM; d == 0 {
		t.Fatalf("FMS did not fire once its interval elapsed")
	}
}

// TestFMSWaypointSequencing places the aircraft on top of the first fix and
// verifies the FMS sequences to the next leg, then flags route completion
// at the final fix.
func TestFMSWaypointSequencing(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plan := []Waypoint{
		{Ident: "ALPHA", LatDeg: 37, LonDeg: -122, AltFt: 10000},
		{Ident: "BRAVO", LatDeg: 38, LonDeg: -122, AltFt: 10000},
	}
	if err := s.SetFlightPlan(plan); err != nil {
		t.Fatalf("SetFlightPlan: %v", err)
	}

	s.Update(100, cruising(37, -122, 10000, 0, 300), avioPowered())
	if idx := s.DisplayData().FMS.ActiveIndex; idx != 1 {
		t.Fatalf("active waypoint index = %d on top of the first fix, want 1", idx)
	}

	s.Update(100, cruising(37, -122, 10000, 0, 300), avioPowered())
	d := s.DisplayData().FMS
	if math.Abs(d.DistanceNM-60) > 1 {
		t.Fatalf("distance to BRAVO = %.1f nm, want about 60", d.DistanceNM)
	}
	if d.BearingDeg > 1 && d.BearingDeg < 359 {
		t.Fatalf("bearing to BRAVO = %.1f°, want due north", d.BearingDeg)
	}

	s.Update(100, cruising(38, -122, 10000, 0, 300), avioPowered())
	if !s.DisplayData().FMS.PlanComplete {
		t.Fatalf("plan not complete on top of the final fix")
	}
	if !hasAlert(s.Alerts(), "av.fms.planend") {
		t.Fatalf("no end-of-route advisory")
	}
}

// TestFMSCrossTrackAndVNAV verifies the signed cross-track error off a
// northbound leg and the required vertical speed toward the fix altitude.
func TestFMSCrossTrackAndVNAV(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plan := []Waypoint{
		{Ident: "ALPHA", LatDeg: 37, LonDeg: -122, AltFt: 10000},
		{Ident: "BRAVO", LatDeg: 38, LonDeg: -122, AltFt: 20000},
	}
	if err := s.SetFlightPlan(plan); err != nil {
		t.Fatalf("SetFlightPlan: %v", err)
	}
	if err := s.DirectTo(1); err != nil {
		t.Fatalf("DirectTo: %v", err)
	}

	// Mid-leg, displaced east of course at 10,000 ft doing 300 kts.
	s.Update(100, cruising(37.5, -121.9, 10000, 0, 300), avioPowered())
	d := s.DisplayData().FMS

	if d.CrossTrackNM < 4 || d.CrossTrackNM > 5.5 {
		t.Fatalf("cross-track = %.2f nm east of a northbound leg, want about 4.8 right", d.CrossTrackNM)
	}
	if d.RequiredVSFPM < 1500 || d.RequiredVSFPM > 1800 {
		t.Fatalf("required VS = %.0f FPM for 10,000 ft over 30 nm at 300 kts, want about 1650", d.RequiredVSFPM)
	}
	if d.PathDeviationFt > -4000 {
		t.Fatalf("path deviation = %.0f ft below a climbing profile, want under -4000", d.PathDeviationFt)
	}
}

// TestAutopilotLimitsWarnWithoutDisengaging commands errors beyond the bank
// and vertical-speed limits and checks the cues clamp, warnings raise and
// the autopilot stays engaged.
func TestAutopilotLimitsWarnWithoutDisengaging(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.EngageAutopilot(true)
	s.SetLateralMode(LatHeading)
	s.SetHeadingBug(90)
	s.SetVerticalMode(VertVS)
	s.SetTargetVS(5000)

	s.Update(1000, cruising(37, -122, 10000, 0, 300), avioPowered())
	d := s.DisplayData().Autopilot

	if !d.Engaged {
		t.Fatalf("autopilot disengaged by a limit violation")
	}
	if d.CommandedBankDeg != 25 {
		t.Fatalf("commanded bank = %.1f°, want clamp at 25", d.CommandedBankDeg)
	}
	if d.CommandedVSFPM != 4000 {
		t.Fatalf("commanded VS = %.0f FPM, want clamp at 4000", d.CommandedVSFPM)
	}
	if !hasAlert(s.Alerts(), "av.ap.bank.limit") || !hasAlert(s.Alerts(), "av.ap.vs.limit") {
		t.Fatalf("limit warnings missing: %v", s.Alerts())
	}
}

// TestArmedLNAVCapturesWhenPlanLoads arms LNAV with no plan, then loads one
// and verifies the mode activates and pulls the FMS track.
func TestArmedLNAVCapturesWhenPlanLoads(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.EngageAutopilot(true)
	s.ArmLateralMode(LatLNAV)

	s.Update(1000, cruising(37, -122, 10000, 0, 300), avioPowered())
	d := s.DisplayData().Autopilot
	if d.LateralMode != "OFF" || len(d.ArmedLateral) != 1 {
		t.Fatalf("armed LNAV activated with no flight plan: mode %s armed %v", d.LateralMode, d.ArmedLateral)
	}

	// Waypoint due east: desired track 90, own heading north.
	if err := s.SetFlightPlan([]Waypoint{{Ident: "EAST", LatDeg: 37, LonDeg: -121, AltFt: 10000}}); err != nil {
		t.Fatalf("SetFlightPlan: %v", err)
	}
	s.Update(1000, cruising(37, -122, 10000, 0, 300), avioPowered())
	d = s.DisplayData().Autopilot
	if d.LateralMode != "LNAV" {
		t.Fatalf("lateral mode = %s after plan load, want LNAV", d.LateralMode)
	}
	if len(d.ArmedLateral) != 0 {
		t.Fatalf("LNAV still armed after activation: %v", d.ArmedLateral)
	}
	if d.CommandedBankDeg != 25 {
		t.Fatalf("commanded bank = %.1f° turning toward an eastbound track, want clamp at 25", d.CommandedBankDeg)
	}
}

// TestGPSAcquisitionAndIntegrityGates ramps satellite acquisition and checks
// the acquiring/navigating transition at 4 satellites, the RAIM and WAAS
// gates, and DOP-scaled accuracy at full constellation.
func TestGPSAcquisitionAndIntegrityGates(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ac := cruising(37, -122, 10000, 0, 300)

	for i := 0; i < 7; i++ {
		s.Update(1000, ac, avioPowered())
	}
	d := s.DisplayData().GPS
	if d.State != "ACQUIRING" || d.SatellitesUsed != 3 {
		t.Fatalf("after 7 s: state %s with %d satellites, want ACQUIRING with 3", d.State, d.SatellitesUsed)
	}

	s.Update(1000, ac, avioPowered())
	d = s.DisplayData().GPS
	if d.State != "NAVIGATING" || d.SatellitesUsed != 4 {
		t.Fatalf("after 8 s: state %s with %d satellites, want NAVIGATING with 4", d.State, d.SatellitesUsed)
	}
	if d.RAIMAvailable {
		t.Fatalf("RAIM available with 4 satellites, gate is 5")
	}
	if !hasAlert(s.Alerts(), "av.gps.noraim") {
		t.Fatalf("no RAIM advisory while navigating without integrity")
	}

	for i := 0; i < 16; i++ {
		s.Update(1000, ac, avioPowered())
	}
	d = s.DisplayData().GPS
	if !d.RAIMAvailable || !d.WAASAvailable {
		t.Fatalf("RAIM/WAAS unavailable at full constellation")
	}
	if d.SatellitesUsed != 12 || d.HDOP != 1 || d.AccuracyM != 5 {
		t.Fatalf("full constellation: %d sats, HDOP %.1f, accuracy %.1f m; want 12, 1, 5",
			d.SatellitesUsed, d.HDOP, d.AccuracyM)
	}
	if hasAlert(s.Alerts(), "av.gps.noraim") {
		t.Fatalf("RAIM advisory still active with integrity available")
	}
}

// TestVORTuningAndCDI tunes a VOR, checks the radial and the proportional
// CDI deflection against the OBS course, and the off-frequency flag.
func TestVORTuningAndCDI(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.TuneNavRadio("NAV1", 115.8); err != nil {
		t.Fatalf("TuneNavRadio: %v", err)
	}
	if err := s.SetOBSCourse("NAV1", 180); err != nil {
		t.Fatalf("SetOBSCourse: %v", err)
	}

	// One degree of latitude due south of the station: on the 180 radial.
	ac := cruising(36.6189, -122.3750, 8000, 0, 300)
	s.Update(1000, ac, avioPowered())
	d := s.DisplayData().NavRadios[0]
	if d.Flagged || d.TunedIdent != "SFO" {
		t.Fatalf("receiver flagged or mistuned: %+v", d)
	}
	if math.Abs(d.RadialDeg-180) > 0.5 {
		t.Fatalf("radial = %.1f°, want 180", d.RadialDeg)
	}
	if math.Abs(d.CDIDeflection) > 0.05 {
		t.Fatalf("CDI = %.2f on course, want centered", d.CDIDeflection)
	}

	if err := s.SetOBSCourse("NAV1", 170); err != nil {
		t.Fatalf("SetOBSCourse: %v", err)
	}
	s.Update(1000, ac, avioPowered())
	if d := s.DisplayData().NavRadios[0]; d.CDIDeflection != 1 {
		t.Fatalf("CDI = %.2f with a 10° course error, want full right deflection", d.CDIDeflection)
	}

	if err := s.TuneNavRadio("NAV1", 111.1); err != nil {
		t.Fatalf("TuneNavRadio: %v", err)
	}
	s.Update(1000, ac, avioPowered())
	if d := s.DisplayData().NavRadios[0]; !d.Flagged {
		t.Fatalf("receiver not flagged on an untuned frequency")
	}
}

// TestTCASClassifiesTrafficAndResolution checks the TA and RA threshold
// sets, the computed head-on closure rate, and the resolution sense chosen
// opposite the intruder's relative altitude.
func TestTCASClassifiesTrafficAndResolution(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	own := cruising(37, -122, 10000, 0, 450)

	// Head-on target 5 nm ahead, 500 ft above: inside TA, outside RA.
	s.SetTraffic([]TrafficTarget{{
		ID: "N123", LatDeg: 37 + 5.0/60, LonDeg: -122, AltFt: 10500,
		TrackDeg: 180, GroundSpeedKts: 450,
	}})
	s.Update(1000, own, avioPowered())
	adv := s.DisplayData().TCAS.Advisories
	if len(adv) != 1 || adv[0].Level != ThreatTraffic {
		t.Fatalf("advisories = %+v, want one traffic advisory", adv)
	}
	if math.Abs(adv[0].ClosureRateKts-900) > 1 {
		t.Fatalf("closure rate = %.0f kts head-on at 450 each, want 900", adv[0].ClosureRateKts)
	}
	if !hasAlert(s.Alerts(), "av.tcas.ta") {
		t.Fatalf("no traffic alert for a TA contact")
	}

	// Half a mile ahead, 300 ft above: resolution advisory, descend.
	s.SetTraffic([]TrafficTarget{{
		ID: "N123", LatDeg: 37 + 0.5/60, LonDeg: -122, AltFt: 10300,
		TrackDeg: 180, GroundSpeedKts: 450,
	}})
	s.Update(1000, own, avioPowered())
	adv = s.DisplayData().TCAS.Advisories
	if len(adv) != 1 || adv[0].Level != ThreatResolution {
		t.Fatalf("advisories = %+v, want one resolution advisory", adv)
	}
	if adv[0].Sense != RADescend {
		t.Fatalf("RA sense = %s against an intruder 300 ft above, want DESCEND", adv[0].Sense)
	}
	if !hasAlert(s.Alerts(), "av.tcas.ra") {
		t.Fatalf("no resolution alert for an RA contact")
	}
}

// TestTCASRAEnvelopeInsideTAEnvelope walks a head-on target inward and
// verifies a traffic advisory always precedes the resolution advisory.
func TestTCASRAEnvelopeInsideTAEnvelope(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	own := cruising(37, -122, 10000, 0, 450)

	sawTA := false
	sawRA := false
	for r := 8.0; r >= 0.3; r -= 0.25 {
		s.SetTraffic([]TrafficTarget{{
			ID: "N123", LatDeg: 37 + r/60, LonDeg: -122, AltFt: 10300,
			TrackDeg: 180, GroundSpeedKts: 450,
		}})
		s.Update(1000, own, avioPowered())
		for _, adv := range s.DisplayData().TCAS.Advisories {
			switch adv.Level {
			case ThreatTraffic:
				sawTA = true
			case ThreatResolution:
				if !sawTA {
					t.Fatalf("resolution advisory at %.2f nm with no earlier traffic advisory", r)
				}
				sawRA = true
			}
		}
	}
	if !sawTA || !sawRA {
		t.Fatalf("inbound target produced TA=%v RA=%v, want both", sawTA, sawRA)
	}
}

// TestTransponderModesAndIdent checks reply gating by mode and the timed
// ident pulse.
func TestTransponderModesAndIdent(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ac := cruising(37, -122, 10000, 0, 300)

	s.Update(1000, ac, avioPowered())
	if s.DisplayData().Transponder.Replying {
		t.Fatalf("transponder replying in standby")
	}

	if err := s.SetTransponder(XpdrModeC, 0o4321); err != nil {
		t.Fatalf("SetTransponder: %v", err)
	}
	s.IdentTransponder()
	s.Update(1000, ac, avioPowered())
	d := s.DisplayData().Transponder
	if !d.Replying || !d.Ident {
		t.Fatalf("transponder not replying/identing in mode C: %+v", d)
	}

	for i := 0; i < 20; i++ {
		s.Update(1000, ac, avioPowered())
	}
	if s.DisplayData().Transponder.Ident {
		t.Fatalf("ident pulse still active after 20 s")
	}

	if err := s.SetTransponder(XpdrModeC, 0o10000); err == nil {
		t.Fatalf("SetTransponder accepted an out-of-range squawk code")
	}
}

// TestWeatherRadarPaintsCellsAcrossSweep verifies the sweeping beam paints
// a cell ahead, eventually paints one off to the side, and clears returns
// on power loss.
func TestWeatherRadarPaintsCellsAcrossSweep(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ac := cruising(37, -122, 10000, 0, 300)
	s.SetWeatherCells([]WeatherCell{
		{ID: "CELL-AHEAD", LatDeg: 37 + 40.0/60, LonDeg: -122, RadiusNM: 5, Intensity: 3},
		{ID: "CELL-LEFT", LatDeg: 37 + 20.0/60, LonDeg: -122.25, RadiusNM: 5, Intensity: 2},
		{ID: "CELL-BEHIND", LatDeg: 37 - 20.0/60, LonDeg: -122, RadiusNM: 5, Intensity: 3},
	})

	painted := make(map[string]bool)
	for i := 0; i < 40; i++ {
		s.Update(200, ac, avioPowered())
		for _, ret := range s.DisplayData().Radar.Returns {
			painted[ret.CellID] = true
		}
	}
	if !painted["CELL-AHEAD"] || !painted["CELL-LEFT"] {
		t.Fatalf("sweep missed cells in the forward arc: %v", painted)
	}
	if painted["CELL-BEHIND"] {
		t.Fatalf("radar painted a cell behind the aircraft")
	}

	s.Update(200, ac, avioDark())
	if n := len(s.DisplayData().Radar.Returns); n != 0 {
		t.Fatalf("%d radar returns persist with the radar unpowered", n)
	}
}

// TestBusPowerGating drops the avionics bus and checks the FMS freezes with
// an alert, the autopilot disengages and the receivers flag.
func TestBusPowerGating(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.TuneNavRadio("NAV1", 115.8); err != nil {
		t.Fatalf("TuneNavRadio: %v", err)
	}
	s.EngageAutopilot(true)

	ac := cruising(36.6189, -122.3750, 8000, 0, 300)
	s.Update(1000, ac, avioPowered())
	if s.DisplayData().NavRadios[0].Flagged {
		t.Fatalf("receiver flagged with power and a station in range")
	}

	s.Update(1000, ac, avioDark())
	d := s.DisplayData()
	if d.Autopilot.Engaged {
		t.Fatalf("autopilot stayed engaged through a bus power loss")
	}
	if !d.NavRadios[0].Flagged {
		t.Fatalf("receiver not flagged without power")
	}
	if !hasAlert(s.Alerts(), "av.fms.unpowered") {
		t.Fatalf("no FMS power alert on a dark bus")
	}
}

// TestConfigValidationFailsFast rejects malformed rates and inverted TCAS
// thresholds.
func TestConfigValidationFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.Rates.NavHz = 0
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted a zero update rate")
	}

	cfg = testConfig()
	cfg.TCAS.RARangeNM = 7
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted resolution thresholds outside traffic thresholds")
	}

	cfg = testConfig()
	cfg.NavRadios = append(cfg.NavRadios, NavRadioConfig{Name: "NAV1"})
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted a duplicate nav radio")
	}
}
