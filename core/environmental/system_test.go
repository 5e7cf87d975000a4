package environmental

import (
	"math"
	"testing"

	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

func testConfig() Config {
	return Config{
		Pressurization: PressurizationConfig{
			ScheduleKneeFt:        8000,
			SlopeRatio:            4,
			MaxCabinAltFt:         8000,
			ControllerGainPerMin:  1.0,
			MaxRateFPM:            500,
			MaxValveRateFPM:       3000,
			ValveSlewPerSec:       0.5,
			InflowFPMPerCFM:       2.0,
			LeakFPMPerPSI:         20,
			SafetyReliefPSI:       8.6,
			SafetyHysteresisPSI:   0.2,
			SafetyVentFPM:         4000,
			NegativeReliefPSI:     0.5,
			NegativeHysteresisPSI: 0.1,
			NegativeVentFPM:       4000,
		},
		Packs: []PackConfig{
			{
				Name: "PACK-1", PowerBus: "AC-BUS",
				MinInletPSI: 10, RatedFlowCFM: 200, RefInletPSI: 30,
				CompressorDeltaC: 200, HXEffectiveness: 0.85, TurbineDropC: 140,
				DewPointFloorC: 2,
			},
			{
				Name: "PACK-2", PowerBus: "AC-BUS",
				MinInletPSI: 10, RatedFlowCFM: 200, RefInletPSI: 30,
				CompressorDeltaC: 200, HXEffectiveness: 0.85, TurbineDropC: 140,
				DewPointFloorC: 2,
			},
		},
		Zones: []ZoneConfig{
			{
				Name: "CABIN", Pack: "PACK-1",
				SupplyFlowCFM: 250, PassengerHeatW: 2000, EquipmentHeatW: 500,
				ThermalMassJPerC: 200000,
				InitialTempC:     22, DefaultTargetTempC: 22, MixValveGain: 0.1,
			},
			{
				Name: "COCKPIT", Pack: "PACK-2",
				SupplyFlowCFM: 80, PassengerHeatW: 300, EquipmentHeatW: 400,
				ThermalMassJPerC: 50000,
				InitialTempC:     22, DefaultTargetTempC: 22, MixValveGain: 0.1,
			},
		},
		Bleed: BleedConfig{
			Sources: []BleedSourceConfig{
				{Name: "ENG1-BLEED", Kind: BleedEngine, EngineIndex: 0, PSIPerPercent: 0.45, TempPerEGTC: 0.5},
				{Name: "ENG2-BLEED", Kind: BleedEngine, EngineIndex: 1, PSIPerPercent: 0.45, TempPerEGTC: 0.5},
				{Name: "APU-BLEED", Kind: BleedAPU, PSIPerPercent: 0.4, TempPerEGTC: 0.5},
				{Name: "GND-AIR", Kind: BleedGround, FixedPSI: 35, FixedTempC: 40},
			},
			CheckValveMinPSI:       8,
			FlowPerPSI:             1.0,
			PrecoolerAirspeedKts:   80,
			PrecoolerEffectiveness: 0.6,
			CrossbleedImbalancePSI: 10,
		},
		AntiIce: []AntiIceElementConfig{
			{Name: "WING-AI", Kind: AntiIceWing, PowerBus: "AC-BUS", PowerW: 500, BleedDriven: true, MinBleedPSI: 15},
			{Name: "PITOT-HEAT", Kind: AntiIcePitotStatic, PowerBus: "DC-BUS", PowerW: 120},
		},
		Icing: IcingConfig{
			MinTempC: -20, MaxTempC: 2, MaxAltFt: 30000, MinAirspeedKts: 80,
			DetectProbabilityPerSec: 1.0,
			AccretionPerSec:         0.05,
			MeltPerSec:              0.1,
		},
		Oxygen: OxygenConfig{
			PassengerDeployAltFt: 14000,
			GeneratorDurationSec: 900,
			CrewBottleLiters:     115,
			CrewRatedPSI:         1850,
			NormalFlowLPM:        8,
			HighFlowLPM:          15,
			EmergencyFlowLPM:     30,
		},
	}
}

func poweredBuses() model.ElectricalStatus {
	return model.ElectricalStatus{Buses: []model.BusStatus{
		{Name: "AC-BUS", Powered: true, Voltage: 115},
		{Name: "DC-BUS", Powered: true, Voltage: 28},
	}}
}

func darkBuses() model.ElectricalStatus {
	return model.ElectricalStatus{Buses: []model.BusStatus{
		{Name: "AC-BUS"},
		{Name: "DC-BUS"},
	}}
}

func flying(altFt, ambientC, airspeedKts float64) model.AircraftState {
	return model.AircraftState{
		AltitudeFt:   altFt,
		AirspeedKts:  airspeedKts,
		AmbientTempC: ambientC,
		Engines: []model.EngineState{
			{N1: 90, N2: 95, EGTC: 400},
			{N1: 90, N2: 95, EGTC: 400},
		},
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

// TestTargetCabinAltitudeSaturatesInClimb climbs linearly to 37,000 ft and
// verifies the cabin-altitude target saturates at 8,000 ft, the cabin
// converges near it, and the outflow valve stabilizes once the rate error
// washes out.
func TestTargetCabinAltitudeSaturatesInClimb(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	elec := poweredBuses()

	for i := 0; i < 1200; i++ {
		alt := 37000 * float64(i) / 1200
		s.Update(1000, flying(alt, 15-alt/500, 280), elec)
	}
	var positions []float64
	for i := 0; i < 1200; i++ {
		s.Update(1000, flying(37000, -59, 280), elec)
		if i >= 1180 {
			positions = append(positions, s.DisplayData().Pressurization.OutflowValvePos)
		}
	}

	d := s.DisplayData().Pressurization
	if d.TargetCabinAltFt != 8000 {
		t.Fatalf("target cabin altitude at cruise = %.0f ft, want 8000", d.TargetCabinAltFt)
	}
	if math.Abs(d.CabinAltFt-8000) > 300 {
		t.Fatalf("cabin altitude = %.0f ft, want within 300 ft of 8000", d.CabinAltFt)
	}
	if d.OutflowValvePos <= 0 || d.OutflowValvePos >= 1 {
		t.Fatalf("outflow valve position = %.3f, want an interior equilibrium", d.OutflowValvePos)
	}
	for i := 1; i < len(positions); i++ {
		if math.Abs(positions[i]-positions[i-1]) > 0.001 {
			t.Fatalf("outflow valve still moving at cruise: %.5f -> %.5f", positions[i-1], positions[i])
		}
	}
	if d.SafetyValveOpen {
		t.Fatalf("safety valve open at a %.2f PSI differential", d.DifferentialPSI)
	}
}

// TestDifferentialBoundedBySafetyRelief forces a rapid climb against a low
// relief setting and verifies the differential never exceeds the relief
// pressure plus its hysteresis band once the valve has had a tick to react.
func TestDifferentialBoundedBySafetyRelief(t *testing.T) {
	cfg := testConfig()
	cfg.Pressurization.SafetyReliefPSI = 2.0
	cfg.Pressurization.SafetyHysteresisPSI = 0.2

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	elec := poweredBuses()

	limit := 2.2 + 1e-9
	sawOpen := false
	for i := 0; i < 120; i++ {
		alt := math.Min(30000, 30000*float64(i)/30)
		s.Update(1000, flying(alt, 15-alt/500, 300), elec)
		d := s.DisplayData().Pressurization
		if d.DifferentialPSI > limit {
			t.Fatalf("tick %d: differential %.3f PSI exceeds relief limit %.3f", i, d.DifferentialPSI, limit)
		}
		if d.SafetyValveOpen {
			sawOpen = true
			if !hasAlert(s.Alerts(), "env.press.safety") {
				t.Fatalf("tick %d: no differential pressure alert while the safety valve is open", i)
			}
		}
	}
	if !sawOpen {
		t.Fatalf("safety valve never opened during a climb the controller cannot follow")
	}
}

// TestPackAirCycleChain checks the compressor, heat-exchanger and turbine
// temperature chain against hand-computed values, including the dew-point
// floor on discharge and the precooler cut above the ram-air threshold.
func TestPackAirCycleChain(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Static, on ground: no precooler. Bleed 0.5*400 = 200°C, 0.45*95 =
	// 42.75 PSI per engine.
	s.Update(1000, flying(0, 15, 0), poweredBuses())
	d := s.DisplayData()

	p := d.Packs[0]
	if !p.Running {
		t.Fatalf("pack not running with bleed at %.1f PSI", d.Bleed.ManifoldPSI)
	}
	if math.Abs(p.InletTempC-200) > 1e-6 {
		t.Fatalf("pack inlet temp = %.2f, want 200", p.InletTempC)
	}
	// Compressor 400, HX 400-0.85*(400-15) = 72.75, turbine -67.25,
	// floored at the 2°C dew point.
	if math.Abs(p.DischargeTempC-2) > 1e-6 {
		t.Fatalf("pack discharge temp = %.2f, want dew point floor 2", p.DischargeTempC)
	}
	if math.Abs(p.FlowCFM-200) > 1e-6 {
		t.Fatalf("pack flow = %.2f CFM, want rated 200", p.FlowCFM)
	}

	// At speed the precooler pulls bleed temperature toward ambient:
	// 200 - 0.6*(200-15) = 89.
	s.Update(1000, flying(0, 15, 280), poweredBuses())
	src := s.DisplayData().Bleed.Sources[0]
	if math.Abs(src.TempC-89) > 1e-6 {
		t.Fatalf("precooled bleed temp = %.2f, want 89", src.TempC)
	}
}

// TestZoneTemperatureControl runs the cabin zone to equilibrium under pack
// cooling with mix-valve trim and checks it holds near target; with all
// buses dark the packs stop and the zone saturates at the upper clamp.
func TestZoneTemperatureControl(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 6000; i++ {
		s.Update(1000, flying(10000, 5, 280), poweredBuses())
	}
	z := s.DisplayData().Zones[0]
	if math.Abs(z.TempC-z.TargetTempC) > 3 {
		t.Fatalf("cabin zone settled at %.1f°C, want within 3°C of %.1f", z.TempC, z.TargetTempC)
	}

	s2, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4000; i++ {
		s2.Update(1000, flying(10000, 5, 280), darkBuses())
	}
	z = s2.DisplayData().Zones[0]
	if z.TempC != 50 {
		t.Fatalf("unconditioned zone temp = %.1f°C, want clamp at 50", z.TempC)
	}
}

// TestCrossbleedOpensOnEngineImbalance drops one engine to idle and checks
// the automatic crossbleed valve opens once the pressure split exceeds the
// threshold.
func TestCrossbleedOpensOnEngineImbalance(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ac := flying(20000, -10, 280)
	ac.Engines[1].N2 = 20
	ac.Engines[1].EGTC = 150
	s.Update(1000, ac, poweredBuses())

	d := s.DisplayData().Bleed
	if !d.CrossbleedOpen {
		t.Fatalf("crossbleed closed with engine bleeds at %.1f and %.1f PSI",
			d.Sources[0].PressurePSI, d.Sources[1].PressurePSI)
	}
	if !hasAlert(s.Alerts(), "env.bleed.crossbleed") {
		t.Fatalf("no crossbleed advisory while the valve is open")
	}
}

// TestGroundAirFeedsManifold runs engines-off with a ground cart connected
// and verifies the manifold carries the cart's fixed supply; disconnecting
// it raises the bleed-lost alert.
func TestGroundAirFeedsManifold(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	parked := model.AircraftState{AmbientTempC: 15, OnGround: true,
		Engines: []model.EngineState{{}, {}}}

	s.SetGroundAir(true)
	s.Update(1000, parked, poweredBuses())
	d := s.DisplayData()
	if math.Abs(d.Bleed.ManifoldPSI-35) > 1e-6 {
		t.Fatalf("manifold = %.1f PSI on ground air, want 35", d.Bleed.ManifoldPSI)
	}
	if !d.Packs[0].Running {
		t.Fatalf("pack not running on ground air")
	}

	s.SetGroundAir(false)
	s.Update(1000, parked, poweredBuses())
	if !hasAlert(s.Alerts(), "env.bleed.lost") {
		t.Fatalf("no bleed-lost alert with every source dead")
	}
}

// TestPassengerMasksDeployOnCabinAltitude depressurizes with packs off and
// verifies the masks deploy once the cabin passes the threshold, latch, and
// start the generator burn.
func TestPassengerMasksDeployOnCabinAltitude(t *testing.T) {
	cfg := testConfig()
	cfg.Oxygen.PassengerDeployAltFt = 5000

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetPack("PACK-1", false); err != nil {
		t.Fatalf("SetPack: %v", err)
	}
	if err := s.SetPack("PACK-2", false); err != nil {
		t.Fatalf("SetPack: %v", err)
	}

	for i := 0; i < 900; i++ {
		s.Update(1000, flying(20000, -25, 280), poweredBuses())
	}

	d := s.DisplayData().Oxygen
	if !d.PassengerMasksDeployed {
		t.Fatalf("masks not deployed with cabin at %.0f ft",
			s.DisplayData().Pressurization.CabinAltFt)
	}
	if d.GeneratorRemainingSec <= 0 || d.GeneratorRemainingSec >= cfg.Oxygen.GeneratorDurationSec {
		t.Fatalf("generator remaining = %.0f s, want counting down from %.0f",
			d.GeneratorRemainingSec, cfg.Oxygen.GeneratorDurationSec)
	}
	if !hasAlert(s.Alerts(), "env.oxy.masks") {
		t.Fatalf("no passenger oxygen alert after deployment")
	}
}

// TestCrewOxygenDepletesByMode checks the mode-dependent regulator flow and
// the [0,100] quantity clamp.
func TestCrewOxygenDepletesByMode(t *testing.T) {
	parked := model.AircraftState{AmbientTempC: 15, OnGround: true,
		Engines: []model.EngineState{{}, {}}}

	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetCrewOxygen(true, OxygenNormal)
	s.Update(60000, parked, poweredBuses())
	pct := s.DisplayData().Oxygen.CrewQuantityPct
	want := (115.0 - 8.0) / 115.0 * 100
	if math.Abs(pct-want) > 0.01 {
		t.Fatalf("crew quantity after one NORM minute = %.2f%%, want %.2f", pct, want)
	}

	s2, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s2.SetCrewOxygen(true, OxygenEmergency)
	for i := 0; i < 10; i++ {
		s2.Update(60000, parked, poweredBuses())
	}
	d := s2.DisplayData().Oxygen
	if d.CrewQuantityPct != 0 {
		t.Fatalf("crew quantity = %.2f%% after bottle exhaustion, want clamp at 0", d.CrewQuantityPct)
	}
	if d.CrewPressurePSI != 0 {
		t.Fatalf("crew pressure = %.1f PSI on an empty bottle, want 0", d.CrewPressurePSI)
	}
	if !hasAlert(s2.Alerts(), "env.oxy.crew.low") {
		t.Fatalf("no crew oxygen low alert on an empty bottle")
	}
}

// TestIceDetectionEnvelope seeds the detector, verifies detection fires only
// inside the icing envelope, severity accretes without protection and melts
// once wing anti-ice is active.
func TestIceDetectionEnvelope(t *testing.T) {
	warm := flying(15000, 20, 250)
	icing := flying(15000, -5, 250)

	s, err := New(testConfig(), nil, WithRandSeed(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Update(1000, warm, poweredBuses())
	if s.DisplayData().Icing.Detected {
		t.Fatalf("ice detected outside the envelope")
	}

	for i := 0; i < 11; i++ {
		s.Update(1000, icing, poweredBuses())
	}
	d := s.DisplayData().Icing
	if !d.Detected {
		t.Fatalf("no ice detected inside the envelope with certain detection")
	}
	if d.Severity <= 0.5 {
		t.Fatalf("severity = %.2f after 11 s of unprotected accretion, want > 0.5", d.Severity)
	}
	if !hasAlert(s.Alerts(), "env.ice.detected") {
		t.Fatalf("no ice alert while detected")
	}

	if err := s.SetAntiIce("WING-AI", true); err != nil {
		t.Fatalf("SetAntiIce: %v", err)
	}
	for i := 0; i < 8; i++ {
		s.Update(1000, icing, poweredBuses())
	}
	if sev := s.DisplayData().Icing.Severity; sev != 0 {
		t.Fatalf("severity = %.2f with wing anti-ice active, want melted to 0", sev)
	}
}

// TestAntiIceGatedByPowerAndBleed checks the element gating: electric heat
// needs its bus, bleed-driven wing heat additionally needs manifold
// pressure.
func TestAntiIceGatedByPowerAndBleed(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAntiIce("WING-AI", true); err != nil {
		t.Fatalf("SetAntiIce: %v", err)
	}
	if err := s.SetAntiIce("PITOT-HEAT", true); err != nil {
		t.Fatalf("SetAntiIce: %v", err)
	}

	// Engines dead: no bleed, so the wing stays cold but the pitot heats.
	parked := model.AircraftState{AmbientTempC: 15, OnGround: true,
		Engines: []model.EngineState{{}, {}}}
	s.Update(1000, parked, poweredBuses())
	d := s.DisplayData()
	if d.AntiIce[0].Active {
		t.Fatalf("wing anti-ice active with no bleed pressure")
	}
	if !d.AntiIce[1].Active {
		t.Fatalf("pitot heat inactive with its bus powered")
	}

	s.Update(1000, flying(10000, 0, 250), darkBuses())
	if s.DisplayData().AntiIce[1].Active {
		t.Fatalf("pitot heat active with its bus dark")
	}
}

// TestConfigValidationFailsFast rejects malformed configuration at
// construction.
func TestConfigValidationFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.Zones[0].Pack = "NO-SUCH-PACK"
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted a zone referencing an unknown pack")
	}

	cfg = testConfig()
	cfg.Packs = append(cfg.Packs, cfg.Packs[0])
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted a duplicate pack name")
	}

	cfg = testConfig()
	cfg.Pressurization.MaxCabinAltFt = 0
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("New accepted a zero cabin altitude cap")
	}
}
