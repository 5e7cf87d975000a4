package electrical

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// twinEngineState returns a kinematic snapshot with both engines at cruise
// N2 and the APU off.
func twinEngineState() model.AircraftState {
	return model.AircraftState{
		Engines: []model.EngineState{
			{N1: 90, N2: 100, EGTC: 650},
			{N1: 90, N2: 100, EGTC: 650},
		},
		AmbientTempC: 15,
	}
}

// testConfig builds a single-generator, single-battery system with one AC
// bus. Capacity and load sizes are chosen so tests can push the bus into
// shedding by adding loads.
func testConfig() Config {
	return Config{
		Generators: []GeneratorConfig{{
			Name:             "GEN1",
			Drive:            DriveEngine,
			EngineIndex:      0,
			RatedVoltage:     115,
			RatedFrequencyHz: 400,
			RatedPowerW:      9000,
			RatedSpeedRPM:    12000,
			MaxOverloadSec:   5,
		}},
		Batteries: []BatteryConfig{{
			Name:                  "BAT1",
			RatedVoltage:          24,
			CapacityAh:            40,
			InternalResistanceOhm: 0.01,
			ChargeCurrentA:        10,
			Bus:                   "DC-BUS",
		}},
		Buses: []BusConfig{
			{
				Name:             "AC-BUS",
				AC:               true,
				CapacityW:        10000,
				MinSourceVoltage: 100,
				Sources: []SourceRef{
					{Kind: SourceEngineGenerator, Name: "GEN1", Priority: 1},
				},
			},
			{
				Name:             "DC-BUS",
				CapacityW:        2000,
				MinSourceVoltage: 18,
				Sources: []SourceRef{
					{Kind: SourceBattery, Name: "BAT1", Priority: 1},
				},
			},
		},
		Loads: []LoadConfig{
			{Name: "FUEL-PUMP", Bus: "AC-BUS", PowerW: 2000, Essential: true, BreakerRatingA: 40},
			{Name: "GALLEY", Bus: "AC-BUS", PowerW: 4000, SheddingPriority: 9, BreakerRatingA: 60},
			{Name: "CABIN-LTS", Bus: "AC-BUS", PowerW: 3000, SheddingPriority: 5, BreakerRatingA: 50},
			{Name: "INSTR", Bus: "DC-BUS", PowerW: 240, Essential: true, BreakerRatingA: 20},
		},
	}
}

// TestGeneratorComesOnlineAtRatedSpeed verifies the 95%/98% online gate: a
// windmilling engine keeps the generator offline, a running one brings it
// online and powers the bus.
func TestGeneratorComesOnlineAtRatedSpeed(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ac := twinEngineState()
	ac.Engines[0].N2 = 40
	s.Update(100, ac)

	if s.Status().BusPowered("AC-BUS") {
		t.Fatalf("AC-BUS powered with generator at 40%% N2")
	}

	ac.Engines[0].N2 = 100
	s.Update(100, ac)

	st := s.Status()
	if !st.BusPowered("AC-BUS") {
		t.Fatalf("AC-BUS unpowered with generator at rated speed")
	}
	d := s.DisplayData()
	if d.Generators[0].Status != "ONLINE" {
		t.Fatalf("generator status = %s, want ONLINE", d.Generators[0].Status)
	}
	if v := d.Buses[0].Voltage; v < 109 || v > 116 {
		t.Fatalf("AC-BUS voltage = %.1f, want ~115", v)
	}
}

// TestLoadSheddingDropsNonEssentialSuffix verifies that an over-capacity bus
// sheds exactly the minimal priority-ordered suffix of non-essential loads,
// and never an essential one.
func TestLoadSheddingDropsNonEssentialSuffix(t *testing.T) {
	cfg := testConfig()
	// 2000 + 4000 + 3000 = 9000 demand against 6500 capacity: shedding
	// GALLEY (priority 9) alone brings demand to 5000 <= 6500, so
	// CABIN-LTS must stay powered.
	cfg.Buses[0].CapacityW = 6500

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Update(100, twinEngineState())

	d := s.DisplayData()
	byName := map[string]LoadDisplay{}
	for _, l := range d.Loads {
		byName[l.Name] = l
	}

	if !byName["GALLEY"].Shed || byName["GALLEY"].Powered {
		t.Fatalf("GALLEY should be shed first (priority 9), got %+v", byName["GALLEY"])
	}
	if byName["CABIN-LTS"].Shed {
		t.Fatalf("CABIN-LTS shed although shedding GALLEY already met capacity")
	}
	if byName["FUEL-PUMP"].Shed || !byName["FUEL-PUMP"].Powered {
		t.Fatalf("essential FUEL-PUMP must never be shed, got %+v", byName["FUEL-PUMP"])
	}
	if d.Buses[0].LoadW > cfg.Buses[0].CapacityW {
		t.Fatalf("bus load %.0f exceeds capacity %.0f after shedding", d.Buses[0].LoadW, cfg.Buses[0].CapacityW)
	}
}

// TestBatterySOCStaysClamped integrates a constant discharge far past
// depletion and checks SOC and remaining capacity never leave [0, max].
func TestBatterySOCStaysClamped(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Engines off: DC-BUS runs on battery, draining it through INSTR.
	ac := model.AircraftState{AmbientTempC: 15}
	for i := 0; i < 10000; i++ {
		s.Update(60_000, ac) // one simulated minute per tick
		b := s.DisplayData().Batteries[0]
		if b.StateOfCharge < 0 || b.StateOfCharge > 1 {
			t.Fatalf("tick %d: SOC %.4f out of [0,1]", i, b.StateOfCharge)
		}
		if b.RemainingCapacityAh < 0 {
			t.Fatalf("tick %d: remaining capacity %.4f went negative", i, b.RemainingCapacityAh)
		}
	}
	if soc := s.DisplayData().Batteries[0].StateOfCharge; soc != 0 {
		t.Fatalf("battery SOC = %.4f after prolonged discharge, want 0", soc)
	}
}

// TestGeneratorOverloadFails holds generator load above rating for longer
// than the overload budget and expects a FAILED status that persists, with
// the bus losing its source on the following tick.
func TestGeneratorOverloadFails(t *testing.T) {
	cfg := testConfig()
	// Keep the bus itself under capacity but push demand above the
	// generator's 9000 W rating.
	cfg.Buses[0].CapacityW = 20000
	cfg.Loads = append(cfg.Loads, LoadConfig{
		Name: "DEICE", Bus: "AC-BUS", PowerW: 6000, Essential: true, BreakerRatingA: 80,
	})

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ac := twinEngineState()
	// 5 s budget at 1 s per tick: the 7th tick exceeds it.
	for i := 0; i < 7; i++ {
		s.Update(1000, ac)
	}
	if st := s.DisplayData().Generators[0].Status; st != "FAILED" {
		t.Fatalf("generator status after sustained overload = %s, want FAILED", st)
	}

	// Following tick: the failed generator contributes nothing.
	s.Update(1000, ac)
	if s.Status().BusPowered("AC-BUS") {
		t.Fatalf("AC-BUS still powered by a FAILED generator")
	}

	// Failure latches until the fault is cleared.
	s.Update(1000, ac)
	if st := s.DisplayData().Generators[0].Status; st != "FAILED" {
		t.Fatalf("generator recovered without ClearGeneratorFault, status = %s", st)
	}
	if err := s.ClearGeneratorFault("GEN1"); err != nil {
		t.Fatalf("ClearGeneratorFault: %v", err)
	}
	s.Update(1000, ac)
	if st := s.DisplayData().Generators[0].Status; st == "FAILED" {
		t.Fatalf("generator still FAILED after fault clear")
	}
}

// TestBreakerTripsAndRequiresReset overloads a single load's breaker and
// verifies the trip latches until ResetBreaker.
func TestBreakerTripsAndRequiresReset(t *testing.T) {
	cfg := testConfig()
	// GALLEY at 4000 W / ~115 V is ~35 A; rate the breaker at 20 A so it
	// trips immediately (35 > 1.1*20).
	cfg.Loads[1].BreakerRatingA = 20

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Update(100, twinEngineState())

	d := s.DisplayData()
	if !d.Loads[1].BreakerTripped {
		t.Fatalf("GALLEY breaker did not trip at %.1f A against 20 A rating", 4000.0/115.0)
	}
	if d.Loads[1].Powered {
		t.Fatalf("GALLEY still powered with a tripped breaker")
	}

	// No auto-reset.
	s.Update(100, twinEngineState())
	if !s.DisplayData().Loads[1].BreakerTripped {
		t.Fatalf("breaker auto-reset; trips must latch")
	}

	if err := s.ResetBreaker("GALLEY"); err != nil {
		t.Fatalf("ResetBreaker: %v", err)
	}
	if s.DisplayData().Loads[1].BreakerTripped {
		t.Fatalf("breaker still tripped after explicit reset")
	}
}

// TestSourcePriorityOrder verifies that a bus offered an engine generator,
// an APU generator and a battery picks them in that fixed order as each
// higher-ranked source drops out.
func TestSourcePriorityOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Generators = append(cfg.Generators, GeneratorConfig{
		Name:             "APU-GEN",
		Drive:            DriveAPU,
		RatedVoltage:     115,
		RatedFrequencyHz: 400,
		RatedPowerW:      9000,
		RatedSpeedRPM:    24000,
		MaxOverloadSec:   5,
	})
	cfg.Batteries = append(cfg.Batteries, BatteryConfig{
		Name: "BAT2", RatedVoltage: 115, CapacityAh: 10, InternalResistanceOhm: 0.01,
	})
	cfg.Buses[0].Sources = []SourceRef{
		{Kind: SourceBattery, Name: "BAT2", Priority: 1},
		{Kind: SourceAPUGenerator, Name: "APU-GEN", Priority: 1},
		{Kind: SourceEngineGenerator, Name: "GEN1", Priority: 1},
	}

	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ac := twinEngineState()
	ac.APU = model.APUState{RPMPercent: 100, Running: true}
	s.Update(100, ac)
	if src := s.DisplayData().Buses[0].Source; src != "GEN1" {
		t.Fatalf("with all sources available bus picked %q, want GEN1", src)
	}

	ac.Engines[0].N2 = 0
	s.Update(100, ac)
	if src := s.DisplayData().Buses[0].Source; src != "APU-GEN" {
		t.Fatalf("with engine gen offline bus picked %q, want APU-GEN", src)
	}

	ac.APU.Running = false
	s.Update(100, ac)
	if src := s.DisplayData().Buses[0].Source; src != "BAT2" {
		t.Fatalf("with both generators offline bus picked %q, want BAT2", src)
	}

	if err := s.SetBatterySwitch("BAT2", false); err != nil {
		t.Fatalf("SetBatterySwitch: %v", err)
	}
	s.Update(100, ac)
	d := s.DisplayData()
	if d.Buses[0].Powered {
		t.Fatalf("bus powered with no qualifying source")
	}
	if d.Buses[0].Voltage != 0 {
		t.Fatalf("unpowered bus voltage = %.1f, want 0", d.Buses[0].Voltage)
	}
}

// TestUnpoweredBusRaisesAlert checks the alert list is derived from current
// state and carries the essential-bus WARNING level.
func TestUnpoweredBusRaisesAlert(t *testing.T) {
	s, err := New(testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Update(100, model.AircraftState{}) // everything dark except battery bus

	var found bool
	for _, a := range s.Alerts() {
		if a.ID == "elec.bus.AC-BUS.unpowered" {
			found = true
			if a.Level != model.AlertWarning {
				t.Fatalf("AC-BUS unpowered alert level = %v, want WARNING (essential load attached)", a.Level)
			}
			if !a.Active {
				t.Fatalf("alert present but not active")
			}
		}
	}
	if !found {
		t.Fatalf("no unpowered-bus alert for AC-BUS; alerts: %+v", s.Alerts())
	}

	// Alerts are recomputed wholesale: once the bus regains power the
	// alert disappears.
	s.Update(100, twinEngineState())
	for _, a := range s.Alerts() {
		if a.ID == "elec.bus.AC-BUS.unpowered" {
			t.Fatalf("stale unpowered alert survived repowering")
		}
	}
}

// TestConfigValidationFailsFast exercises the construction-time taxonomy:
// malformed counts and dangling references must error before simulation.
func TestConfigValidationFailsFast(t *testing.T) {
	cfg := testConfig()
	cfg.Loads[0].Bus = "NO-SUCH-BUS"
	if _, err := New(cfg, nil); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("dangling load bus: err = %v, want ErrUnknownEntity", err)
	}

	cfg = testConfig()
	cfg.Generators[0].RatedPowerW = 0
	if _, err := New(cfg, nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("zero rated power: err = %v, want ErrConfigInvalid", err)
	}

	cfg = testConfig()
	cfg.Buses = nil
	if _, err := New(cfg, nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("no buses: err = %v, want ErrConfigInvalid", err)
	}
}
