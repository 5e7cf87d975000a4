package hydraulic

import (
	"errors"
	"fmt"
)

var (
	ErrConfigInvalid   = errors.New("invalid hydraulic configuration")
	ErrUnknownEntity   = errors.New("unknown hydraulic entity")
	ErrDuplicateEntity = errors.New("duplicate hydraulic entity")
)

// PumpKind identifies a pump's drive source.
type PumpKind int

const (
	PumpEngine PumpKind = iota
	PumpElectric
	PumpManual
	PumpRAT
)

func (k PumpKind) String() string {
	switch k {
	case PumpEngine:
		return "engine"
	case PumpElectric:
		return "electric"
	case PumpManual:
		return "manual"
	case PumpRAT:
		return "rat"
	default:
		return "unknown"
	}
}

// ActuatorClass is the fixed degradation priority grouping. Lower numbers
// keep pressure longest when the circuit degrades.
type ActuatorClass int

const (
	ClassPrimaryFlight ActuatorClass = iota + 1
	ClassLandingGear
	ClassSecondaryFlight
	ClassBrakes
)

func (c ActuatorClass) String() string {
	switch c {
	case ClassPrimaryFlight:
		return "primary_flight"
	case ClassLandingGear:
		return "landing_gear"
	case ClassSecondaryFlight:
		return "secondary_flight"
	case ClassBrakes:
		return "brakes"
	default:
		return "unknown"
	}
}

// ActuatorKind selects position semantics: linear actuators clamp position
// to [0,1], rotary ones wrap.
type ActuatorKind int

const (
	ActuatorLinear ActuatorKind = iota
	ActuatorRotary
)

// PumpConfig sizes one pump.
type PumpConfig struct {
	Name string
	Kind PumpKind

	// Engine-driven pumps.
	EngineIndex int
	GearRatio   float64 // pump RPM per engine RPM at 100% N2

	// Electric and manual pumps run at a fixed speed when driven.
	FixedRPM float64
	// PowerBus gates electric pumps on electrical state.
	PowerBus string

	// RAT pumps reach rated speed at this airspeed.
	RatedAirspeedKts float64

	RatedRPM          float64
	MinRPM            float64 // below this the pump is OFF
	MaxAccelRPMPerSec float64
	RatedFlowGPM      float64
	RatedPressurePSI  float64
	Efficiency        float64 // 0..1
}

// ReservoirConfig sizes a circuit's fluid reservoir.
type ReservoirConfig struct {
	CapacityGal float64
	InitialGal  float64
}

// AccumulatorConfig sizes a circuit's accumulator.
type AccumulatorConfig struct {
	PrechargePSI        float64
	ChargeRatePSIPerSec float64 // pressure slew toward system pressure
	// NitrogenLeakPSIPerHour models the slow linear precharge loss.
	NitrogenLeakPSIPerHour float64
	// SupportFlowGPM is the flow the accumulator can push into the
	// circuit while discharging.
	SupportFlowGPM float64
}

// FilterConfig sizes the circuit filter and its annunciation thresholds.
type FilterConfig struct {
	// DiffPSIPerGPM scales filter differential pressure with flow.
	DiffPSIPerGPM     float64
	MaxDiffPSI        float64
	BypassPSI         float64
	ChangeRequiredPSI float64
}

// ActuatorConfig sizes one actuator.
type ActuatorConfig struct {
	Name  string
	Class ActuatorClass
	Kind  ActuatorKind

	ExtendAreaSqIn  float64
	RetractAreaSqIn float64
	FrictionLbf     float64

	// MaxRatePerSec is full-travel fraction per second at rated pressure.
	MaxRatePerSec float64
	// RateResponsePerSec bounds how fast velocity converges on its
	// force-derived target (first-order response).
	RateResponsePerSec float64
	// FlowPerUnitGPM converts travel rate into circuit flow demand.
	FlowPerUnitGPM float64
}

// ReliefValveConfig: the valve opens proportionally from crack pressure to
// full-open pressure.
type ReliefValveConfig struct {
	CrackPSI    float64
	FullOpenPSI float64
	FlowGPM     float64 // bleed flow at full open
}

// ClassPressures carries the per-class minimum pressures used by priority
// management during degradation.
type ClassPressures struct {
	PrimaryFlightPSI   float64
	LandingGearPSI     float64
	SecondaryFlightPSI float64
	BrakesPSI          float64
}

// Min returns the configured minimum for a class.
func (p ClassPressures) Min(c ActuatorClass) float64 {
	switch c {
	case ClassPrimaryFlight:
		return p.PrimaryFlightPSI
	case ClassLandingGear:
		return p.LandingGearPSI
	case ClassSecondaryFlight:
		return p.SecondaryFlightPSI
	case ClassBrakes:
		return p.BrakesPSI
	default:
		return 0
	}
}

// CircuitConfig assembles one independent hydraulic circuit.
type CircuitConfig struct {
	Name             string
	RatedPressurePSI float64
	// BulkModulusPSI scales pressure change per gallon of net flow
	// imbalance in the circuit's trapped volume.
	BulkModulusPSI   float64
	TrappedVolumeGal float64
	// BackpressureFactor attenuates pump output against system pressure.
	BackpressureFactor float64

	Pumps       []PumpConfig
	Reservoir   ReservoirConfig
	Accumulator AccumulatorConfig
	Filter      FilterConfig
	Actuators   []ActuatorConfig
	ReliefValve ReliefValveConfig
	Priorities  ClassPressures
}

// Config assembles the hydraulic system from one or more circuits.
type Config struct {
	Circuits []CircuitConfig
}

// Validate fails fast on malformed counts and capacities.
func (c Config) Validate() error {
	if len(c.Circuits) == 0 {
		return fmt.Errorf("%w: at least one circuit required", ErrConfigInvalid)
	}
	circuitNames := make(map[string]bool, len(c.Circuits))
	for _, cc := range c.Circuits {
		if cc.Name == "" {
			return fmt.Errorf("%w: circuit with empty name", ErrConfigInvalid)
		}
		if circuitNames[cc.Name] {
			return fmt.Errorf("%w: circuit %q", ErrDuplicateEntity, cc.Name)
		}
		circuitNames[cc.Name] = true

		if cc.RatedPressurePSI <= 0 {
			return fmt.Errorf("%w: circuit %q needs a positive rated pressure", ErrConfigInvalid, cc.Name)
		}
		if cc.TrappedVolumeGal <= 0 || cc.BulkModulusPSI <= 0 {
			return fmt.Errorf("%w: circuit %q needs positive trapped volume and bulk modulus", ErrConfigInvalid, cc.Name)
		}
		if cc.Reservoir.CapacityGal <= 0 || cc.Reservoir.InitialGal < 0 || cc.Reservoir.InitialGal > cc.Reservoir.CapacityGal {
			return fmt.Errorf("%w: circuit %q reservoir quantity outside [0, capacity]", ErrConfigInvalid, cc.Name)
		}
		if len(cc.Pumps) == 0 {
			return fmt.Errorf("%w: circuit %q has no pumps", ErrConfigInvalid, cc.Name)
		}

		names := make(map[string]bool)
		for _, pc := range cc.Pumps {
			if pc.Name == "" {
				return fmt.Errorf("%w: circuit %q pump with empty name", ErrConfigInvalid, cc.Name)
			}
			if names[pc.Name] {
				return fmt.Errorf("%w: pump %q in circuit %q", ErrDuplicateEntity, pc.Name, cc.Name)
			}
			names[pc.Name] = true
			if pc.RatedRPM <= 0 || pc.RatedFlowGPM <= 0 || pc.RatedPressurePSI <= 0 {
				return fmt.Errorf("%w: pump %q needs positive rated speed, flow and pressure", ErrConfigInvalid, pc.Name)
			}
			if pc.Efficiency <= 0 || pc.Efficiency > 1 {
				return fmt.Errorf("%w: pump %q efficiency must be in (0,1]", ErrConfigInvalid, pc.Name)
			}
			if pc.Kind == PumpElectric && pc.PowerBus == "" {
				return fmt.Errorf("%w: electric pump %q needs a power bus", ErrConfigInvalid, pc.Name)
			}
			if pc.Kind == PumpRAT && pc.RatedAirspeedKts <= 0 {
				return fmt.Errorf("%w: RAT pump %q needs a rated airspeed", ErrConfigInvalid, pc.Name)
			}
		}
		for _, acn := range cc.Actuators {
			if acn.Name == "" {
				return fmt.Errorf("%w: circuit %q actuator with empty name", ErrConfigInvalid, cc.Name)
			}
			if names[acn.Name] {
				return fmt.Errorf("%w: actuator %q in circuit %q", ErrDuplicateEntity, acn.Name, cc.Name)
			}
			names[acn.Name] = true
			if acn.Class < ClassPrimaryFlight || acn.Class > ClassBrakes {
				return fmt.Errorf("%w: actuator %q has unknown priority class", ErrConfigInvalid, acn.Name)
			}
			if acn.ExtendAreaSqIn <= 0 || acn.RetractAreaSqIn <= 0 {
				return fmt.Errorf("%w: actuator %q needs positive piston areas", ErrConfigInvalid, acn.Name)
			}
			if acn.MaxRatePerSec <= 0 {
				return fmt.Errorf("%w: actuator %q needs a positive travel rate", ErrConfigInvalid, acn.Name)
			}
		}
		if rv := cc.ReliefValve; rv.CrackPSI > 0 && rv.FullOpenPSI <= rv.CrackPSI {
			return fmt.Errorf("%w: circuit %q relief valve full-open pressure must exceed crack pressure", ErrConfigInvalid, cc.Name)
		}
	}
	return nil
}
