package environmental

import (
	"errors"
	"fmt"
)

var (
	ErrConfigInvalid   = errors.New("invalid environmental configuration")
	ErrUnknownEntity   = errors.New("unknown environmental entity")
	ErrDuplicateEntity = errors.New("duplicate environmental entity")
)

// BleedKind identifies a bleed-air source's driver.
type BleedKind int

const (
	BleedEngine BleedKind = iota
	BleedAPU
	BleedGround
)

func (k BleedKind) String() string {
	switch k {
	case BleedEngine:
		return "engine"
	case BleedAPU:
		return "apu"
	case BleedGround:
		return "ground"
	default:
		return "unknown"
	}
}

// AntiIceKind identifies the protected surface or probe.
type AntiIceKind int

const (
	AntiIceWing AntiIceKind = iota
	AntiIceEngine
	AntiIcePitotStatic
	AntiIceWindshield
	AntiIceProbe
)

func (k AntiIceKind) String() string {
	switch k {
	case AntiIceWing:
		return "wing"
	case AntiIceEngine:
		return "engine"
	case AntiIcePitotStatic:
		return "pitot_static"
	case AntiIceWindshield:
		return "windshield"
	case AntiIceProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// OxygenMode selects the crew regulator flow schedule.
type OxygenMode int

const (
	OxygenNormal OxygenMode = iota
	OxygenHigh
	OxygenEmergency
)

func (m OxygenMode) String() string {
	switch m {
	case OxygenNormal:
		return "NORM"
	case OxygenHigh:
		return "HIGH"
	case OxygenEmergency:
		return "100%"
	default:
		return "UNKNOWN"
	}
}

// PressurizationConfig sizes the cabin pressure control loop.
type PressurizationConfig struct {
	// Cabin altitude schedule: follow aircraft altitude below the knee,
	// climb at SlopeRatio:1 above it, never above MaxCabinAltFt.
	ScheduleKneeFt float64
	SlopeRatio     float64
	MaxCabinAltFt  float64

	// Proportional controller on cabin-altitude error.
	ControllerGainPerMin float64 // FPM of commanded rate per ft of error
	MaxRateFPM           float64

	// Outflow valve. Position is 0 (closed) to 1 (full open); at full
	// open the cabin climbs at MaxValveRateFPM against zero inflow.
	MaxValveRateFPM float64
	ValveSlewPerSec float64

	// Pack inflow descends the cabin at this many FPM per CFM supplied.
	InflowFPMPerCFM float64

	// Structural leakage climbs the cabin proportionally to differential.
	LeakFPMPerPSI float64

	// Relief valves, both with open/close hysteresis.
	SafetyReliefPSI       float64
	SafetyHysteresisPSI   float64
	SafetyVentFPM         float64
	NegativeReliefPSI     float64
	NegativeHysteresisPSI float64
	NegativeVentFPM       float64
}

// PackConfig sizes one air-conditioning pack.
type PackConfig struct {
	Name string

	// Controller power; the pack machinery itself runs on bleed air.
	PowerBus string

	MinInletPSI  float64
	RatedFlowCFM float64
	// Flow scales with manifold pressure up to rated at RefInletPSI.
	RefInletPSI float64

	CompressorDeltaC float64
	HXEffectiveness  float64 // 0..1 blend toward ambient
	TurbineDropC     float64
	// Discharge never goes below the dew point floor. Empirical, tuned
	// per airframe rather than derived.
	DewPointFloorC float64
}

// ZoneConfig sizes one temperature-controlled cabin zone.
type ZoneConfig struct {
	Name string
	Pack string // supplying pack

	SupplyFlowCFM    float64
	PassengerHeatW   float64
	EquipmentHeatW   float64
	ThermalMassJPerC float64

	InitialTempC       float64
	DefaultTargetTempC float64

	// Mix valve: proportional trim-air blend on zone temperature error.
	MixValveGain float64 // valve fraction per °C of error
}

// BleedSourceConfig sizes one bleed-air source feeding the manifold.
type BleedSourceConfig struct {
	Name string
	Kind BleedKind

	EngineIndex int // engine sources

	// Engine/APU pressure and temperature derive from spool speed and EGT.
	PSIPerPercent float64 // manifold PSI per % N2 (or % APU RPM)
	TempPerEGTC   float64 // bleed °C per °C of EGT

	// Ground cart supplies fixed conditions when connected.
	FixedPSI   float64
	FixedTempC float64
}

// BleedConfig assembles the shared crossbleed manifold.
type BleedConfig struct {
	Sources []BleedSourceConfig

	// A source's check valve passes flow only above this pressure.
	CheckValveMinPSI float64
	// Source flow into the manifold scales linearly with its pressure.
	FlowPerPSI float64

	// Precooler bleeds heat to ambient ram air above this airspeed.
	PrecoolerAirspeedKts   float64
	PrecoolerEffectiveness float64

	// The crossbleed valve opens automatically on inter-engine imbalance.
	CrossbleedImbalancePSI float64
}

// AntiIceElementConfig sizes one heating element.
type AntiIceElementConfig struct {
	Name string
	Kind AntiIceKind

	PowerBus string
	PowerW   float64

	// Wing anti-ice is bleed-driven and needs manifold pressure too.
	BleedDriven bool
	MinBleedPSI float64
}

// IcingConfig fixes the detection envelope and accretion rates.
type IcingConfig struct {
	MinTempC       float64
	MaxTempC       float64
	MaxAltFt       float64
	MinAirspeedKts float64

	// Probability per second of a detector trip while inside the envelope.
	DetectProbabilityPerSec float64

	AccretionPerSec float64 // severity growth while detected, protection off
	MeltPerSec      float64 // severity decay with protection on or out of envelope
}

// OxygenConfig sizes passenger chemical generators and the crew bottle.
type OxygenConfig struct {
	PassengerDeployAltFt float64
	GeneratorDurationSec float64

	CrewBottleLiters float64
	CrewRatedPSI     float64
	NormalFlowLPM    float64
	HighFlowLPM      float64
	EmergencyFlowLPM float64
}

// Config assembles the environmental system.
type Config struct {
	Pressurization PressurizationConfig
	Packs          []PackConfig
	Zones          []ZoneConfig
	Bleed          BleedConfig
	AntiIce        []AntiIceElementConfig
	Icing          IcingConfig
	Oxygen         OxygenConfig
}

// Validate fails fast on malformed counts and capacities.
func (c Config) Validate() error {
	p := c.Pressurization
	if p.MaxCabinAltFt <= 0 || p.MaxValveRateFPM <= 0 || p.MaxRateFPM <= 0 {
		return fmt.Errorf("%w: pressurization needs positive cabin altitude cap, valve rate and max rate", ErrConfigInvalid)
	}
	if p.ControllerGainPerMin <= 0 || p.ValveSlewPerSec <= 0 {
		return fmt.Errorf("%w: pressurization needs positive controller gain and valve slew", ErrConfigInvalid)
	}
	if p.SafetyReliefPSI <= 0 || p.SafetyHysteresisPSI < 0 {
		return fmt.Errorf("%w: safety relief pressure must be positive", ErrConfigInvalid)
	}
	if p.NegativeReliefPSI <= 0 || p.NegativeHysteresisPSI < 0 {
		return fmt.Errorf("%w: negative relief pressure must be positive", ErrConfigInvalid)
	}

	packNames := make(map[string]bool, len(c.Packs))
	for _, pc := range c.Packs {
		if pc.Name == "" {
			return fmt.Errorf("%w: pack with empty name", ErrConfigInvalid)
		}
		if packNames[pc.Name] {
			return fmt.Errorf("%w: pack %q", ErrDuplicateEntity, pc.Name)
		}
		packNames[pc.Name] = true
		if pc.RatedFlowCFM <= 0 || pc.RefInletPSI <= 0 {
			return fmt.Errorf("%w: pack %q needs positive rated flow and reference pressure", ErrConfigInvalid, pc.Name)
		}
		if pc.HXEffectiveness < 0 || pc.HXEffectiveness > 1 {
			return fmt.Errorf("%w: pack %q heat exchanger effectiveness must be in [0,1]", ErrConfigInvalid, pc.Name)
		}
	}

	zoneNames := make(map[string]bool, len(c.Zones))
	for _, zc := range c.Zones {
		if zc.Name == "" {
			return fmt.Errorf("%w: zone with empty name", ErrConfigInvalid)
		}
		if zoneNames[zc.Name] {
			return fmt.Errorf("%w: zone %q", ErrDuplicateEntity, zc.Name)
		}
		zoneNames[zc.Name] = true
		if !packNames[zc.Pack] {
			return fmt.Errorf("%w: zone %q references pack %q", ErrUnknownEntity, zc.Name, zc.Pack)
		}
		if zc.ThermalMassJPerC <= 0 {
			return fmt.Errorf("%w: zone %q needs a positive thermal mass", ErrConfigInvalid, zc.Name)
		}
	}

	srcNames := make(map[string]bool, len(c.Bleed.Sources))
	for _, sc := range c.Bleed.Sources {
		if sc.Name == "" {
			return fmt.Errorf("%w: bleed source with empty name", ErrConfigInvalid)
		}
		if srcNames[sc.Name] {
			return fmt.Errorf("%w: bleed source %q", ErrDuplicateEntity, sc.Name)
		}
		srcNames[sc.Name] = true
		if sc.Kind == BleedGround && sc.FixedPSI <= 0 {
			return fmt.Errorf("%w: ground bleed %q needs a fixed supply pressure", ErrConfigInvalid, sc.Name)
		}
		if sc.Kind != BleedGround && sc.PSIPerPercent <= 0 {
			return fmt.Errorf("%w: bleed source %q needs a positive pressure coefficient", ErrConfigInvalid, sc.Name)
		}
	}

	aiNames := make(map[string]bool, len(c.AntiIce))
	for _, ac := range c.AntiIce {
		if ac.Name == "" {
			return fmt.Errorf("%w: anti-ice element with empty name", ErrConfigInvalid)
		}
		if aiNames[ac.Name] {
			return fmt.Errorf("%w: anti-ice element %q", ErrDuplicateEntity, ac.Name)
		}
		aiNames[ac.Name] = true
		if ac.PowerBus == "" {
			return fmt.Errorf("%w: anti-ice element %q needs a power bus", ErrConfigInvalid, ac.Name)
		}
	}

	if c.Oxygen.CrewBottleLiters <= 0 {
		return fmt.Errorf("%w: crew oxygen bottle volume must be positive", ErrConfigInvalid)
	}
	if c.Oxygen.PassengerDeployAltFt <= 0 {
		return fmt.Errorf("%w: passenger mask deployment altitude must be positive", ErrConfigInvalid)
	}
	return nil
}
