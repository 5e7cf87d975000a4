package electrical

import (
	"errors"
	"fmt"
)

var (
	ErrConfigInvalid   = errors.New("invalid electrical configuration")
	ErrUnknownEntity   = errors.New("unknown electrical entity")
	ErrDuplicateEntity = errors.New("duplicate electrical entity")
)

// GeneratorDrive identifies what spins a generator.
type GeneratorDrive int

const (
	DriveEngine GeneratorDrive = iota
	DriveAPU
	DriveGround
	DriveRAT
)

// String returns the scenario-file spelling of the drive source.
func (d GeneratorDrive) String() string {
	switch d {
	case DriveEngine:
		return "engine"
	case DriveAPU:
		return "apu"
	case DriveGround:
		return "ground"
	case DriveRAT:
		return "rat"
	default:
		return "unknown"
	}
}

// SourceKind ranks bus power sources. Buses always prefer the lowest kind
// that qualifies: engine generator, then APU generator, then battery, then
// inverter, then ground power. Ties within a kind break on declared
// priority.
type SourceKind int

const (
	SourceEngineGenerator SourceKind = iota
	SourceAPUGenerator
	SourceBattery
	SourceInverter
	SourceGroundPower
)

func (k SourceKind) String() string {
	switch k {
	case SourceEngineGenerator:
		return "engine_generator"
	case SourceAPUGenerator:
		return "apu_generator"
	case SourceBattery:
		return "battery"
	case SourceInverter:
		return "inverter"
	case SourceGroundPower:
		return "ground_power"
	default:
		return "unknown"
	}
}

// GeneratorConfig sizes one generator.
type GeneratorConfig struct {
	Name             string
	Drive            GeneratorDrive
	EngineIndex      int     // engine-driven generators only
	RatedVoltage     float64 // volts
	RatedFrequencyHz float64 // 0 for DC machines
	RatedPowerW      float64
	RatedSpeedRPM    float64
	// RatedAirspeedKts is the airspeed at which a RAT reaches rated speed.
	RatedAirspeedKts float64
	// MaxOverloadSec is how long the generator tolerates load above
	// RatedPowerW before it fails.
	MaxOverloadSec float64
}

// BatteryConfig sizes one battery.
type BatteryConfig struct {
	Name                  string
	RatedVoltage          float64
	CapacityAh            float64
	InternalResistanceOhm float64
	// ChargeCurrentA is the constant-current charge applied whenever the
	// battery's bus is powered by another source.
	ChargeCurrentA float64
	Bus            string
}

// InverterConfig sizes one static inverter.
type InverterConfig struct {
	Name         string
	SourceBus    string  // DC bus the inverter draws from
	RatedVoltage float64 // AC output volts
	VoltageRatio float64 // AC volts produced per DC input volt
	Efficiency   float64 // 0..1
}

// SourceRef names a candidate power source for a bus, in the bus's declared
// priority order within its kind.
type SourceRef struct {
	Kind     SourceKind
	Name     string
	Priority int
}

// BusConfig sizes one distribution bus.
type BusConfig struct {
	Name             string
	AC               bool
	CapacityW        float64
	MinSourceVoltage float64
	Sources          []SourceRef
}

// LoadConfig sizes one load and its breaker.
type LoadConfig struct {
	Name      string
	Bus       string
	PowerW    float64
	Essential bool
	// SheddingPriority orders non-essential loads for shedding; higher
	// numbers shed first. Ignored for essential loads.
	SheddingPriority int
	BreakerRatingA   float64
}

// Config assembles the electrical system. Entity sets are fixed at
// construction; malformed configuration fails fast here rather than
// mid-simulation.
type Config struct {
	Generators []GeneratorConfig
	Batteries  []BatteryConfig
	Inverters  []InverterConfig
	Buses      []BusConfig
	Loads      []LoadConfig
}

// Validate checks structural soundness: names present and unique, positive
// ratings, and cross-references resolving to declared entities.
func (c Config) Validate() error {
	if len(c.Buses) == 0 {
		return fmt.Errorf("%w: at least one bus required", ErrConfigInvalid)
	}

	names := make(map[string]string)
	claim := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%w: %s with empty name", ErrConfigInvalid, kind)
		}
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%w: %q declared as both %s and %s", ErrDuplicateEntity, name, prev, kind)
		}
		names[name] = kind
		return nil
	}

	for _, g := range c.Generators {
		if err := claim("generator", g.Name); err != nil {
			return err
		}
		if g.RatedVoltage <= 0 || g.RatedPowerW <= 0 || g.RatedSpeedRPM <= 0 {
			return fmt.Errorf("%w: generator %q needs positive rated voltage, power and speed", ErrConfigInvalid, g.Name)
		}
		if g.Drive == DriveRAT && g.RatedAirspeedKts <= 0 {
			return fmt.Errorf("%w: RAT generator %q needs a rated airspeed", ErrConfigInvalid, g.Name)
		}
		if g.MaxOverloadSec <= 0 {
			return fmt.Errorf("%w: generator %q needs a positive overload budget", ErrConfigInvalid, g.Name)
		}
	}
	for _, b := range c.Batteries {
		if err := claim("battery", b.Name); err != nil {
			return err
		}
		if b.RatedVoltage <= 0 || b.CapacityAh <= 0 {
			return fmt.Errorf("%w: battery %q needs positive voltage and capacity", ErrConfigInvalid, b.Name)
		}
	}
	for _, inv := range c.Inverters {
		if err := claim("inverter", inv.Name); err != nil {
			return err
		}
		if inv.Efficiency <= 0 || inv.Efficiency > 1 {
			return fmt.Errorf("%w: inverter %q efficiency must be in (0,1]", ErrConfigInvalid, inv.Name)
		}
		if inv.VoltageRatio <= 0 {
			return fmt.Errorf("%w: inverter %q needs a positive voltage ratio", ErrConfigInvalid, inv.Name)
		}
	}

	buses := make(map[string]bool, len(c.Buses))
	for _, b := range c.Buses {
		if err := claim("bus", b.Name); err != nil {
			return err
		}
		if b.CapacityW <= 0 {
			return fmt.Errorf("%w: bus %q needs a positive capacity", ErrConfigInvalid, b.Name)
		}
		buses[b.Name] = true
	}

	// Cross-references.
	for _, inv := range c.Inverters {
		if !buses[inv.SourceBus] {
			return fmt.Errorf("%w: inverter %q references unknown bus %q", ErrUnknownEntity, inv.Name, inv.SourceBus)
		}
	}
	for _, b := range c.Batteries {
		if b.Bus != "" && !buses[b.Bus] {
			return fmt.Errorf("%w: battery %q references unknown bus %q", ErrUnknownEntity, b.Name, b.Bus)
		}
	}
	for _, b := range c.Buses {
		for _, src := range b.Sources {
			kind, ok := names[src.Name]
			if !ok {
				return fmt.Errorf("%w: bus %q source %q not declared", ErrUnknownEntity, b.Name, src.Name)
			}
			switch src.Kind {
			case SourceEngineGenerator, SourceAPUGenerator, SourceGroundPower:
				if kind != "generator" {
					return fmt.Errorf("%w: bus %q source %q is a %s, not a generator", ErrConfigInvalid, b.Name, src.Name, kind)
				}
			case SourceBattery:
				if kind != "battery" {
					return fmt.Errorf("%w: bus %q source %q is a %s, not a battery", ErrConfigInvalid, b.Name, src.Name, kind)
				}
			case SourceInverter:
				if kind != "inverter" {
					return fmt.Errorf("%w: bus %q source %q is a %s, not an inverter", ErrConfigInvalid, b.Name, src.Name, kind)
				}
			default:
				return fmt.Errorf("%w: bus %q source %q has unknown kind", ErrConfigInvalid, b.Name, src.Name)
			}
		}
	}
	loadNames := make(map[string]bool, len(c.Loads))
	for _, l := range c.Loads {
		if l.Name == "" {
			return fmt.Errorf("%w: load with empty name", ErrConfigInvalid)
		}
		if loadNames[l.Name] {
			return fmt.Errorf("%w: load %q", ErrDuplicateEntity, l.Name)
		}
		loadNames[l.Name] = true
		if !buses[l.Bus] {
			return fmt.Errorf("%w: load %q references unknown bus %q", ErrUnknownEntity, l.Name, l.Bus)
		}
		if l.PowerW < 0 || l.BreakerRatingA <= 0 {
			return fmt.Errorf("%w: load %q needs non-negative power and a positive breaker rating", ErrConfigInvalid, l.Name)
		}
	}
	return nil
}
