package electrical

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// Tuning constants for the generation and distribution models.
const (
	// A generator qualifies as online once it reaches 95% of rated
	// voltage and 98% of rated frequency with its breaker closed.
	onlineVoltageFraction   = 0.95
	onlineFrequencyFraction = 0.98

	// Breakers trip at 110% of rated current and stay tripped until
	// explicitly reset.
	breakerTripFraction = 1.1

	// Battery electrical and thermal model coefficients.
	batterySOCVoltageFloor = 0.9  // terminal voltage fraction at SOC 0
	batterySOCVoltageSpan  = 0.1  // additional fraction at SOC 1
	batteryHeatLossFactor  = 0.05 // fraction of |I|*V dissipated as heat
	batteryCoolingWPerC    = 2.0  // passive cooling per °C above ambient
	batteryThermalMassJPerC = 4000.0
)

// GeneratorStatus is a generator's coarse health state.
type GeneratorStatus int

const (
	GenOffline GeneratorStatus = iota
	GenOnline
	GenFailed
)

func (s GeneratorStatus) String() string {
	switch s {
	case GenOffline:
		return "OFFLINE"
	case GenOnline:
		return "ONLINE"
	case GenFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// generator, battery, inverter, bus and load are the mutable entities. They
// are created once at construction and updated in place every tick.
type generator struct {
	cfg GeneratorConfig

	speedRPM    float64
	voltage     float64
	frequencyHz float64
	loadW       float64
	overloadSec float64

	breakerClosed bool
	online        bool
	status        GeneratorStatus
	faultInjected bool
}

type battery struct {
	cfg BatteryConfig

	switchOn bool
	voltage  float64
	currentA float64 // positive = discharge
	soc      float64
	tempC    float64
}

func (b *battery) remainingCapacityAh() float64 {
	return b.soc * b.cfg.CapacityAh
}

type inverter struct {
	cfg InverterConfig

	enabled       bool
	inputVoltage  float64
	outputVoltage float64
	powered       bool
}

type bus struct {
	cfg BusConfig

	powered    bool
	voltage    float64
	sourceName string
	sourceKind SourceKind
	loadW      float64
	shedW      float64
}

type load struct {
	cfg LoadConfig

	powered        bool
	shed           bool
	currentA       float64
	breakerTripped bool
}

// System simulates electrical generation, storage, conversion and
// distribution. It is the leaf subsystem: it depends only on engine/APU
// speeds and switch state, and every other subsystem consumes its bus
// snapshot.
type System struct {
	log  logging.Logger
	book *model.AlertBook

	generators []*generator
	batteries  []*battery
	inverters  []*inverter
	buses      []*bus
	loads      []*load

	// Name indexes are built once for the setter surface; the per-tick
	// paths iterate the slices directly.
	genByName  map[string]*generator
	batByName  map[string]*battery
	invByName  map[string]*inverter
	busByName  map[string]*bus
	loadByName map[string]*load

	groundPowerAvailable bool
	ratDeployed          bool
}

// Option customises System construction.
type Option func(*System)

// WithClock overrides the wall clock used for alert timestamps; tests use
// this for determinism.
func WithClock(clock func() time.Time) Option {
	return func(s *System) { s.book = model.NewAlertBook("ELEC", clock) }
}

// New builds the electrical system from configuration. It fails fast on
// malformed configuration and never errors afterwards.
func New(cfg Config, log logging.Logger, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	s := &System{
		log:        log,
		book:       model.NewAlertBook("ELEC", nil),
		genByName:  make(map[string]*generator),
		batByName:  make(map[string]*battery),
		invByName:  make(map[string]*inverter),
		busByName:  make(map[string]*bus),
		loadByName: make(map[string]*load),
	}

	for _, gc := range cfg.Generators {
		g := &generator{cfg: gc, breakerClosed: true, status: GenOffline}
		s.generators = append(s.generators, g)
		s.genByName[gc.Name] = g
	}
	for _, bc := range cfg.Batteries {
		b := &battery{cfg: bc, switchOn: true, soc: 1.0, tempC: 15.0}
		b.voltage = bc.RatedVoltage * (batterySOCVoltageFloor + batterySOCVoltageSpan)
		s.batteries = append(s.batteries, b)
		s.batByName[bc.Name] = b
	}
	for _, ic := range cfg.Inverters {
		inv := &inverter{cfg: ic, enabled: true}
		s.inverters = append(s.inverters, inv)
		s.invByName[ic.Name] = inv
	}
	for _, bc := range cfg.Buses {
		b := &bus{cfg: bc}
		s.buses = append(s.buses, b)
		s.busByName[bc.Name] = b
	}
	for _, lc := range cfg.Loads {
		l := &load{cfg: lc}
		s.loads = append(s.loads, l)
		s.loadByName[lc.Name] = l
	}

	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Update advances the electrical simulation by dtMs milliseconds using the
// supplied kinematic snapshot. It always completes and leaves every entity
// in a valid, possibly degraded, state.
func (s *System) Update(dtMs float64, ac model.AircraftState) {
	dt := dtMs / 1000.0
	if dt < 0 {
		dt = 0
	}

	s.updateGenerators(ac)
	s.updateBatteryVoltages()

	// Bus source selection runs twice: the first pass settles DC buses so
	// inverters see this frame's DC state, the second pass lets AC buses
	// pick up fresh inverter output.
	s.selectBusSources()
	s.updateInverters()
	s.selectBusSources()

	s.updateLoads()
	s.attributeSourceLoads()
	s.integrateBatteries(dt, ac.AmbientTempC)
	s.integrateGeneratorOverload(dt)

	s.recomputeAlerts(ac)
}

func (s *System) updateGenerators(ac model.AircraftState) {
	for _, g := range s.generators {
		switch g.cfg.Drive {
		case DriveEngine:
			g.speedRPM = g.cfg.RatedSpeedRPM * ac.Engine(g.cfg.EngineIndex).N2 / 100.0
		case DriveAPU:
			if ac.APU.Running {
				g.speedRPM = g.cfg.RatedSpeedRPM * ac.APU.RPMPercent / 100.0
			} else {
				g.speedRPM = 0
			}
		case DriveGround:
			if s.groundPowerAvailable {
				g.speedRPM = g.cfg.RatedSpeedRPM
			} else {
				g.speedRPM = 0
			}
		case DriveRAT:
			if s.ratDeployed && g.cfg.RatedAirspeedKts > 0 {
				ratio := ac.AirspeedKts / g.cfg.RatedAirspeedKts
				g.speedRPM = g.cfg.RatedSpeedRPM * clamp(ratio, 0, 1)
			} else {
				g.speedRPM = 0
			}
		}

		ratio := math.Min(1, g.speedRPM/g.cfg.RatedSpeedRPM)
		if ratio < 0 {
			ratio = 0
		}
		g.voltage = g.cfg.RatedVoltage * ratio
		g.frequencyHz = g.cfg.RatedFrequencyHz * ratio

		if g.status == GenFailed || g.faultInjected {
			g.online = false
			g.voltage = 0
			g.frequencyHz = 0
			continue
		}

		freqOK := g.cfg.RatedFrequencyHz == 0 ||
			g.frequencyHz >= onlineFrequencyFraction*g.cfg.RatedFrequencyHz
		g.online = g.breakerClosed &&
			g.voltage >= onlineVoltageFraction*g.cfg.RatedVoltage &&
			freqOK
		if g.online {
			g.status = GenOnline
		} else {
			g.status = GenOffline
		}
	}
}

func (s *System) updateBatteryVoltages() {
	for _, b := range s.batteries {
		b.voltage = b.cfg.RatedVoltage*(batterySOCVoltageFloor+batterySOCVoltageSpan*b.soc) -
			b.currentA*b.cfg.InternalResistanceOhm
		if b.voltage < 0 {
			b.voltage = 0
		}
	}
}

func (s *System) updateInverters() {
	for _, inv := range s.inverters {
		src := s.busByName[inv.cfg.SourceBus]
		inv.inputVoltage = src.voltage
		if inv.enabled && src.powered {
			inv.outputVoltage = inv.inputVoltage * inv.cfg.VoltageRatio * inv.cfg.Efficiency
			inv.powered = true
		} else {
			inv.outputVoltage = 0
			inv.powered = false
		}
	}
}

// selectBusSources picks, for each bus, the highest-priority qualifying
// source. Kind rank dominates; declared priority breaks ties within a kind.
func (s *System) selectBusSources() {
	for _, b := range s.buses {
		var best *SourceRef
		var bestVoltage float64
		for i := range b.cfg.Sources {
			ref := &b.cfg.Sources[i]
			v, ok := s.sourceQualifies(ref, b.cfg.MinSourceVoltage)
			if !ok {
				continue
			}
			if best == nil ||
				ref.Kind < best.Kind ||
				(ref.Kind == best.Kind && ref.Priority < best.Priority) {
				best = ref
				bestVoltage = v
			}
		}
		if best == nil {
			b.powered = false
			b.voltage = 0
			b.sourceName = ""
			continue
		}
		b.powered = true
		b.voltage = bestVoltage
		b.sourceName = best.Name
		b.sourceKind = best.Kind
	}
}

func (s *System) sourceQualifies(ref *SourceRef, minVoltage float64) (float64, bool) {
	switch ref.Kind {
	case SourceEngineGenerator, SourceAPUGenerator, SourceGroundPower:
		g := s.genByName[ref.Name]
		if g.online && g.voltage >= minVoltage {
			return g.voltage, true
		}
	case SourceBattery:
		b := s.batByName[ref.Name]
		if b.switchOn && b.soc > 0 && b.voltage >= minVoltage {
			return b.voltage, true
		}
	case SourceInverter:
		inv := s.invByName[ref.Name]
		if inv.powered && inv.outputVoltage >= minVoltage {
			return inv.outputVoltage, true
		}
	}
	return 0, false
}

// updateLoads powers loads, trips breakers, aggregates bus demand and sheds
// non-essential loads on any overloaded bus.
func (s *System) updateLoads() {
	byBus := make(map[string][]*load, len(s.buses))
	for _, l := range s.loads {
		l.shed = false
		byBus[l.cfg.Bus] = append(byBus[l.cfg.Bus], l)
	}

	for _, b := range s.buses {
		attached := byBus[b.cfg.Name]
		b.shedW = 0

		total := 0.0
		for _, l := range attached {
			if b.powered && !l.breakerTripped {
				total += l.cfg.PowerW
			}
		}

		// Load shedding: drop non-essential loads highest shedding
		// priority first until demand fits available capacity.
		// Essential loads are never shed.
		if total > b.cfg.CapacityW {
			shedding := make([]*load, 0, len(attached))
			for _, l := range attached {
				if !l.cfg.Essential && !l.breakerTripped {
					shedding = append(shedding, l)
				}
			}
			sort.SliceStable(shedding, func(i, j int) bool {
				return shedding[i].cfg.SheddingPriority > shedding[j].cfg.SheddingPriority
			})
			for _, l := range shedding {
				if total <= b.cfg.CapacityW {
					break
				}
				l.shed = true
				total -= l.cfg.PowerW
				b.shedW += l.cfg.PowerW
			}
		}

		b.loadW = 0
		for _, l := range attached {
			l.powered = b.powered && !l.breakerTripped && !l.shed
			if !l.powered {
				l.currentA = 0
				continue
			}
			if b.voltage > 0 {
				l.currentA = l.cfg.PowerW / b.voltage
			} else {
				l.currentA = 0
			}
			if l.currentA > breakerTripFraction*l.cfg.BreakerRatingA {
				l.breakerTripped = true
				l.powered = false
				l.currentA = 0
				continue
			}
			b.loadW += l.cfg.PowerW
		}
	}
}

// attributeSourceLoads charges each bus's served demand to the entity that
// powers it, driving generator overload and battery discharge.
func (s *System) attributeSourceLoads() {
	for _, g := range s.generators {
		g.loadW = 0
	}
	discharge := make(map[string]float64, len(s.batteries))

	for _, b := range s.buses {
		if !b.powered {
			continue
		}
		switch b.sourceKind {
		case SourceEngineGenerator, SourceAPUGenerator, SourceGroundPower:
			s.genByName[b.sourceName].loadW += b.loadW
		case SourceBattery:
			discharge[b.sourceName] += b.loadW
		case SourceInverter:
			// Inverter demand lands on its DC feeder bus's source.
			inv := s.invByName[b.sourceName]
			if inv.cfg.Efficiency > 0 {
				dcW := b.loadW / inv.cfg.Efficiency
				if feeder := s.busByName[inv.cfg.SourceBus]; feeder.powered {
					switch feeder.sourceKind {
					case SourceEngineGenerator, SourceAPUGenerator, SourceGroundPower:
						s.genByName[feeder.sourceName].loadW += dcW
					case SourceBattery:
						discharge[feeder.sourceName] += dcW
					}
				}
			}
		}
	}

	for _, bat := range s.batteries {
		loadW := discharge[bat.cfg.Name]
		if loadW > 0 && bat.voltage > 0 {
			bat.currentA = loadW / bat.voltage
			continue
		}
		// Charge when the battery's own bus is powered by someone else.
		bat.currentA = 0
		if bat.cfg.Bus != "" {
			if home := s.busByName[bat.cfg.Bus]; home.powered && home.sourceName != bat.cfg.Name && bat.soc < 1 {
				bat.currentA = -bat.cfg.ChargeCurrentA
			}
		}
	}
}

func (s *System) integrateBatteries(dt, ambientC float64) {
	for _, b := range s.batteries {
		// SOC integrates from current draw; positive current discharges.
		if b.cfg.CapacityAh > 0 {
			b.soc -= b.currentA * dt / 3600.0 / b.cfg.CapacityAh
		}
		b.soc = clamp(b.soc, 0, 1)

		heatW := math.Abs(b.currentA) * b.voltage * batteryHeatLossFactor
		coolW := batteryCoolingWPerC * (b.tempC - ambientC)
		b.tempC += (heatW - coolW) * dt / batteryThermalMassJPerC
	}
}

func (s *System) integrateGeneratorOverload(dt float64) {
	for _, g := range s.generators {
		if g.status == GenFailed {
			continue
		}
		if g.loadW > g.cfg.RatedPowerW {
			g.overloadSec += dt
		} else {
			g.overloadSec = 0
		}
		if g.overloadSec > g.cfg.MaxOverloadSec {
			g.status = GenFailed
			g.online = false
			s.log.Warn(context.Background(), "generator failed from sustained overload",
				logging.String("generator", g.cfg.Name),
				logging.Any("load_w", g.loadW))
		}
	}
}

//
// ---------- Control surface ----------
//

// SetBatterySwitch commands a battery's master switch; applied this call,
// consumed on the next tick.
func (s *System) SetBatterySwitch(name string, on bool) error {
	b, ok := s.batByName[name]
	if !ok {
		return fmt.Errorf("%w: battery %q", ErrUnknownEntity, name)
	}
	b.switchOn = on
	return nil
}

// SetGeneratorBreaker opens or closes a generator's breaker.
func (s *System) SetGeneratorBreaker(name string, closed bool) error {
	g, ok := s.genByName[name]
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnknownEntity, name)
	}
	g.breakerClosed = closed
	return nil
}

// SetInverter enables or disables an inverter.
func (s *System) SetInverter(name string, enabled bool) error {
	inv, ok := s.invByName[name]
	if !ok {
		return fmt.Errorf("%w: inverter %q", ErrUnknownEntity, name)
	}
	inv.enabled = enabled
	return nil
}

// ResetBreaker resets a load's tripped breaker. Breakers never auto-reset.
func (s *System) ResetBreaker(loadName string) error {
	l, ok := s.loadByName[loadName]
	if !ok {
		return fmt.Errorf("%w: load %q", ErrUnknownEntity, loadName)
	}
	l.breakerTripped = false
	return nil
}

// SetGroundPower reports ground cart availability to ground-driven
// generators.
func (s *System) SetGroundPower(available bool) {
	s.groundPowerAvailable = available
}

// SetRATDeployed deploys or stows the ram air turbine.
func (s *System) SetRATDeployed(deployed bool) {
	s.ratDeployed = deployed
}

// InjectGeneratorFault forces a generator offline until the fault is
// cleared.
func (s *System) InjectGeneratorFault(name string) error {
	g, ok := s.genByName[name]
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnknownEntity, name)
	}
	g.faultInjected = true
	g.online = false
	return nil
}

// ClearGeneratorFault clears both injected faults and overload failures,
// letting the generator come back online once it qualifies.
func (s *System) ClearGeneratorFault(name string) error {
	g, ok := s.genByName[name]
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnknownEntity, name)
	}
	g.faultInjected = false
	g.overloadSec = 0
	if g.status == GenFailed {
		g.status = GenOffline
	}
	return nil
}

// AcknowledgeAlert marks an active alert acknowledged.
func (s *System) AcknowledgeAlert(id string) bool { return s.book.Acknowledge(id) }

//
// ---------- Snapshots ----------
//

// Status returns the bus-power snapshot consumed by the other subsystems.
// The returned value is a copy; holding it across frames is safe.
func (s *System) Status() model.ElectricalStatus {
	buses := make([]model.BusStatus, len(s.buses))
	for i, b := range s.buses {
		buses[i] = model.BusStatus{Name: b.cfg.Name, Powered: b.powered, Voltage: b.voltage}
	}
	return model.ElectricalStatus{Buses: buses}
}

// Alerts returns the current derived alert list.
func (s *System) Alerts() []model.Alert { return s.book.Snapshot() }

func (s *System) recomputeAlerts(ac model.AircraftState) {
	s.book.Begin()

	for _, g := range s.generators {
		switch {
		case g.status == GenFailed:
			s.book.Raise("elec.gen."+g.cfg.Name+".failed", model.AlertWarning,
				fmt.Sprintf("%s GEN FAIL", g.cfg.Name))
		case g.faultInjected:
			s.book.Raise("elec.gen."+g.cfg.Name+".fault", model.AlertCaution,
				fmt.Sprintf("%s GEN FAULT", g.cfg.Name))
		}
	}
	for _, b := range s.buses {
		if !b.powered {
			level := model.AlertCaution
			if hasEssentialLoad(s.loads, b.cfg.Name) {
				level = model.AlertWarning
			}
			s.book.Raise("elec.bus."+b.cfg.Name+".unpowered", level,
				fmt.Sprintf("%s BUS OFF", b.cfg.Name))
		}
		if b.shedW > 0 {
			s.book.Raise("elec.bus."+b.cfg.Name+".shed", model.AlertCaution,
				fmt.Sprintf("%s BUS LOAD SHED", b.cfg.Name))
		}
	}
	for _, bat := range s.batteries {
		if bat.soc < 0.2 {
			s.book.Raise("elec.bat."+bat.cfg.Name+".low", model.AlertCaution,
				fmt.Sprintf("%s BAT LOW", bat.cfg.Name))
		}
		if bat.tempC > 70 {
			s.book.Raise("elec.bat."+bat.cfg.Name+".hot", model.AlertWarning,
				fmt.Sprintf("%s BAT OVERHEAT", bat.cfg.Name))
		}
	}
	for _, l := range s.loads {
		if l.breakerTripped {
			s.book.Raise("elec.cb."+l.cfg.Name+".tripped", model.AlertAdvisory,
				fmt.Sprintf("%s CB TRIPPED", l.cfg.Name))
		}
	}
}

func hasEssentialLoad(loads []*load, busName string) bool {
	for _, l := range loads {
		if l.cfg.Bus == busName && l.cfg.Essential {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
