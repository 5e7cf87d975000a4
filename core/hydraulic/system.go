package hydraulic

import (
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

const (
	// Priority management engages once circuit pressure drops below 80%
	// of rated; classes starved below their configured minimum get their
	// available actuator pressure halved (soft degradation).
	degradedPressureFraction = 0.8
	starvedPressureFactor    = 0.5

	// Reservoir levels below this fraction of capacity cause pump
	// cavitation.
	cavitationReservoirFraction = 0.10

	// Baseline internal leakage per circuit.
	internalLeakGPM = 0.2

	// Position error below which an actuator is considered settled.
	positionDeadband = 0.002
)

// PumpStatus is a pump's coarse operating state.
type PumpStatus int

const (
	PumpOff PumpStatus = iota
	PumpOn
	PumpFaulted
)

func (s PumpStatus) String() string {
	switch s {
	case PumpOff:
		return "OFF"
	case PumpOn:
		return "ON"
	case PumpFaulted:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

type pump struct {
	cfg PumpConfig

	switchOn    bool // electric/manual enable
	rpm         float64
	flowGPM     float64
	outletPSI   float64
	status      PumpStatus
	fault       bool
	cavitating  bool
	powered     bool // electric pumps: bus state last tick
}

type reservoir struct {
	cfg         ReservoirConfig
	quantityGal float64
	leakGPM     float64 // injected leak fault
}

type accumulator struct {
	cfg          AccumulatorConfig
	pressurePSI  float64
	prechargePSI float64
}

type filter struct {
	cfg            FilterConfig
	diffPSI        float64
	bypass         bool
	changeRequired bool
}

type actuator struct {
	cfg ActuatorConfig

	target       float64
	position     float64
	velocity     float64 // travel fraction per second
	availablePSI float64
	demandGPM    float64
}

type reliefValve struct {
	cfg      ReliefValveConfig
	position float64 // 0 closed .. 1 full open
}

type circuit struct {
	cfg CircuitConfig

	pressurePSI float64
	supplyGPM   float64
	demandGPM   float64

	pumps     []*pump
	reservoir *reservoir
	accum     *accumulator
	filt      *filter
	actuators []*actuator
	relief    *reliefValve
}

// System simulates pressure generation, storage, valving and actuation for
// a set of independent hydraulic circuits. Electric pumps gate on the
// electrical snapshot supplied to Update; engine pumps follow engine speed.
type System struct {
	log  logging.Logger
	book *model.AlertBook

	circuits []*circuit

	// Setter indexes, built once at construction.
	pumpByName     map[string]*pump
	actuatorByName map[string]*actuator
	circuitByName  map[string]*circuit

	ratDeployed bool
}

// Option customises System construction.
type Option func(*System)

// WithClock overrides the alert timestamp clock.
func WithClock(clock func() time.Time) Option {
	return func(s *System) { s.book = model.NewAlertBook("HYD", clock) }
}

// New builds the hydraulic system. Configuration errors surface here and
// never mid-simulation.
func New(cfg Config, log logging.Logger, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	s := &System{
		log:            log,
		book:           model.NewAlertBook("HYD", nil),
		pumpByName:     make(map[string]*pump),
		actuatorByName: make(map[string]*actuator),
		circuitByName:  make(map[string]*circuit),
	}

	for _, cc := range cfg.Circuits {
		c := &circuit{
			cfg:       cc,
			reservoir: &reservoir{cfg: cc.Reservoir, quantityGal: cc.Reservoir.InitialGal},
			accum: &accumulator{
				cfg:          cc.Accumulator,
				pressurePSI:  cc.Accumulator.PrechargePSI,
				prechargePSI: cc.Accumulator.PrechargePSI,
			},
			filt:   &filter{cfg: cc.Filter},
			relief: &reliefValve{cfg: cc.ReliefValve},
		}
		for _, pc := range cc.Pumps {
			p := &pump{cfg: pc, switchOn: pc.Kind == PumpElectric}
			c.pumps = append(c.pumps, p)
			s.pumpByName[pc.Name] = p
		}
		for _, acn := range cc.Actuators {
			a := &actuator{cfg: acn}
			c.actuators = append(c.actuators, a)
			s.actuatorByName[acn.Name] = a
		}
		s.circuits = append(s.circuits, c)
		s.circuitByName[cc.Name] = c
	}

	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Update advances all circuits by dtMs milliseconds. Zero-flow and
// zero-time edge cases default to zero rather than dividing.
func (s *System) Update(dtMs float64, ac model.AircraftState, elec model.ElectricalStatus) {
	dt := dtMs / 1000.0
	if dt < 0 {
		dt = 0
	}
	for _, c := range s.circuits {
		s.updateCircuit(c, dt, ac, elec)
	}
	s.recomputeAlerts()
}

func (s *System) updateCircuit(c *circuit, dt float64, ac model.AircraftState, elec model.ElectricalStatus) {
	// 1) Pumps: rate-limited first-order speed response toward the drive
	// target, then flow and outlet pressure from the speed ratio.
	lowFluid := c.reservoir.quantityGal < cavitationReservoirFraction*c.reservoir.cfg.CapacityGal
	c.supplyGPM = 0
	for _, p := range c.pumps {
		target := s.pumpTargetRPM(p, ac, elec)

		maxStep := p.cfg.MaxAccelRPMPerSec * dt
		delta := target - p.rpm
		if delta > maxStep {
			delta = maxStep
		} else if delta < -maxStep {
			delta = -maxStep
		}
		p.rpm += delta

		driven := p.rpm >= p.cfg.MinRPM
		p.cavitating = driven && lowFluid
		switch {
		case p.fault:
			p.status = PumpFaulted
		case driven && !lowFluid:
			p.status = PumpOn
		default:
			p.status = PumpOff
		}

		if p.status != PumpOn {
			p.flowGPM = 0
			p.outletPSI = 0
			continue
		}

		speedRatio := clamp(p.rpm/p.cfg.RatedRPM, 0, 1)
		p.flowGPM = p.cfg.RatedFlowGPM * speedRatio * p.cfg.Efficiency
		flowRatio := 0.0
		if p.cfg.RatedFlowGPM > 0 {
			flowRatio = p.flowGPM / p.cfg.RatedFlowGPM
		}
		p.outletPSI = math.Min(
			p.cfg.RatedPressurePSI,
			p.cfg.RatedPressurePSI*flowRatio-c.pressurePSI*c.cfg.BackpressureFactor,
		)
		if p.outletPSI < 0 {
			p.outletPSI = 0
		}

		// Check valve: a pump only feeds the circuit while its outlet
		// exceeds system pressure.
		if p.outletPSI > c.pressurePSI {
			c.supplyGPM += p.flowGPM
		}
	}

	// 2) Priority management, then actuators.
	degraded := c.pressurePSI < degradedPressureFraction*c.cfg.RatedPressurePSI
	c.demandGPM = internalLeakGPM + c.reservoir.leakGPM
	for _, a := range c.actuators {
		a.availablePSI = c.pressurePSI
		if degraded && c.cfg.Priorities.Min(a.cfg.Class) > c.pressurePSI {
			a.availablePSI *= starvedPressureFactor
		}
		s.updateActuator(a, dt, c.cfg.RatedPressurePSI)
		c.demandGPM += a.demandGPM
	}

	// 3) Relief valve opens proportionally between crack and full-open.
	if rv := c.relief; rv.cfg.CrackPSI > 0 {
		span := rv.cfg.FullOpenPSI - rv.cfg.CrackPSI
		if span > 0 {
			rv.position = clamp((c.pressurePSI-rv.cfg.CrackPSI)/span, 0, 1)
		} else {
			rv.position = 0
		}
		c.demandGPM += rv.position * rv.cfg.FlowGPM
	}

	// 4) Accumulator charges from the circuit when system pressure is
	// higher, discharges into it when the circuit sags below the
	// accumulator; nitrogen precharge leaks linearly.
	acc := c.accum
	discharging := false
	if acc.cfg.ChargeRatePSIPerSec > 0 {
		if c.pressurePSI > acc.pressurePSI {
			step := math.Min(acc.cfg.ChargeRatePSIPerSec*dt, c.pressurePSI-acc.pressurePSI)
			acc.pressurePSI += step
			if step > 0 {
				c.demandGPM += acc.cfg.SupportFlowGPM * 0.25 // charging bleed
			}
		} else if acc.pressurePSI > c.pressurePSI && acc.pressurePSI > acc.prechargePSI {
			// Fluid is only stored above the nitrogen precharge; the
			// accumulator cannot discharge past it.
			step := math.Min(acc.cfg.ChargeRatePSIPerSec*dt, acc.pressurePSI-c.pressurePSI)
			step = math.Min(step, acc.pressurePSI-acc.prechargePSI)
			acc.pressurePSI -= step
			c.supplyGPM += acc.cfg.SupportFlowGPM
			discharging = true
		}
	}
	acc.prechargePSI -= acc.cfg.NitrogenLeakPSIPerHour * dt / 3600.0
	if acc.prechargePSI < 0 {
		acc.prechargePSI = 0
	}

	// 5) Integrate circuit pressure from net flow through the trapped
	// volume, clamped to what the online pumps can produce.
	net := c.supplyGPM - c.demandGPM
	c.pressurePSI += net * dt / 60.0 * c.cfg.BulkModulusPSI / c.cfg.TrappedVolumeGal

	maxProducible := 0.0
	for _, p := range c.pumps {
		if p.status == PumpOn && p.cfg.RatedPressurePSI > maxProducible {
			maxProducible = p.cfg.RatedPressurePSI
		}
	}
	ceiling := c.cfg.RatedPressurePSI
	if maxProducible > 0 && maxProducible < ceiling {
		ceiling = maxProducible
	}
	if net > 0 && c.pressurePSI > ceiling {
		c.pressurePSI = ceiling
	}
	// Accumulator support can hold the circuit up, never push it past the
	// accumulator itself.
	if discharging && c.pressurePSI > acc.pressurePSI {
		c.pressurePSI = acc.pressurePSI
	}
	c.pressurePSI = clamp(c.pressurePSI, 0, c.cfg.RatedPressurePSI)

	// 6) Filter differential follows total flow; annunciation thresholds
	// are fixed and changeRequired latches.
	f := c.filt
	f.diffPSI = clamp(f.cfg.DiffPSIPerGPM*c.supplyGPM, 0, f.cfg.MaxDiffPSI)
	f.bypass = f.cfg.BypassPSI > 0 && f.diffPSI >= f.cfg.BypassPSI
	if f.cfg.ChangeRequiredPSI > 0 && f.diffPSI >= f.cfg.ChangeRequiredPSI {
		f.changeRequired = true
	}

	// 7) Reservoir bookkeeping: injected leaks drain it; quantity is
	// clamped to [0, capacity].
	c.reservoir.quantityGal -= c.reservoir.leakGPM * dt / 60.0
	c.reservoir.quantityGal = clamp(c.reservoir.quantityGal, 0, c.reservoir.cfg.CapacityGal)
}

func (s *System) pumpTargetRPM(p *pump, ac model.AircraftState, elec model.ElectricalStatus) float64 {
	if p.fault {
		return 0
	}
	switch p.cfg.Kind {
	case PumpEngine:
		return p.cfg.RatedRPM * p.cfg.GearRatio * ac.Engine(p.cfg.EngineIndex).N2 / 100.0
	case PumpElectric:
		p.powered = elec.BusPowered(p.cfg.PowerBus)
		if p.switchOn && p.powered {
			return p.cfg.FixedRPM
		}
		return 0
	case PumpManual:
		if p.switchOn {
			return p.cfg.FixedRPM
		}
		return 0
	case PumpRAT:
		if s.ratDeployed && p.cfg.RatedAirspeedKts > 0 {
			return p.cfg.RatedRPM * clamp(ac.AirspeedKts/p.cfg.RatedAirspeedKts, 0, 1)
		}
		return 0
	default:
		return 0
	}
}

// updateActuator advances one actuator: position error selects travel
// direction and piston area, net force derives a target velocity, and the
// velocity converges on it with a bounded first-order response.
func (s *System) updateActuator(a *actuator, dt, ratedPSI float64) {
	err := a.target - a.position
	if math.Abs(err) < positionDeadband {
		a.position = a.target
		a.velocity = 0
		a.demandGPM = 0
		return
	}

	dir := 1.0
	area := a.cfg.ExtendAreaSqIn
	if err < 0 {
		dir = -1.0
		area = a.cfg.RetractAreaSqIn
	}

	pressureForce := a.availablePSI * area
	netForce := pressureForce - a.cfg.FrictionLbf
	targetVel := 0.0
	if netForce > 0 && ratedPSI > 0 {
		ratedForce := ratedPSI * area
		targetVel = dir * a.cfg.MaxRatePerSec * clamp(netForce/ratedForce, 0, 1)
	}

	response := a.cfg.RateResponsePerSec
	if response <= 0 {
		response = 10 // effectively immediate
	}
	maxStep := a.cfg.MaxRatePerSec * response * dt
	dv := targetVel - a.velocity
	if dv > maxStep {
		dv = maxStep
	} else if dv < -maxStep {
		dv = -maxStep
	}
	a.velocity += dv

	// Never overshoot the target within one tick.
	step := a.velocity * dt
	if (dir > 0 && step > err) || (dir < 0 && step < err) {
		step = err
		a.velocity = 0
	}
	a.position += step
	if a.cfg.Kind == ActuatorLinear {
		a.position = clamp(a.position, 0, 1)
	} else {
		a.position = math.Mod(a.position+1, 1)
	}

	a.demandGPM = math.Abs(a.velocity) * a.cfg.FlowPerUnitGPM
}

//
// ---------- Control surface ----------
//

// SetActuatorTarget commands an actuator position target in [0,1]; applied
// on the next tick.
func (s *System) SetActuatorTarget(name string, target float64) error {
	a, ok := s.actuatorByName[name]
	if !ok {
		return fmt.Errorf("%w: actuator %q", ErrUnknownEntity, name)
	}
	a.target = clamp(target, 0, 1)
	return nil
}

// SetElectricPump switches an electric (or manual) pump on or off.
func (s *System) SetElectricPump(name string, on bool) error {
	p, ok := s.pumpByName[name]
	if !ok {
		return fmt.Errorf("%w: pump %q", ErrUnknownEntity, name)
	}
	if p.cfg.Kind != PumpElectric && p.cfg.Kind != PumpManual {
		return fmt.Errorf("%w: pump %q is %s-driven", ErrConfigInvalid, name, p.cfg.Kind)
	}
	p.switchOn = on
	return nil
}

// SetRATDeployed deploys or stows the ram air turbine for RAT pumps.
func (s *System) SetRATDeployed(deployed bool) { s.ratDeployed = deployed }

// InjectPumpFault fails a pump until cleared.
func (s *System) InjectPumpFault(name string) error {
	p, ok := s.pumpByName[name]
	if !ok {
		return fmt.Errorf("%w: pump %q", ErrUnknownEntity, name)
	}
	p.fault = true
	return nil
}

// ClearPumpFault clears an injected pump fault.
func (s *System) ClearPumpFault(name string) error {
	p, ok := s.pumpByName[name]
	if !ok {
		return fmt.Errorf("%w: pump %q", ErrUnknownEntity, name)
	}
	p.fault = false
	return nil
}

// InjectReservoirLeak starts draining a circuit's reservoir at the given
// rate; zero stops the leak.
func (s *System) InjectReservoirLeak(circuitName string, gpm float64) error {
	c, ok := s.circuitByName[circuitName]
	if !ok {
		return fmt.Errorf("%w: circuit %q", ErrUnknownEntity, circuitName)
	}
	if gpm < 0 {
		gpm = 0
	}
	c.reservoir.leakGPM = gpm
	return nil
}

// AcknowledgeAlert marks an active alert acknowledged.
func (s *System) AcknowledgeAlert(id string) bool { return s.book.Acknowledge(id) }

// Alerts returns the current derived alert list.
func (s *System) Alerts() []model.Alert { return s.book.Snapshot() }

func (s *System) recomputeAlerts() {
	s.book.Begin()
	for _, c := range s.circuits {
		rated := c.cfg.RatedPressurePSI
		switch {
		case c.pressurePSI < 0.25*rated:
			s.book.Raise("hyd."+c.cfg.Name+".press.low", model.AlertWarning,
				fmt.Sprintf("%s HYD PRESS LOW", c.cfg.Name))
		case c.pressurePSI < 0.5*rated:
			s.book.Raise("hyd."+c.cfg.Name+".press.low", model.AlertCaution,
				fmt.Sprintf("%s HYD PRESS LOW", c.cfg.Name))
		}
		if c.reservoir.quantityGal < 0.2*c.reservoir.cfg.CapacityGal {
			s.book.Raise("hyd."+c.cfg.Name+".qty.low", model.AlertCaution,
				fmt.Sprintf("%s HYD QTY LOW", c.cfg.Name))
		}
		if c.filt.bypass {
			s.book.Raise("hyd."+c.cfg.Name+".filter.bypass", model.AlertAdvisory,
				fmt.Sprintf("%s HYD FILTER BYPASS", c.cfg.Name))
		}
		if c.filt.changeRequired {
			s.book.Raise("hyd."+c.cfg.Name+".filter.change", model.AlertAdvisory,
				fmt.Sprintf("%s HYD FILTER CHANGE RQD", c.cfg.Name))
		}
		if c.accum.prechargePSI < 0.5*c.accum.cfg.PrechargePSI {
			s.book.Raise("hyd."+c.cfg.Name+".accum.low", model.AlertAdvisory,
				fmt.Sprintf("%s ACCUM PRECHARGE LOW", c.cfg.Name))
		}
		for _, p := range c.pumps {
			if p.fault {
				s.book.Raise("hyd.pump."+p.cfg.Name+".fault", model.AlertCaution,
					fmt.Sprintf("%s PUMP FAIL", p.cfg.Name))
			}
			if p.cavitating {
				s.book.Raise("hyd.pump."+p.cfg.Name+".cavitation", model.AlertCaution,
					fmt.Sprintf("%s PUMP CAVITATION", p.cfg.Name))
			}
		}
	}
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
