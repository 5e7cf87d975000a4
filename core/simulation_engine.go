package core

import (
	"sync"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/core/avionics"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/electrical"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/environmental"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/hydraulic"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/observability"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// Snapshot is the aggregate, fully denormalized view of one frame: the
// kinematic input, every subsystem's display data, and the merged alert
// list sorted most-severe first. Every field is a value copy safe to hold
// after the engine advances.
type Snapshot struct {
	Frame     uint64  `json:"frame"`
	SimTimeMs float64 `json:"sim_time_ms"`

	Aircraft model.AircraftState `json:"aircraft"`

	Electrical    electrical.DisplayData    `json:"electrical"`
	Hydraulic     hydraulic.DisplayData     `json:"hydraulic"`
	Environmental environmental.DisplayData `json:"environmental"`
	Avionics      avionics.DisplayData      `json:"avionics"`

	Alerts []model.Alert `json:"alerts"`
}

// SimulationEngine owns the four subsystem models and advances them in
// dependency order each frame: electrical first, then its bus-power
// snapshot is handed to hydraulic, environmental, and avionics. All access
// to the subsystems goes through the engine's lock, so control inputs from
// the API never interleave with a frame in progress.
type SimulationEngine struct {
	mu  sync.Mutex
	log logging.Logger

	elec *electrical.System
	hyd  *hydraulic.System
	env  *environmental.System
	avio *avionics.System

	aircraft  model.AircraftState
	frame     uint64
	simTimeMs float64

	metrics       *observability.SimCollector
	tickListeners []func(frame uint64)
}

// EngineOption customises engine construction.
type EngineOption func(*SimulationEngine)

// WithMetrics attaches a collector; the engine publishes frame timing and
// key subsystem gauges after every Step.
func WithMetrics(c *observability.SimCollector) EngineOption {
	return func(e *SimulationEngine) { e.metrics = c }
}

// NewSimulationEngine wires the four subsystems together. All four must be
// non-nil; the engine does not construct them itself because each carries
// scenario-specific configuration.
func NewSimulationEngine(
	elec *electrical.System,
	hyd *hydraulic.System,
	env *environmental.System,
	avio *avionics.System,
	log logging.Logger,
	opts ...EngineOption,
) *SimulationEngine {
	if log == nil {
		log = logging.Noop()
	}
	e := &SimulationEngine{
		log:  log,
		elec: elec,
		hyd:  hyd,
		env:  env,
		avio: avio,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// RegisterTickListener adds a callback invoked after every completed frame
// with the frame number. Listeners run inside the engine lock and must not
// call back into the engine.
func (e *SimulationEngine) RegisterTickListener(fn func(frame uint64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickListeners = append(e.tickListeners, fn)
}

// SetAircraftState replaces the kinematic input consumed by subsequent
// frames.
func (e *SimulationEngine) SetAircraftState(st model.AircraftState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aircraft = st
}

// AircraftState returns the current kinematic input.
func (e *SimulationEngine) AircraftState() model.AircraftState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aircraft
}

// Step advances the whole simulation by dtMs milliseconds. Electrical runs
// first; its status is snapshotted before any consumer runs, so the other
// subsystems observe a consistent bus-power picture even within the frame
// where a bus drops.
func (e *SimulationEngine) Step(dtMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step(dtMs)
}

func (e *SimulationEngine) step(dtMs float64) {
	start := time.Now()

	e.elec.Update(dtMs, e.aircraft)
	status := e.elec.Status()

	e.hyd.Update(dtMs, e.aircraft, status)
	e.env.Update(dtMs, e.aircraft, status)
	e.avio.Update(dtMs, e.aircraft, status)

	e.frame++
	e.simTimeMs += dtMs

	if e.metrics != nil {
		e.publishMetrics(status)
		e.metrics.ObserveFrame(time.Since(start))
	}
	for _, fn := range e.tickListeners {
		fn(e.frame)
	}
}

// Run advances the simulation by a fixed number of frames of dtMs each.
func (e *SimulationEngine) Run(frames int, dtMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < frames; i++ {
		e.step(dtMs)
	}
}

// Frame returns the number of completed frames.
func (e *SimulationEngine) Frame() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Snapshot assembles the aggregate frame view.
func (e *SimulationEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Frame:         e.frame,
		SimTimeMs:     e.simTimeMs,
		Aircraft:      e.aircraft,
		Electrical:    e.elec.DisplayData(),
		Hydraulic:     e.hyd.DisplayData(),
		Environmental: e.env.DisplayData(),
		Avionics:      e.avio.DisplayData(),
		Alerts:        e.mergedAlerts(),
	}
}

// Alerts returns every subsystem's active alerts merged into one list,
// sorted most-severe first.
func (e *SimulationEngine) Alerts() []model.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mergedAlerts()
}

func (e *SimulationEngine) mergedAlerts() []model.Alert {
	var out []model.Alert
	out = append(out, e.elec.Alerts()...)
	out = append(out, e.hyd.Alerts()...)
	out = append(out, e.env.Alerts()...)
	out = append(out, e.avio.Alerts()...)
	model.SortAlerts(out)
	return out
}

// AcknowledgeAlert forwards an acknowledgement to whichever subsystem owns
// the alert. It returns false when no subsystem has an active alert with
// that ID.
func (e *SimulationEngine) AcknowledgeAlert(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elec.AcknowledgeAlert(id) ||
		e.hyd.AcknowledgeAlert(id) ||
		e.env.AcknowledgeAlert(id) ||
		e.avio.AcknowledgeAlert(id)
}

// WithSystems runs fn with exclusive access to all four subsystems. Control
// handlers use this to apply switch and mode changes without racing a frame.
func (e *SimulationEngine) WithSystems(fn func(
	elec *electrical.System,
	hyd *hydraulic.System,
	env *environmental.System,
	avio *avionics.System,
) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.elec, e.hyd, e.env, e.avio)
}

func (e *SimulationEngine) publishMetrics(status model.ElectricalStatus) {
	powered := 0
	for _, b := range status.Buses {
		if b.Powered {
			powered++
		}
	}
	e.metrics.SetBusesPowered(powered)

	for _, c := range e.hyd.DisplayData().Circuits {
		e.metrics.SetCircuitPressure(c.Name, c.PressurePSI)
	}

	press := e.env.DisplayData().Pressurization
	e.metrics.SetCabin(press.CabinAltFt, press.DifferentialPSI)

	counts := map[string]int{
		model.AlertAdvisory.String():  0,
		model.AlertCaution.String():   0,
		model.AlertWarning.String():   0,
		model.AlertEmergency.String(): 0,
	}
	for _, a := range e.mergedAlerts() {
		counts[a.Level.String()]++
	}
	for lvl, n := range counts {
		e.metrics.SetActiveAlerts(lvl, n)
	}
}
