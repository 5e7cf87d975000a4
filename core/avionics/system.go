package avionics

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// System simulates the avionics suite: flight management, autopilot, radio
// navigation, TCAS, transponder and weather radar. Each component runs at
// its own fixed rate off an accumulator inside one tick call.
type System struct {
	log  logging.Logger
	book *model.AlertBook
	cfg  Config

	fms   *fms
	ap    *autopilot
	gps   *gps
	xpdr  *transponder
	tcas  *tcas
	radar *weatherRadar

	radios      []*navRadio
	radioByName map[string]*navRadio

	// Sub-update accumulators, milliseconds.
	fmsAccMs   float64
	apAccMs    float64
	navAccMs   float64
	radarAccMs float64
}

// Option customises System construction.
type Option func(*System)

// WithClock overrides the wall clock used for alert timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *System) { s.book = model.NewAlertBook("AVIO", clock) }
}

// New builds the avionics system from configuration. It fails fast on
// malformed configuration and never errors afterwards.
func New(cfg Config, log logging.Logger, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	s := &System{
		log:         log,
		book:        model.NewAlertBook("AVIO", nil),
		cfg:         cfg,
		fms:         &fms{},
		ap:          &autopilot{cfg: cfg.Autopilot},
		gps:         &gps{cfg: cfg.GPS, hdop: 99},
		xpdr:        &transponder{mode: XpdrStandby, code: 1200},
		tcas:        &tcas{cfg: cfg.TCAS},
		radar:       newWeatherRadar(cfg.Radar),
		radioByName: make(map[string]*navRadio),
	}
	for _, rc := range cfg.NavRadios {
		r := &navRadio{cfg: rc, flagged: true}
		s.radios = append(s.radios, r)
		s.radioByName[rc.Name] = r
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Update advances the avionics by dtMs milliseconds. Components whose
// accumulated time has not reached their update interval hold their last
// computed state.
func (s *System) Update(dtMs float64, ac model.AircraftState, elec model.ElectricalStatus) {
	if dtMs < 0 {
		dtMs = 0
	}

	s.fms.powered = elec.BusPowered(s.cfg.Buses.FMS)
	apPowered := elec.BusPowered(s.cfg.Buses.Autopilot)
	navPowered := elec.BusPowered(s.cfg.Buses.Nav)
	radarPowered := elec.BusPowered(s.cfg.Buses.Radar)
	tcasPowered := elec.BusPowered(s.cfg.Buses.TCAS)
	xpdrPowered := elec.BusPowered(s.cfg.Buses.Transponder)

	if s.ap.engaged && !apPowered {
		s.ap.engaged = false
		s.log.Warn(context.Background(), "autopilot disengaged on bus power loss",
			logging.String("bus", s.cfg.Buses.Autopilot))
	}
	s.ap.powered = apPowered

	s.fmsAccMs += dtMs
	if interval := 1000 / s.cfg.Rates.FMSHz; s.fmsAccMs >= interval {
		if s.fms.powered {
			s.fms.update(ac.LatitudeDeg, ac.LongitudeDeg, ac.AltitudeFt, ac.GroundSpeedKts)
			s.activateArmedModes()
		}
		s.fmsAccMs = 0
	}

	s.apAccMs += dtMs
	if interval := 1000 / s.cfg.Rates.AutopilotHz; s.apAccMs >= interval {
		if apPowered {
			s.ap.update(normalizeDeg(rad2deg(ac.HeadingRad)), ac.AltitudeFt, s.fms)
		}
		s.apAccMs = 0
	}

	s.navAccMs += dtMs
	if interval := 1000 / s.cfg.Rates.NavHz; s.navAccMs >= interval {
		dt := s.navAccMs / 1000
		if navPowered {
			for _, r := range s.radios {
				r.update(s.cfg.Stations, ac.LatitudeDeg, ac.LongitudeDeg, ac.AltitudeFt)
			}
		} else {
			for _, r := range s.radios {
				r.flagged = true
				r.gsValid = false
			}
		}
		s.gps.update(dt, navPowered)
		s.xpdr.update(dt, xpdrPowered)
		if tcasPowered {
			s.tcas.update(ac)
		} else {
			s.tcas.advisories = s.tcas.advisories[:0]
		}
		s.navAccMs = 0
	}

	s.radarAccMs += dtMs
	if interval := 1000 / s.cfg.Rates.RadarHz; s.radarAccMs >= interval {
		s.radar.update(s.radarAccMs/1000, ac, radarPowered)
		s.radarAccMs = 0
	}

	s.recomputeAlerts()
}

// activateArmedModes promotes armed LNAV/VNAV once the FMS has an active
// leg to couple to.
func (s *System) activateArmedModes() {
	if _, ok := s.fms.activeWaypoint(); !ok {
		return
	}
	for i, m := range s.ap.armedLateral {
		if m == LatLNAV {
			s.ap.lateralMode = LatLNAV
			s.ap.armedLateral = append(s.ap.armedLateral[:i], s.ap.armedLateral[i+1:]...)
			break
		}
	}
	for i, m := range s.ap.armedVertical {
		if m == VertVNAV {
			s.ap.verticalMode = VertVNAV
			s.ap.armedVertical = append(s.ap.armedVertical[:i], s.ap.armedVertical[i+1:]...)
			break
		}
	}
}

//
// ---------- Control surface ----------
//

// SetFlightPlan loads a new plan and activates its first waypoint.
func (s *System) SetFlightPlan(plan []Waypoint) error {
	if len(plan) == 0 {
		return fmt.Errorf("%w: empty plan", ErrConfigInvalid)
	}
	s.fms.plan = append([]Waypoint(nil), plan...)
	s.fms.activeIndex = 0
	s.fms.planComplete = false
	return nil
}

// DirectTo jumps the active waypoint.
func (s *System) DirectTo(index int) error {
	if index < 0 || index >= len(s.fms.plan) {
		return fmt.Errorf("%w: waypoint index %d", ErrUnknownEntity, index)
	}
	s.fms.activeIndex = index
	s.fms.planComplete = false
	return nil
}

// EngageAutopilot engages or disengages the autopilot servos. Engagement
// drops automatically if the autopilot bus loses power.
func (s *System) EngageAutopilot(engaged bool) {
	s.ap.engaged = engaged
}

// SetLateralMode activates a lateral mode immediately.
func (s *System) SetLateralMode(m LateralMode) { s.ap.lateralMode = m }

// SetVerticalMode activates a vertical mode immediately.
func (s *System) SetVerticalMode(m VerticalMode) { s.ap.verticalMode = m }

// SetSpeedMode activates a speed mode immediately.
func (s *System) SetSpeedMode(m SpeedMode) { s.ap.speedMode = m }

// ArmLateralMode arms a lateral mode for capture.
func (s *System) ArmLateralMode(m LateralMode) {
	for _, am := range s.ap.armedLateral {
		if am == m {
			return
		}
	}
	s.ap.armedLateral = append(s.ap.armedLateral, m)
}

// ArmVerticalMode arms a vertical mode for capture.
func (s *System) ArmVerticalMode(m VerticalMode) {
	for _, am := range s.ap.armedVertical {
		if am == m {
			return
		}
	}
	s.ap.armedVertical = append(s.ap.armedVertical, m)
}

// SetHeadingBug moves the heading bug, degrees.
func (s *System) SetHeadingBug(deg float64) { s.ap.headingBugDeg = normalizeDeg(deg) }

// SetTargetAltitude sets the selected altitude, feet.
func (s *System) SetTargetAltitude(ft float64) { s.ap.targetAltFt = ft }

// SetTargetVS sets the selected vertical speed, FPM.
func (s *System) SetTargetVS(fpm float64) { s.ap.targetVSFPM = fpm }

// SetTargetSpeed sets the selected airspeed, knots.
func (s *System) SetTargetSpeed(kts float64) { s.ap.targetIASKts = kts }

// TuneNavRadio tunes a receiver, MHz.
func (s *System) TuneNavRadio(name string, freqMHz float64) error {
	r, ok := s.radioByName[name]
	if !ok {
		return fmt.Errorf("%w: nav radio %q", ErrUnknownEntity, name)
	}
	r.freqMHz = freqMHz
	return nil
}

// SetOBSCourse selects a receiver's omni course, degrees.
func (s *System) SetOBSCourse(name string, courseDeg float64) error {
	r, ok := s.radioByName[name]
	if !ok {
		return fmt.Errorf("%w: nav radio %q", ErrUnknownEntity, name)
	}
	r.obsCourseDeg = normalizeDeg(courseDeg)
	return nil
}

// SetTransponder selects the transponder mode and squawk code.
func (s *System) SetTransponder(mode TransponderMode, code int) error {
	if code < 0 || code > 0o7777 {
		return fmt.Errorf("%w: squawk code %04o", ErrConfigInvalid, code)
	}
	s.xpdr.mode = mode
	s.xpdr.code = code
	return nil
}

// IdentTransponder starts the 18-second ident pulse.
func (s *System) IdentTransponder() { s.xpdr.identSec = 18 }

// SetTraffic replaces the TCAS target list; the surveillance feed is
// external.
func (s *System) SetTraffic(targets []TrafficTarget) {
	s.tcas.targets = append(s.tcas.targets[:0], targets...)
}

// SetWeatherCells replaces the precipitation field painted by the radar.
func (s *System) SetWeatherCells(cells []WeatherCell) {
	s.radar.cells = append(s.radar.cells[:0], cells...)
}

// AcknowledgeAlert marks an active alert acknowledged.
func (s *System) AcknowledgeAlert(id string) bool { return s.book.Acknowledge(id) }

// Alerts returns the current derived alert list.
func (s *System) Alerts() []model.Alert { return s.book.Snapshot() }

func (s *System) recomputeAlerts() {
	s.book.Begin()

	if !s.fms.powered {
		s.book.Raise("av.fms.unpowered", model.AlertCaution, "FMS FAIL")
	}
	if s.fms.planComplete {
		s.book.Raise("av.fms.planend", model.AlertAdvisory, "END OF ROUTE")
	}

	if s.ap.engaged {
		if s.ap.bankLimitExceeded {
			s.book.Raise("av.ap.bank.limit", model.AlertWarning, "AP BANK LIMIT")
		}
		if s.ap.vsLimitExceeded {
			s.book.Raise("av.ap.vs.limit", model.AlertWarning, "AP VS LIMIT")
		}
	}

	if s.gps.state == GPSNavigating && !s.gps.raimAvailable {
		s.book.Raise("av.gps.noraim", model.AlertAdvisory, "GPS RAIM UNAVAIL")
	}

	if adv, ok := s.tcas.highestThreat(); ok {
		switch adv.Level {
		case ThreatResolution:
			s.book.Raise("av.tcas.ra", model.AlertWarning,
				fmt.Sprintf("%s %s", adv.Sense, adv.Sense))
		case ThreatTraffic:
			s.book.Raise("av.tcas.ta", model.AlertCaution, "TRAFFIC TRAFFIC")
		}
	}
}
