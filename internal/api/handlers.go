package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/signalsfoundry/aircraft-systems-simulator/core/avionics"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/electrical"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/environmental"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/hydraulic"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

//
// ---------- Reads ----------
//

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) getAircraft(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.AircraftState())
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Alerts())
}

func (s *Server) getElectrical(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Snapshot().Electrical)
}

func (s *Server) getHydraulic(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Snapshot().Hydraulic)
}

func (s *Server) getEnvironmental(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Snapshot().Environmental)
}

func (s *Server) getAvionics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, s.engine.Snapshot().Avionics)
}

//
// ---------- Aircraft state and alerts ----------
//

func (s *Server) putAircraft(w http.ResponseWriter, r *http.Request) {
	var st model.AircraftState
	if err := decodeBody(r, &st); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.engine.SetAircraftState(st)
	s.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alertID")
	if !s.engine.AcknowledgeAlert(id) {
		s.writeError(r.Context(), w, fmt.Errorf("%w: alert %q", avionics.ErrUnknownEntity, id))
		return
	}
	s.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

//
// ---------- Electrical controls ----------
//

type switchRequest struct {
	On bool `json:"on"`
}

type breakerRequest struct {
	Closed bool `json:"closed"`
}

type faultRequest struct {
	Active bool `json:"active"`
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

type availableRequest struct {
	Available bool `json:"available"`
}

type deployedRequest struct {
	Deployed bool `json:"deployed"`
}

func (s *Server) setBatterySwitch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return elec.SetBatterySwitch(chi.URLParam(r, "name"), req.On)
	})
}

func (s *Server) setGeneratorBreaker(w http.ResponseWriter, r *http.Request) {
	var req breakerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return elec.SetGeneratorBreaker(chi.URLParam(r, "name"), req.Closed)
	})
}

func (s *Server) setGeneratorFault(w http.ResponseWriter, r *http.Request) {
	var req faultRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		if req.Active {
			return elec.InjectGeneratorFault(chi.URLParam(r, "name"))
		}
		return elec.ClearGeneratorFault(chi.URLParam(r, "name"))
	})
}

func (s *Server) setInverter(w http.ResponseWriter, r *http.Request) {
	var req enableRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return elec.SetInverter(chi.URLParam(r, "name"), req.Enabled)
	})
}

func (s *Server) resetBreaker(w http.ResponseWriter, r *http.Request) {
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return elec.ResetBreaker(chi.URLParam(r, "name"))
	})
}

func (s *Server) setGroundPower(w http.ResponseWriter, r *http.Request) {
	var req availableRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, _ *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		elec.SetGroundPower(req.Available)
		return nil
	})
}

// setElectricalRAT deploys the ram air turbine for both the electrical and
// hydraulic systems; a deployed RAT spins both the emergency generator and
// the emergency pump.
func (s *Server) setElectricalRAT(w http.ResponseWriter, r *http.Request) {
	var req deployedRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(elec *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		elec.SetRATDeployed(req.Deployed)
		hyd.SetRATDeployed(req.Deployed)
		return nil
	})
}

//
// ---------- Hydraulic controls ----------
//

type actuatorTargetRequest struct {
	Target float64 `json:"target"`
}

type leakRequest struct {
	GPM float64 `json:"gpm"`
}

func (s *Server) setActuatorTarget(w http.ResponseWriter, r *http.Request) {
	var req actuatorTargetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return hyd.SetActuatorTarget(chi.URLParam(r, "name"), req.Target)
	})
}

func (s *Server) setElectricPump(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return hyd.SetElectricPump(chi.URLParam(r, "name"), req.On)
	})
}

func (s *Server) setPumpFault(w http.ResponseWriter, r *http.Request) {
	var req faultRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		if req.Active {
			return hyd.InjectPumpFault(chi.URLParam(r, "name"))
		}
		return hyd.ClearPumpFault(chi.URLParam(r, "name"))
	})
}

func (s *Server) injectReservoirLeak(w http.ResponseWriter, r *http.Request) {
	var req leakRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		return hyd.InjectReservoirLeak(chi.URLParam(r, "name"), req.GPM)
	})
}

func (s *Server) setHydraulicRAT(w http.ResponseWriter, r *http.Request) {
	var req deployedRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, hyd *hydraulic.System, _ *environmental.System, _ *avionics.System) error {
		hyd.SetRATDeployed(req.Deployed)
		return nil
	})
}

//
// ---------- Environmental controls ----------
//

type zoneTargetRequest struct {
	TempC float64 `json:"temp_c"`
}

type crewOxygenRequest struct {
	On   bool   `json:"on"`
	Mode string `json:"mode"`
}

func (s *Server) setPack(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		return env.SetPack(chi.URLParam(r, "name"), req.On)
	})
}

func (s *Server) setPackFault(w http.ResponseWriter, r *http.Request) {
	var req faultRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		if req.Active {
			return env.InjectPackFault(chi.URLParam(r, "name"))
		}
		return env.ClearPackFault(chi.URLParam(r, "name"))
	})
}

func (s *Server) setZoneTarget(w http.ResponseWriter, r *http.Request) {
	var req zoneTargetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		return env.SetZoneTargetTemp(chi.URLParam(r, "name"), req.TempC)
	})
}

func (s *Server) setBleedSource(w http.ResponseWriter, r *http.Request) {
	var req enableRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		return env.SetBleedSource(chi.URLParam(r, "name"), req.Enabled)
	})
}

func (s *Server) setGroundAir(w http.ResponseWriter, r *http.Request) {
	var req availableRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		env.SetGroundAir(req.Available)
		return nil
	})
}

func (s *Server) setAntiIce(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		return env.SetAntiIce(chi.URLParam(r, "name"), req.On)
	})
}

func (s *Server) setCrewOxygen(w http.ResponseWriter, r *http.Request) {
	var req crewOxygenRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	mode, err := oxygenModeFromString(req.Mode)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		env.SetCrewOxygen(req.On, mode)
		return nil
	})
}

func (s *Server) deployMasks(w http.ResponseWriter, r *http.Request) {
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, env *environmental.System, _ *avionics.System) error {
		env.DeployPassengerMasks()
		return nil
	})
}

//
// ---------- Avionics controls ----------
//

type directToRequest struct {
	Index int `json:"index"`
}

type engageRequest struct {
	Engaged bool `json:"engaged"`
}

type modesRequest struct {
	Lateral  string `json:"lateral,omitempty"`
	Vertical string `json:"vertical,omitempty"`
	Speed    string `json:"speed,omitempty"`
	Armed    bool   `json:"armed,omitempty"`
}

type targetsRequest struct {
	HeadingBugDeg *float64 `json:"heading_bug_deg,omitempty"`
	TargetAltFt   *float64 `json:"target_alt_ft,omitempty"`
	TargetVSFPM   *float64 `json:"target_vs_fpm,omitempty"`
	TargetIASKts  *float64 `json:"target_ias_kts,omitempty"`
}

type tuneRequest struct {
	FreqMHz float64 `json:"freq_mhz"`
}

type obsRequest struct {
	CourseDeg float64 `json:"course_deg"`
}

type transponderRequest struct {
	Mode string `json:"mode"`
	Code int    `json:"code"`
}

func (s *Server) setFlightPlan(w http.ResponseWriter, r *http.Request) {
	var plan []avionics.Waypoint
	if err := decodeBody(r, &plan); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		return avio.SetFlightPlan(plan)
	})
}

func (s *Server) directTo(w http.ResponseWriter, r *http.Request) {
	var req directToRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		return avio.DirectTo(req.Index)
	})
}

func (s *Server) engageAutopilot(w http.ResponseWriter, r *http.Request) {
	var req engageRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		avio.EngageAutopilot(req.Engaged)
		return nil
	})
}

func (s *Server) setAutopilotModes(w http.ResponseWriter, r *http.Request) {
	var req modesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var lat avionics.LateralMode
	var vert avionics.VerticalMode
	var spd avionics.SpeedMode
	var err error
	if req.Lateral != "" {
		if lat, err = lateralModeFromString(req.Lateral); err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
	}
	if req.Vertical != "" {
		if vert, err = verticalModeFromString(req.Vertical); err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
	}
	if req.Speed != "" {
		if spd, err = speedModeFromString(req.Speed); err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
	}

	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		if req.Lateral != "" {
			if req.Armed {
				avio.ArmLateralMode(lat)
			} else {
				avio.SetLateralMode(lat)
			}
		}
		if req.Vertical != "" {
			if req.Armed {
				avio.ArmVerticalMode(vert)
			} else {
				avio.SetVerticalMode(vert)
			}
		}
		if req.Speed != "" {
			avio.SetSpeedMode(spd)
		}
		return nil
	})
}

func (s *Server) setAutopilotTargets(w http.ResponseWriter, r *http.Request) {
	var req targetsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		if req.HeadingBugDeg != nil {
			avio.SetHeadingBug(*req.HeadingBugDeg)
		}
		if req.TargetAltFt != nil {
			avio.SetTargetAltitude(*req.TargetAltFt)
		}
		if req.TargetVSFPM != nil {
			avio.SetTargetVS(*req.TargetVSFPM)
		}
		if req.TargetIASKts != nil {
			avio.SetTargetSpeed(*req.TargetIASKts)
		}
		return nil
	})
}

func (s *Server) tuneNavRadio(w http.ResponseWriter, r *http.Request) {
	var req tuneRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		return avio.TuneNavRadio(chi.URLParam(r, "name"), req.FreqMHz)
	})
}

func (s *Server) setOBSCourse(w http.ResponseWriter, r *http.Request) {
	var req obsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		return avio.SetOBSCourse(chi.URLParam(r, "name"), req.CourseDeg)
	})
}

func (s *Server) setTransponder(w http.ResponseWriter, r *http.Request) {
	var req transponderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	mode, err := transponderModeFromString(req.Mode)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		return avio.SetTransponder(mode, req.Code)
	})
}

func (s *Server) identTransponder(w http.ResponseWriter, r *http.Request) {
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		avio.IdentTransponder()
		return nil
	})
}

func (s *Server) setTraffic(w http.ResponseWriter, r *http.Request) {
	var targets []avionics.TrafficTarget
	if err := decodeBody(r, &targets); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		avio.SetTraffic(targets)
		return nil
	})
}

func (s *Server) setWeather(w http.ResponseWriter, r *http.Request) {
	var cells []avionics.WeatherCell
	if err := decodeBody(r, &cells); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.applyControl(w, r, func(_ *electrical.System, _ *hydraulic.System, _ *environmental.System, avio *avionics.System) error {
		avio.SetWeatherCells(cells)
		return nil
	})
}

// applyControl runs a control mutation under the engine lock and writes the
// uniform success / error response.
func (s *Server) applyControl(w http.ResponseWriter, r *http.Request, fn func(
	elec *electrical.System,
	hyd *hydraulic.System,
	env *environmental.System,
	avio *avionics.System,
) error) {
	if err := s.engine.WithSystems(fn); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

//
// ---------- Enum parsing ----------
//

func lateralModeFromString(v string) (avionics.LateralMode, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "OFF":
		return avionics.LatOff, nil
	case "HDG":
		return avionics.LatHeading, nil
	case "NAV":
		return avionics.LatNav, nil
	case "LNAV":
		return avionics.LatLNAV, nil
	case "LOC":
		return avionics.LatLocalizer, nil
	default:
		return 0, fmt.Errorf("%w: unknown lateral mode %q", errBadRequest, v)
	}
}

func verticalModeFromString(v string) (avionics.VerticalMode, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "OFF":
		return avionics.VertOff, nil
	case "ALT":
		return avionics.VertAltHold, nil
	case "VS":
		return avionics.VertVS, nil
	case "VNAV":
		return avionics.VertVNAV, nil
	case "GS":
		return avionics.VertGlideslope, nil
	default:
		return 0, fmt.Errorf("%w: unknown vertical mode %q", errBadRequest, v)
	}
}

func speedModeFromString(v string) (avionics.SpeedMode, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "OFF":
		return avionics.SpdOff, nil
	case "IAS":
		return avionics.SpdIAS, nil
	case "MACH":
		return avionics.SpdMach, nil
	default:
		return 0, fmt.Errorf("%w: unknown speed mode %q", errBadRequest, v)
	}
}

func transponderModeFromString(v string) (avionics.TransponderMode, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "STBY", "STANDBY":
		return avionics.XpdrStandby, nil
	case "A", "MODE A":
		return avionics.XpdrModeA, nil
	case "C", "MODE C":
		return avionics.XpdrModeC, nil
	case "S", "MODE S":
		return avionics.XpdrModeS, nil
	default:
		return 0, fmt.Errorf("%w: unknown transponder mode %q", errBadRequest, v)
	}
}

func oxygenModeFromString(v string) (environmental.OxygenMode, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "NORM", "NORMAL":
		return environmental.OxygenNormal, nil
	case "HIGH":
		return environmental.OxygenHigh, nil
	case "100%", "EMERGENCY":
		return environmental.OxygenEmergency, nil
	default:
		return 0, fmt.Errorf("%w: unknown oxygen mode %q", errBadRequest, v)
	}
}
