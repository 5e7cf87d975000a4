package avionics

// DisplayData is the denormalized avionics snapshot for instrument
// rendering. All fields are value copies.
type DisplayData struct {
	FMS         FMSDisplay         `json:"fms"`
	Autopilot   AutopilotDisplay   `json:"autopilot"`
	NavRadios   []NavRadioDisplay  `json:"nav_radios"`
	GPS         GPSDisplay         `json:"gps"`
	Transponder TransponderDisplay `json:"transponder"`
	TCAS        TCASDisplay        `json:"tcas"`
	Radar       RadarDisplay       `json:"radar"`
}

type FMSDisplay struct {
	Powered           bool       `json:"powered"`
	FlightPlan        []Waypoint `json:"flight_plan"`
	ActiveIndex       int        `json:"active_index"`
	PlanComplete      bool       `json:"plan_complete"`
	BearingDeg        float64    `json:"bearing_deg"`
	DistanceNM        float64    `json:"distance_nm"`
	CrossTrackNM      float64    `json:"cross_track_nm"`
	DesiredTrackDeg   float64    `json:"desired_track_deg"`
	RequiredVSFPM     float64    `json:"required_vs_fpm"`
	PathDeviationFt   float64    `json:"path_deviation_ft"`
	TimeToWaypointSec float64    `json:"time_to_waypoint_sec"`
}

type AutopilotDisplay struct {
	Engaged       bool     `json:"engaged"`
	LateralMode   string   `json:"lateral_mode"`
	VerticalMode  string   `json:"vertical_mode"`
	SpeedMode     string   `json:"speed_mode"`
	ArmedLateral  []string `json:"armed_lateral"`
	ArmedVertical []string `json:"armed_vertical"`

	HeadingBugDeg float64 `json:"heading_bug_deg"`
	TargetAltFt   float64 `json:"target_alt_ft"`
	TargetVSFPM   float64 `json:"target_vs_fpm"`
	TargetIASKts  float64 `json:"target_ias_kts"`

	CommandedBankDeg float64 `json:"commanded_bank_deg"`
	CommandedVSFPM   float64 `json:"commanded_vs_fpm"`
	CommandedIASKts  float64 `json:"commanded_ias_kts"`

	BankLimitExceeded bool `json:"bank_limit_exceeded"`
	VSLimitExceeded   bool `json:"vs_limit_exceeded"`
}

type NavRadioDisplay struct {
	Name          string  `json:"name"`
	FreqMHz       float64 `json:"freq_mhz"`
	TunedIdent    string  `json:"tuned_ident"`
	TunedKind     string  `json:"tuned_kind"`
	Flagged       bool    `json:"flagged"`
	OBSCourseDeg  float64 `json:"obs_course_deg"`
	BearingDeg    float64 `json:"bearing_deg"`
	DistanceNM    float64 `json:"distance_nm"`
	RadialDeg     float64 `json:"radial_deg"`
	CDIDeflection float64 `json:"cdi_deflection"`
	GSDeviation   float64 `json:"gs_deviation"`
	GSValid       bool    `json:"gs_valid"`
}

type GPSDisplay struct {
	State          string  `json:"state"`
	SatellitesUsed int     `json:"satellites_used"`
	HDOP           float64 `json:"hdop"`
	AccuracyM      float64 `json:"accuracy_m"`
	RAIMAvailable  bool    `json:"raim_available"`
	WAASAvailable  bool    `json:"waas_available"`
}

type TransponderDisplay struct {
	Mode     string `json:"mode"`
	Code     int    `json:"code"`
	Replying bool   `json:"replying"`
	Ident    bool   `json:"ident"`
}

type TCASDisplay struct {
	Advisories []Advisory `json:"advisories"`
}

type RadarDisplay struct {
	Operating bool          `json:"operating"`
	SweepDeg  float64       `json:"sweep_deg"`
	Returns   []RadarReturn `json:"returns"`
}

// DisplayData snapshots the current avionics state.
func (s *System) DisplayData() DisplayData {
	d := DisplayData{
		FMS: FMSDisplay{
			Powered:           s.fms.powered,
			FlightPlan:        append([]Waypoint(nil), s.fms.plan...),
			ActiveIndex:       s.fms.activeIndex,
			PlanComplete:      s.fms.planComplete,
			BearingDeg:        s.fms.bearingDeg,
			DistanceNM:        s.fms.distanceNM,
			CrossTrackNM:      s.fms.crossTrackNM,
			DesiredTrackDeg:   s.fms.desiredTrackDeg,
			RequiredVSFPM:     s.fms.requiredVSFPM,
			PathDeviationFt:   s.fms.pathDeviationFt,
			TimeToWaypointSec: s.fms.timeToWaypointSec,
		},
		Autopilot: AutopilotDisplay{
			Engaged:           s.ap.engaged,
			LateralMode:       s.ap.lateralMode.String(),
			VerticalMode:      s.ap.verticalMode.String(),
			SpeedMode:         s.ap.speedMode.String(),
			HeadingBugDeg:     s.ap.headingBugDeg,
			TargetAltFt:       s.ap.targetAltFt,
			TargetVSFPM:       s.ap.targetVSFPM,
			TargetIASKts:      s.ap.targetIASKts,
			CommandedBankDeg:  s.ap.commandedBankDeg,
			CommandedVSFPM:    s.ap.commandedVSFPM,
			CommandedIASKts:   s.ap.commandedIASKts,
			BankLimitExceeded: s.ap.bankLimitExceeded,
			VSLimitExceeded:   s.ap.vsLimitExceeded,
		},
		GPS: GPSDisplay{
			State:          s.gps.state.String(),
			SatellitesUsed: s.gps.satellitesUsed,
			HDOP:           s.gps.hdop,
			AccuracyM:      s.gps.accuracyM,
			RAIMAvailable:  s.gps.raimAvailable,
			WAASAvailable:  s.gps.waasAvailable,
		},
		Transponder: TransponderDisplay{
			Mode:     s.xpdr.mode.String(),
			Code:     s.xpdr.code,
			Replying: s.xpdr.replying,
			Ident:    s.xpdr.identSec > 0,
		},
		TCAS: TCASDisplay{
			Advisories: append([]Advisory(nil), s.tcas.advisories...),
		},
		Radar: RadarDisplay{
			Operating: s.radar.operating,
			SweepDeg:  s.radar.sweepDeg,
		},
	}
	for _, m := range s.ap.armedLateral {
		d.Autopilot.ArmedLateral = append(d.Autopilot.ArmedLateral, m.String())
	}
	for _, m := range s.ap.armedVertical {
		d.Autopilot.ArmedVertical = append(d.Autopilot.ArmedVertical, m.String())
	}
	for _, r := range s.radios {
		rd := NavRadioDisplay{
			Name:          r.cfg.Name,
			FreqMHz:       r.freqMHz,
			Flagged:       r.flagged,
			OBSCourseDeg:  r.obsCourseDeg,
			BearingDeg:    r.bearingDeg,
			DistanceNM:    r.distanceNM,
			RadialDeg:     r.radialDeg,
			CDIDeflection: r.cdiDeflection,
			GSDeviation:   r.gsDeviation,
			GSValid:       r.gsValid,
		}
		if r.tuned != nil {
			rd.TunedIdent = r.tuned.Ident
			rd.TunedKind = r.tuned.Kind.String()
		}
		d.NavRadios = append(d.NavRadios, rd)
	}
	for _, ret := range s.radar.returns {
		d.Radar.Returns = append(d.Radar.Returns, ret)
	}
	return d
}
