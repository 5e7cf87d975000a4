package avionics

// LateralMode is the autopilot's lateral axis mode.
type LateralMode int

const (
	LatOff LateralMode = iota
	LatHeading
	LatNav
	LatLNAV
	LatLocalizer
)

func (m LateralMode) String() string {
	switch m {
	case LatOff:
		return "OFF"
	case LatHeading:
		return "HDG"
	case LatNav:
		return "NAV"
	case LatLNAV:
		return "LNAV"
	case LatLocalizer:
		return "LOC"
	default:
		return "UNKNOWN"
	}
}

// VerticalMode is the autopilot's vertical axis mode.
type VerticalMode int

const (
	VertOff VerticalMode = iota
	VertAltHold
	VertVS
	VertVNAV
	VertGlideslope
)

func (m VerticalMode) String() string {
	switch m {
	case VertOff:
		return "OFF"
	case VertAltHold:
		return "ALT"
	case VertVS:
		return "VS"
	case VertVNAV:
		return "VNAV"
	case VertGlideslope:
		return "GS"
	default:
		return "UNKNOWN"
	}
}

// SpeedMode is the autopilot's speed axis mode.
type SpeedMode int

const (
	SpdOff SpeedMode = iota
	SpdIAS
	SpdMach
)

func (m SpeedMode) String() string {
	switch m {
	case SpdOff:
		return "OFF"
	case SpdIAS:
		return "IAS"
	case SpdMach:
		return "MACH"
	default:
		return "UNKNOWN"
	}
}

// autopilot runs three independent mode axes and computes flight-director
// cues. Limit violations raise warnings; they never disengage the
// autopilot.
type autopilot struct {
	cfg AutopilotConfig

	engaged bool
	powered bool

	lateralMode  LateralMode
	verticalMode VerticalMode
	speedMode    SpeedMode

	armedLateral  []LateralMode
	armedVertical []VerticalMode

	// Pilot-selected targets.
	headingBugDeg float64
	targetAltFt   float64
	targetVSFPM   float64
	targetIASKts  float64

	// Flight-director cues.
	commandedBankDeg float64
	commandedVSFPM   float64
	commandedIASKts  float64

	bankLimitExceeded bool
	vsLimitExceeded   bool
}

// update recomputes flight-director cues. LNAV and VNAV pull their targets
// from the FMS; the other modes track pilot-selected values. Runs at the
// autopilot rate only.
func (ap *autopilot) update(headingDeg, altFt float64, f *fms) {
	ap.bankLimitExceeded = false
	ap.vsLimitExceeded = false

	if !ap.engaged {
		ap.commandedBankDeg = 0
		ap.commandedVSFPM = 0
		return
	}

	// Lateral axis: commanded bank proportional to heading error.
	targetHeading := headingDeg
	switch ap.lateralMode {
	case LatHeading:
		targetHeading = ap.headingBugDeg
	case LatLNAV:
		if _, ok := f.activeWaypoint(); ok {
			targetHeading = f.desiredTrackDeg
		}
	case LatNav, LatLocalizer:
		targetHeading = ap.headingBugDeg
	}
	bank := ap.cfg.BankDegPerHdgErrDeg * angleDiffDeg(targetHeading, headingDeg)
	if bank > ap.cfg.MaxBankDeg || bank < -ap.cfg.MaxBankDeg {
		ap.bankLimitExceeded = true
		bank = clampF(bank, -ap.cfg.MaxBankDeg, ap.cfg.MaxBankDeg)
	}
	ap.commandedBankDeg = bank

	// Vertical axis.
	vs := 0.0
	switch ap.verticalMode {
	case VertAltHold:
		vs = ap.cfg.VSFPMPerAltErrFt * (ap.targetAltFt - altFt)
	case VertVS:
		vs = ap.targetVSFPM
	case VertVNAV:
		vs = f.requiredVSFPM
	case VertGlideslope:
		vs = ap.targetVSFPM
	}
	if vs > ap.cfg.MaxClimbFPM || vs < -ap.cfg.MaxDescentFPM {
		ap.vsLimitExceeded = true
		vs = clampF(vs, -ap.cfg.MaxDescentFPM, ap.cfg.MaxClimbFPM)
	}
	ap.commandedVSFPM = vs

	// Speed axis holds the selected target; thrust is external.
	if ap.speedMode != SpdOff {
		ap.commandedIASKts = ap.targetIASKts
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
