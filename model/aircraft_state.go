package model

// EngineState carries the externally supplied rotational and thermal state
// of one engine. N1 and N2 are spool speeds in percent of rated; EGT is
// exhaust gas temperature in °C.
type EngineState struct {
	N1   float64 `json:"n1"`
	N2   float64 `json:"n2"`
	EGTC float64 `json:"egt_c"`
}

// APUState is the auxiliary power unit's externally supplied state.
type APUState struct {
	RPMPercent float64 `json:"rpm_percent"`
	Running    bool    `json:"running"`
}

// AircraftState is the immutable per-tick kinematic snapshot supplied by the
// flight-dynamics layer. The zero value is a parked, cold aircraft at the
// origin; every consumer must tolerate it, which is how a stalled upstream
// feed degrades (computations freeze at defaults rather than fail).
type AircraftState struct {
	// Position.
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeFt   float64 `json:"altitude_ft"`

	// Attitude, radians.
	PitchRad   float64 `json:"pitch_rad"`
	RollRad    float64 `json:"roll_rad"`
	HeadingRad float64 `json:"heading_rad"`

	// Velocities.
	AirspeedKts      float64 `json:"airspeed_kts"`
	GroundSpeedKts   float64 `json:"ground_speed_kts"`
	VerticalSpeedFpm float64 `json:"vertical_speed_fpm"`

	Engines []EngineState `json:"engines"`
	APU     APUState      `json:"apu"`

	AmbientTempC float64 `json:"ambient_temp_c"`
	OnGround     bool    `json:"on_ground"`
}

// Engine returns the state of engine i, or a zero EngineState when the
// index is out of range. Subsystems index engines from configuration, which
// may name more engines than the kinematic feed supplies on a given tick.
func (a AircraftState) Engine(i int) EngineState {
	if i < 0 || i >= len(a.Engines) {
		return EngineState{}
	}
	return a.Engines[i]
}

// BusStatus describes one electrical bus for consumers outside the
// electrical system.
type BusStatus struct {
	Name    string  `json:"name"`
	Powered bool    `json:"powered"`
	Voltage float64 `json:"voltage"`
}

// ElectricalStatus is the value snapshot of bus power that Hydraulic,
// Environmental and Avionics consume each frame. It is copied out of the
// electrical system before any consumer runs, so consumers never observe
// mid-frame electrical state.
type ElectricalStatus struct {
	Buses []BusStatus `json:"buses"`
}

// BusPowered reports whether the named bus is currently powered. Unknown
// bus names read as unpowered, which is the safe degraded default.
func (e ElectricalStatus) BusPowered(name string) bool {
	for _, b := range e.Buses {
		if b.Name == name {
			return b.Powered
		}
	}
	return false
}

// AnyPowered reports whether at least one bus is powered.
func (e ElectricalStatus) AnyPowered() bool {
	for _, b := range e.Buses {
		if b.Powered {
			return true
		}
	}
	return false
}
