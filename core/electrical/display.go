package electrical

// DisplayData is the fully denormalized snapshot the instrument layer
// renders from. Every field is a value copy; callers may hold it across
// frames.
type DisplayData struct {
	Generators []GeneratorDisplay `json:"generators"`
	Batteries  []BatteryDisplay   `json:"batteries"`
	Inverters  []InverterDisplay  `json:"inverters"`
	Buses      []BusDisplay       `json:"buses"`
	Loads      []LoadDisplay      `json:"loads"`
}

type GeneratorDisplay struct {
	Name          string  `json:"name"`
	Drive         string  `json:"drive"`
	Status        string  `json:"status"`
	Online        bool    `json:"online"`
	BreakerClosed bool    `json:"breaker_closed"`
	Voltage       float64 `json:"voltage"`
	FrequencyHz   float64 `json:"frequency_hz"`
	LoadW         float64 `json:"load_w"`
	LoadFraction  float64 `json:"load_fraction"`
}

type BatteryDisplay struct {
	Name                string  `json:"name"`
	SwitchOn            bool    `json:"switch_on"`
	Voltage             float64 `json:"voltage"`
	CurrentA            float64 `json:"current_a"`
	StateOfCharge       float64 `json:"state_of_charge"`
	RemainingCapacityAh float64 `json:"remaining_capacity_ah"`
	TemperatureC        float64 `json:"temperature_c"`
}

type InverterDisplay struct {
	Name          string  `json:"name"`
	Enabled       bool    `json:"enabled"`
	Powered       bool    `json:"powered"`
	InputVoltage  float64 `json:"input_voltage"`
	OutputVoltage float64 `json:"output_voltage"`
}

type BusDisplay struct {
	Name    string  `json:"name"`
	AC      bool    `json:"ac"`
	Powered bool    `json:"powered"`
	Voltage float64 `json:"voltage"`
	Source  string  `json:"source"`
	LoadW   float64 `json:"load_w"`
	ShedW   float64 `json:"shed_w"`
}

type LoadDisplay struct {
	Name           string  `json:"name"`
	Bus            string  `json:"bus"`
	Essential      bool    `json:"essential"`
	Powered        bool    `json:"powered"`
	Shed           bool    `json:"shed"`
	CurrentA       float64 `json:"current_a"`
	BreakerTripped bool    `json:"breaker_tripped"`
}

// DisplayData snapshots the current electrical state.
func (s *System) DisplayData() DisplayData {
	d := DisplayData{
		Generators: make([]GeneratorDisplay, len(s.generators)),
		Batteries:  make([]BatteryDisplay, len(s.batteries)),
		Inverters:  make([]InverterDisplay, len(s.inverters)),
		Buses:      make([]BusDisplay, len(s.buses)),
		Loads:      make([]LoadDisplay, len(s.loads)),
	}
	for i, g := range s.generators {
		frac := 0.0
		if g.cfg.RatedPowerW > 0 {
			frac = g.loadW / g.cfg.RatedPowerW
		}
		d.Generators[i] = GeneratorDisplay{
			Name:          g.cfg.Name,
			Drive:         g.cfg.Drive.String(),
			Status:        g.status.String(),
			Online:        g.online,
			BreakerClosed: g.breakerClosed,
			Voltage:       g.voltage,
			FrequencyHz:   g.frequencyHz,
			LoadW:         g.loadW,
			LoadFraction:  frac,
		}
	}
	for i, b := range s.batteries {
		d.Batteries[i] = BatteryDisplay{
			Name:                b.cfg.Name,
			SwitchOn:            b.switchOn,
			Voltage:             b.voltage,
			CurrentA:            b.currentA,
			StateOfCharge:       b.soc,
			RemainingCapacityAh: b.remainingCapacityAh(),
			TemperatureC:        b.tempC,
		}
	}
	for i, inv := range s.inverters {
		d.Inverters[i] = InverterDisplay{
			Name:          inv.cfg.Name,
			Enabled:       inv.enabled,
			Powered:       inv.powered,
			InputVoltage:  inv.inputVoltage,
			OutputVoltage: inv.outputVoltage,
		}
	}
	for i, b := range s.buses {
		d.Buses[i] = BusDisplay{
			Name:    b.cfg.Name,
			AC:      b.cfg.AC,
			Powered: b.powered,
			Voltage: b.voltage,
			Source:  b.sourceName,
			LoadW:   b.loadW,
			ShedW:   b.shedW,
		}
	}
	for i, l := range s.loads {
		d.Loads[i] = LoadDisplay{
			Name:           l.cfg.Name,
			Bus:            l.cfg.Bus,
			Essential:      l.cfg.Essential,
			Powered:        l.powered,
			Shed:           l.shed,
			CurrentA:       l.currentA,
			BreakerTripped: l.breakerTripped,
		}
	}
	return d
}
