package hydraulic

// DisplayData is the denormalized hydraulic snapshot for instrument
// rendering. All fields are value copies.
type DisplayData struct {
	Circuits []CircuitDisplay `json:"circuits"`
}

type CircuitDisplay struct {
	Name        string  `json:"name"`
	PressurePSI float64 `json:"pressure_psi"`
	RatedPSI    float64 `json:"rated_psi"`
	SupplyGPM   float64 `json:"supply_gpm"`
	DemandGPM   float64 `json:"demand_gpm"`

	Pumps       []PumpDisplay      `json:"pumps"`
	Reservoir   ReservoirDisplay   `json:"reservoir"`
	Accumulator AccumulatorDisplay `json:"accumulator"`
	Filter      FilterDisplay      `json:"filter"`
	Actuators   []ActuatorDisplay  `json:"actuators"`
	ReliefValve ValveDisplay       `json:"relief_valve"`
}

type PumpDisplay struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"`
	RPM        float64 `json:"rpm"`
	FlowGPM    float64 `json:"flow_gpm"`
	OutletPSI  float64 `json:"outlet_psi"`
	Cavitating bool    `json:"cavitating"`
	SwitchOn   bool    `json:"switch_on"`
}

type ReservoirDisplay struct {
	QuantityGal float64 `json:"quantity_gal"`
	CapacityGal float64 `json:"capacity_gal"`
}

type AccumulatorDisplay struct {
	PressurePSI  float64 `json:"pressure_psi"`
	PrechargePSI float64 `json:"precharge_psi"`
}

type FilterDisplay struct {
	DiffPSI        float64 `json:"diff_psi"`
	Bypass         bool    `json:"bypass"`
	ChangeRequired bool    `json:"change_required"`
}

type ActuatorDisplay struct {
	Name         string  `json:"name"`
	Class        string  `json:"class"`
	Position     float64 `json:"position"`
	Target       float64 `json:"target"`
	Velocity     float64 `json:"velocity"`
	AvailablePSI float64 `json:"available_psi"`
}

type ValveDisplay struct {
	Position float64 `json:"position"`
}

// DisplayData snapshots the current hydraulic state.
func (s *System) DisplayData() DisplayData {
	d := DisplayData{Circuits: make([]CircuitDisplay, len(s.circuits))}
	for i, c := range s.circuits {
		cd := CircuitDisplay{
			Name:        c.cfg.Name,
			PressurePSI: c.pressurePSI,
			RatedPSI:    c.cfg.RatedPressurePSI,
			SupplyGPM:   c.supplyGPM,
			DemandGPM:   c.demandGPM,
			Reservoir: ReservoirDisplay{
				QuantityGal: c.reservoir.quantityGal,
				CapacityGal: c.reservoir.cfg.CapacityGal,
			},
			Accumulator: AccumulatorDisplay{
				PressurePSI:  c.accum.pressurePSI,
				PrechargePSI: c.accum.prechargePSI,
			},
			Filter: FilterDisplay{
				DiffPSI:        c.filt.diffPSI,
				Bypass:         c.filt.bypass,
				ChangeRequired: c.filt.changeRequired,
			},
			ReliefValve: ValveDisplay{Position: c.relief.position},
		}
		for _, p := range c.pumps {
			cd.Pumps = append(cd.Pumps, PumpDisplay{
				Name:       p.cfg.Name,
				Kind:       p.cfg.Kind.String(),
				Status:     p.status.String(),
				RPM:        p.rpm,
				FlowGPM:    p.flowGPM,
				OutletPSI:  p.outletPSI,
				Cavitating: p.cavitating,
				SwitchOn:   p.switchOn,
			})
		}
		for _, a := range c.actuators {
			cd.Actuators = append(cd.Actuators, ActuatorDisplay{
				Name:         a.cfg.Name,
				Class:        a.cfg.Class.String(),
				Position:     a.position,
				Target:       a.target,
				Velocity:     a.velocity,
				AvailablePSI: a.availablePSI,
			})
		}
		d.Circuits[i] = cd
	}
	return d
}
