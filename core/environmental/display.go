package environmental

// DisplayData is the denormalized environmental snapshot for instrument
// rendering. All fields are value copies.
type DisplayData struct {
	Pressurization PressurizationDisplay `json:"pressurization"`
	Packs          []PackDisplay         `json:"packs"`
	Zones          []ZoneDisplay         `json:"zones"`
	Bleed          BleedDisplay          `json:"bleed"`
	AntiIce        []AntiIceDisplay      `json:"anti_ice"`
	Icing          IcingDisplay          `json:"icing"`
	Oxygen         OxygenDisplay         `json:"oxygen"`
}

type PressurizationDisplay struct {
	CabinAltFt         float64 `json:"cabin_alt_ft"`
	TargetCabinAltFt   float64 `json:"target_cabin_alt_ft"`
	CabinRateFPM       float64 `json:"cabin_rate_fpm"`
	DifferentialPSI    float64 `json:"differential_psi"`
	OutflowValvePos    float64 `json:"outflow_valve_pos"`
	SafetyValveOpen    bool    `json:"safety_valve_open"`
	NegativeReliefOpen bool    `json:"negative_relief_open"`
}

type PackDisplay struct {
	Name           string  `json:"name"`
	Commanded      bool    `json:"commanded"`
	Running        bool    `json:"running"`
	InletPSI       float64 `json:"inlet_psi"`
	InletTempC     float64 `json:"inlet_temp_c"`
	DischargeTempC float64 `json:"discharge_temp_c"`
	FlowCFM        float64 `json:"flow_cfm"`
}

type ZoneDisplay struct {
	Name        string  `json:"name"`
	TempC       float64 `json:"temp_c"`
	TargetTempC float64 `json:"target_temp_c"`
	SupplyTempC float64 `json:"supply_temp_c"`
	MixValvePos float64 `json:"mix_valve_pos"`
}

type BleedSourceDisplay struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Enabled     bool    `json:"enabled"`
	PressurePSI float64 `json:"pressure_psi"`
	TempC       float64 `json:"temp_c"`
	Delivering  bool    `json:"delivering"`
}

type BleedDisplay struct {
	Sources        []BleedSourceDisplay `json:"sources"`
	ManifoldPSI    float64              `json:"manifold_psi"`
	ManifoldTempC  float64              `json:"manifold_temp_c"`
	CrossbleedOpen bool                 `json:"crossbleed_open"`
}

type AntiIceDisplay struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Commanded bool   `json:"commanded"`
	Active    bool   `json:"active"`
}

type IcingDisplay struct {
	Detected bool    `json:"detected"`
	Severity float64 `json:"severity"`
}

type OxygenDisplay struct {
	PassengerMasksDeployed bool    `json:"passenger_masks_deployed"`
	GeneratorRemainingSec  float64 `json:"generator_remaining_sec"`
	CrewMasksOn            bool    `json:"crew_masks_on"`
	CrewMode               string  `json:"crew_mode"`
	CrewQuantityPct        float64 `json:"crew_quantity_pct"`
	CrewPressurePSI        float64 `json:"crew_pressure_psi"`
	CrewFlowLPM            float64 `json:"crew_flow_lpm"`
}

// DisplayData snapshots the current environmental state.
func (s *System) DisplayData() DisplayData {
	d := DisplayData{
		Pressurization: PressurizationDisplay{
			CabinAltFt:         s.press.cabinAltFt,
			TargetCabinAltFt:   s.press.targetCabinAltFt,
			CabinRateFPM:       s.press.cabinRateFPM,
			DifferentialPSI:    s.press.diffPSI,
			OutflowValvePos:    s.press.valvePos,
			SafetyValveOpen:    s.press.safetyOpen,
			NegativeReliefOpen: s.press.negativeOpen,
		},
		Bleed: BleedDisplay{
			ManifoldPSI:    s.manifoldPSI,
			ManifoldTempC:  s.manifoldTempC,
			CrossbleedOpen: s.crossbleedOpen,
		},
		Icing: IcingDisplay{Detected: s.iceDetected, Severity: s.iceSeverity},
		Oxygen: OxygenDisplay{
			PassengerMasksDeployed: s.oxygen.masksDeployed,
			GeneratorRemainingSec:  s.oxygen.generatorRemainingSec,
			CrewMasksOn:            s.oxygen.crewMasksOn,
			CrewMode:               s.oxygen.crewMode.String(),
			CrewQuantityPct:        s.oxygen.crewQuantityPct(),
			CrewPressurePSI:        s.oxygen.crewPressurePSI(),
			CrewFlowLPM:            s.oxygen.crewFlowLPM,
		},
	}
	for _, p := range s.packs {
		d.Packs = append(d.Packs, PackDisplay{
			Name:           p.cfg.Name,
			Commanded:      p.commanded,
			Running:        p.running,
			InletPSI:       p.inletPSI,
			InletTempC:     p.inletTempC,
			DischargeTempC: p.dischargeTempC,
			FlowCFM:        p.flowCFM,
		})
	}
	for _, z := range s.zones {
		d.Zones = append(d.Zones, ZoneDisplay{
			Name:        z.cfg.Name,
			TempC:       z.tempC,
			TargetTempC: z.targetTempC,
			SupplyTempC: z.supplyTempC,
			MixValvePos: z.mixValvePos,
		})
	}
	for _, src := range s.sources {
		d.Bleed.Sources = append(d.Bleed.Sources, BleedSourceDisplay{
			Name:        src.cfg.Name,
			Kind:        src.cfg.Kind.String(),
			Enabled:     src.enabled,
			PressurePSI: src.pressurePSI,
			TempC:       src.tempC,
			Delivering:  src.delivering,
		})
	}
	for _, el := range s.antiIce {
		d.AntiIce = append(d.AntiIce, AntiIceDisplay{
			Name:      el.cfg.Name,
			Kind:      el.cfg.Kind.String(),
			Commanded: el.commanded,
			Active:    el.active,
		})
	}
	return d
}
