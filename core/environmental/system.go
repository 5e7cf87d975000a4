package environmental

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// Standard-atmosphere pressure model, ISA below the tropopause.
const (
	seaLevelPSI   = 14.696
	lapsePerFt    = 6.875e-6
	lapseExponent = 5.2559
)

// supplyAirWPerCFMPerC converts supply flow and temperature split into
// zone heating/cooling power.
const supplyAirWPerCFMPerC = 0.565

// Cabin-altitude alert thresholds.
const (
	cabinAltCautionFt = 10000.0
	cabinAltWarningFt = 14000.0
)

func altitudeToPressurePSI(altFt float64) float64 {
	base := 1 - lapsePerFt*altFt
	if base < 0 {
		base = 0
	}
	return seaLevelPSI * math.Pow(base, lapseExponent)
}

func pressureToAltitudeFt(psi float64) float64 {
	if psi <= 0 {
		return 1 / lapsePerFt
	}
	if psi >= seaLevelPSI {
		return 0
	}
	return (1 - math.Pow(psi/seaLevelPSI, 1/lapseExponent)) / lapsePerFt
}

// pressurization, pack, zone, bleedSource, antiIceElement and the oxygen
// subsections are the mutable entities, created once and updated in place.
type pressurization struct {
	cfg PressurizationConfig

	targetCabinAltFt float64
	cabinAltFt       float64
	cabinRateFPM     float64
	diffPSI          float64

	valvePos    float64
	valveTarget float64

	safetyOpen   bool
	negativeOpen bool
}

type pack struct {
	cfg PackConfig

	commanded     bool
	running       bool
	faultInjected bool

	inletPSI       float64
	inletTempC     float64
	compressorOutC float64
	hxOutC         float64
	dischargeTempC float64
	flowCFM        float64
}

type tempZone struct {
	cfg ZoneConfig

	tempC       float64
	targetTempC float64
	supplyTempC float64
	mixValvePos float64
}

type bleedSource struct {
	cfg BleedSourceConfig

	enabled     bool
	pressurePSI float64
	tempC       float64
	flow        float64
	delivering  bool
}

type antiIceElement struct {
	cfg AntiIceElementConfig

	commanded bool
	active    bool
}

type oxygenState struct {
	cfg OxygenConfig

	masksDeployed         bool
	generatorRemainingSec float64

	crewMasksOn bool
	crewMode    OxygenMode
	crewLiters  float64
	crewFlowLPM float64
}

// System simulates cabin pressurization, air conditioning, bleed-air
// distribution, anti-ice and oxygen. It consumes the electrical bus
// snapshot produced earlier in the same frame.
type System struct {
	log  logging.Logger
	book *model.AlertBook
	rng  *rand.Rand

	press    pressurization
	packs    []*pack
	zones    []*tempZone
	sources  []*bleedSource
	antiIce  []*antiIceElement
	oxygen   oxygenState
	bleedCfg BleedConfig
	icing    IcingConfig

	packByName map[string]*pack
	zoneByName map[string]*tempZone
	srcByName  map[string]*bleedSource
	aiByName   map[string]*antiIceElement

	manifoldPSI        float64
	manifoldTempC      float64
	crossbleedOpen     bool
	groundAirAvailable bool

	iceDetected bool
	iceSeverity float64
}

// Option customises System construction.
type Option func(*System)

// WithClock overrides the wall clock used for alert timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *System) { s.book = model.NewAlertBook("ENV", clock) }
}

// WithRandSeed makes ice detection deterministic; tests use this.
func WithRandSeed(seed int64) Option {
	return func(s *System) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New builds the environmental system from configuration. It fails fast on
// malformed configuration and never errors afterwards.
func New(cfg Config, log logging.Logger, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	s := &System{
		log:        log,
		book:       model.NewAlertBook("ENV", nil),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		press:      pressurization{cfg: cfg.Pressurization},
		oxygen:     oxygenState{cfg: cfg.Oxygen, crewLiters: cfg.Oxygen.CrewBottleLiters},
		packByName: make(map[string]*pack),
		zoneByName: make(map[string]*tempZone),
		srcByName:  make(map[string]*bleedSource),
		aiByName:   make(map[string]*antiIceElement),
	}
	s.icing = cfg.Icing
	s.bleedCfg = cfg.Bleed

	for _, pc := range cfg.Packs {
		p := &pack{cfg: pc, commanded: true}
		s.packs = append(s.packs, p)
		s.packByName[pc.Name] = p
	}
	for _, zc := range cfg.Zones {
		z := &tempZone{cfg: zc, tempC: zc.InitialTempC, targetTempC: zc.DefaultTargetTempC}
		s.zones = append(s.zones, z)
		s.zoneByName[zc.Name] = z
	}
	for _, sc := range cfg.Bleed.Sources {
		src := &bleedSource{cfg: sc, enabled: true}
		s.sources = append(s.sources, src)
		s.srcByName[sc.Name] = src
	}
	for _, ac := range cfg.AntiIce {
		el := &antiIceElement{cfg: ac}
		s.antiIce = append(s.antiIce, el)
		s.aiByName[ac.Name] = el
	}

	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Update advances the environmental simulation by dtMs milliseconds using
// the supplied kinematic and electrical snapshots.
func (s *System) Update(dtMs float64, ac model.AircraftState, elec model.ElectricalStatus) {
	dt := dtMs / 1000.0
	if dt < 0 {
		dt = 0
	}

	s.updateBleed(ac)
	s.updatePacks(ac, elec)
	s.updatePressurization(dt, ac)
	s.updateZones(dt)
	s.updateAntiIce(dt, ac, elec)
	s.updateOxygen(dt)

	s.recomputeAlerts()
}

func (s *System) updateBleed(ac model.AircraftState) {
	cfg := s.bleedCfg

	for _, src := range s.sources {
		src.pressurePSI = 0
		src.tempC = ac.AmbientTempC
		switch src.cfg.Kind {
		case BleedEngine:
			eng := ac.Engine(src.cfg.EngineIndex)
			src.pressurePSI = src.cfg.PSIPerPercent * eng.N2
			src.tempC = src.cfg.TempPerEGTC * eng.EGTC
		case BleedAPU:
			if ac.APU.Running {
				src.pressurePSI = src.cfg.PSIPerPercent * ac.APU.RPMPercent
				src.tempC = src.cfg.TempPerEGTC * 400 // APU EGT is not modelled; fixed hot section
			}
		case BleedGround:
			if s.groundAirAvailable {
				src.pressurePSI = src.cfg.FixedPSI
				src.tempC = src.cfg.FixedTempC
			}
		}

		// Precooler: above the ram-air threshold, engine bleed sheds heat
		// toward ambient.
		if src.cfg.Kind == BleedEngine && ac.AirspeedKts > cfg.PrecoolerAirspeedKts {
			src.tempC -= cfg.PrecoolerEffectiveness * (src.tempC - ac.AmbientTempC)
		}

		// The check valve only passes flow above its minimum pressure.
		src.delivering = src.enabled && src.pressurePSI > cfg.CheckValveMinPSI
		if src.delivering {
			src.flow = cfg.FlowPerPSI * src.pressurePSI
		} else {
			src.flow = 0
		}
	}

	// Manifold state is the flow-weighted blend of all delivering sources.
	var flowSum, pSum, tSum float64
	for _, src := range s.sources {
		flowSum += src.flow
		pSum += src.pressurePSI * src.flow
		tSum += src.tempC * src.flow
	}
	if flowSum > 0 {
		s.manifoldPSI = pSum / flowSum
		s.manifoldTempC = tSum / flowSum
	} else {
		s.manifoldPSI = 0
		s.manifoldTempC = ac.AmbientTempC
	}

	// Automatic crossbleed on inter-engine imbalance.
	var enginePSI []float64
	for _, src := range s.sources {
		if src.cfg.Kind == BleedEngine {
			enginePSI = append(enginePSI, src.pressurePSI)
		}
	}
	s.crossbleedOpen = false
	for i := 1; i < len(enginePSI); i++ {
		if math.Abs(enginePSI[i]-enginePSI[0]) > cfg.CrossbleedImbalancePSI {
			s.crossbleedOpen = true
		}
	}
}

func (s *System) updatePacks(ac model.AircraftState, elec model.ElectricalStatus) {
	for _, p := range s.packs {
		p.inletPSI = s.manifoldPSI
		p.inletTempC = s.manifoldTempC

		p.running = p.commanded &&
			!p.faultInjected &&
			p.inletPSI >= p.cfg.MinInletPSI &&
			(p.cfg.PowerBus == "" || elec.BusPowered(p.cfg.PowerBus))
		if !p.running {
			p.flowCFM = 0
			p.compressorOutC = p.inletTempC
			p.hxOutC = p.inletTempC
			p.dischargeTempC = p.inletTempC
			continue
		}

		// Air-cycle machine: compress, reject heat to ambient, expand.
		p.compressorOutC = p.inletTempC + p.cfg.CompressorDeltaC
		p.hxOutC = p.compressorOutC - p.cfg.HXEffectiveness*(p.compressorOutC-ac.AmbientTempC)
		p.dischargeTempC = p.hxOutC - p.cfg.TurbineDropC
		if p.dischargeTempC < p.cfg.DewPointFloorC {
			p.dischargeTempC = p.cfg.DewPointFloorC
		}

		p.flowCFM = p.cfg.RatedFlowCFM * clamp(p.inletPSI/p.cfg.RefInletPSI, 0, 1)
	}
}

func (s *System) updatePressurization(dt float64, ac model.AircraftState) {
	pr := &s.press
	cfg := pr.cfg

	// Target cabin altitude: follow below the knee, shallow slope above,
	// capped at the maximum.
	target := ac.AltitudeFt
	if ac.AltitudeFt > cfg.ScheduleKneeFt && cfg.SlopeRatio > 0 {
		target = cfg.ScheduleKneeFt + (ac.AltitudeFt-cfg.ScheduleKneeFt)/cfg.SlopeRatio
	}
	if target > cfg.MaxCabinAltFt {
		target = cfg.MaxCabinAltFt
	}
	if target < 0 {
		target = 0
	}
	pr.targetCabinAltFt = target

	inflowFPM := 0.0
	for _, p := range s.packs {
		inflowFPM += p.flowCFM * cfg.InflowFPMPerCFM
	}

	// Proportional controller: commanded rate from altitude error, then an
	// outflow-valve target that would produce that rate against the
	// current inflow.
	requiredRate := clamp(cfg.ControllerGainPerMin*(target-pr.cabinAltFt), -cfg.MaxRateFPM, cfg.MaxRateFPM)
	pr.valveTarget = clamp((requiredRate+inflowFPM)/cfg.MaxValveRateFPM, 0, 1)

	slew := cfg.ValveSlewPerSec * dt
	pr.valvePos += clamp(pr.valveTarget-pr.valvePos, -slew, slew)
	pr.valvePos = clamp(pr.valvePos, 0, 1)

	rate := pr.valvePos*cfg.MaxValveRateFPM - inflowFPM

	// Structural leakage drives the cabin toward ambient.
	ambientPSI := altitudeToPressurePSI(ac.AltitudeFt)
	diff := altitudeToPressurePSI(pr.cabinAltFt) - ambientPSI
	rate += cfg.LeakFPMPerPSI * diff

	// Relief valves, with hysteresis so they do not chatter at the
	// threshold.
	if diff > cfg.SafetyReliefPSI {
		pr.safetyOpen = true
	} else if diff < cfg.SafetyReliefPSI-cfg.SafetyHysteresisPSI {
		pr.safetyOpen = false
	}
	if pr.safetyOpen {
		rate += cfg.SafetyVentFPM
	}

	if diff < -cfg.NegativeReliefPSI {
		pr.negativeOpen = true
	} else if diff > -(cfg.NegativeReliefPSI - cfg.NegativeHysteresisPSI) {
		pr.negativeOpen = false
	}
	if pr.negativeOpen {
		rate -= cfg.NegativeVentFPM
	}

	pr.cabinRateFPM = rate
	pr.cabinAltFt += rate * dt / 60.0
	pr.cabinAltFt = clamp(pr.cabinAltFt, -2000, 60000)

	// The relief valves bound the differential mechanically: positive
	// excursions past the safety band and negative past the relief band
	// are vented within the tick.
	cabinPSI := altitudeToPressurePSI(pr.cabinAltFt)
	maxPSI := ambientPSI + cfg.SafetyReliefPSI + cfg.SafetyHysteresisPSI
	minPSI := ambientPSI - cfg.NegativeReliefPSI - cfg.NegativeHysteresisPSI
	if cabinPSI > maxPSI {
		pr.cabinAltFt = pressureToAltitudeFt(maxPSI)
	} else if cabinPSI < minPSI {
		pr.cabinAltFt = pressureToAltitudeFt(minPSI)
	}

	pr.diffPSI = altitudeToPressurePSI(pr.cabinAltFt) - ambientPSI
}

func (s *System) updateZones(dt float64) {
	for _, z := range s.zones {
		p := s.packByName[z.cfg.Pack]

		// Mix valve blends hot trim air from the manifold into the pack
		// discharge, proportional to how far below target the zone sits.
		z.mixValvePos = clamp(z.cfg.MixValveGain*(z.targetTempC-z.tempC), 0, 1)
		z.supplyTempC = p.dischargeTempC + z.mixValvePos*(s.manifoldTempC-p.dischargeTempC)

		flow := 0.0
		if p.running {
			flow = z.cfg.SupplyFlowCFM * clamp(p.flowCFM/p.cfg.RatedFlowCFM, 0, 1)
		}

		heatW := z.cfg.PassengerHeatW + z.cfg.EquipmentHeatW
		coolW := flow * supplyAirWPerCFMPerC * (z.tempC - z.supplyTempC)
		z.tempC += (heatW - coolW) * dt / z.cfg.ThermalMassJPerC
		z.tempC = clamp(z.tempC, -10, 50)
	}
}

func (s *System) updateAntiIce(dt float64, ac model.AircraftState, elec model.ElectricalStatus) {
	protecting := false
	for _, el := range s.antiIce {
		el.active = el.commanded &&
			elec.BusPowered(el.cfg.PowerBus) &&
			(!el.cfg.BleedDriven || s.manifoldPSI >= el.cfg.MinBleedPSI)
		if el.active && (el.cfg.Kind == AntiIceWing || el.cfg.Kind == AntiIceEngine) {
			protecting = true
		}
	}

	ic := s.icing
	inEnvelope := ac.AmbientTempC >= ic.MinTempC &&
		ac.AmbientTempC <= ic.MaxTempC &&
		ac.AltitudeFt <= ic.MaxAltFt &&
		ac.AirspeedKts >= ic.MinAirspeedKts

	if inEnvelope && !s.iceDetected && s.rng.Float64() < ic.DetectProbabilityPerSec*dt {
		s.iceDetected = true
		s.log.Info(context.Background(), "ice detected",
			logging.Any("ambient_c", ac.AmbientTempC),
			logging.Any("altitude_ft", ac.AltitudeFt))
	}

	switch {
	case s.iceDetected && inEnvelope && !protecting:
		s.iceSeverity += ic.AccretionPerSec * dt
	default:
		s.iceSeverity -= ic.MeltPerSec * dt
	}
	s.iceSeverity = clamp(s.iceSeverity, 0, 1)
	if !inEnvelope && s.iceSeverity == 0 {
		s.iceDetected = false
	}
}

func (s *System) updateOxygen(dt float64) {
	ox := &s.oxygen

	// Passenger masks: deploy once, burn the chemical generators down.
	if !ox.masksDeployed && s.press.cabinAltFt > ox.cfg.PassengerDeployAltFt {
		ox.masksDeployed = true
		ox.generatorRemainingSec = ox.cfg.GeneratorDurationSec
		s.log.Warn(context.Background(), "passenger oxygen masks deployed",
			logging.Any("cabin_alt_ft", s.press.cabinAltFt))
	}
	if ox.masksDeployed && ox.generatorRemainingSec > 0 {
		ox.generatorRemainingSec -= dt
		if ox.generatorRemainingSec < 0 {
			ox.generatorRemainingSec = 0
		}
	}

	// Crew bottle depletes against the mode-dependent regulator flow.
	ox.crewFlowLPM = 0
	if ox.crewMasksOn && ox.crewLiters > 0 {
		switch ox.crewMode {
		case OxygenNormal:
			ox.crewFlowLPM = ox.cfg.NormalFlowLPM
		case OxygenHigh:
			ox.crewFlowLPM = ox.cfg.HighFlowLPM
		case OxygenEmergency:
			ox.crewFlowLPM = ox.cfg.EmergencyFlowLPM
		}
	}
	ox.crewLiters -= ox.crewFlowLPM * dt / 60.0
	ox.crewLiters = clamp(ox.crewLiters, 0, ox.cfg.CrewBottleLiters)
}

// crewQuantityPct is the bottle fill fraction as a percentage, clamped to
// [0,100].
func (ox *oxygenState) crewQuantityPct() float64 {
	pct := ox.crewLiters / ox.cfg.CrewBottleLiters * 100
	return clamp(pct, 0, 100)
}

func (ox *oxygenState) crewPressurePSI() float64 {
	return ox.cfg.CrewRatedPSI * ox.crewQuantityPct() / 100
}

//
// ---------- Control surface ----------
//

// SetPack commands a pack on or off; applied on the next tick.
func (s *System) SetPack(name string, on bool) error {
	p, ok := s.packByName[name]
	if !ok {
		return fmt.Errorf("%w: pack %q", ErrUnknownEntity, name)
	}
	p.commanded = on
	return nil
}

// SetZoneTargetTemp commands a zone's temperature target.
func (s *System) SetZoneTargetTemp(name string, tempC float64) error {
	z, ok := s.zoneByName[name]
	if !ok {
		return fmt.Errorf("%w: zone %q", ErrUnknownEntity, name)
	}
	z.targetTempC = tempC
	return nil
}

// SetBleedSource enables or disables a bleed source's supply valve.
func (s *System) SetBleedSource(name string, enabled bool) error {
	src, ok := s.srcByName[name]
	if !ok {
		return fmt.Errorf("%w: bleed source %q", ErrUnknownEntity, name)
	}
	src.enabled = enabled
	return nil
}

// SetGroundAir reports ground cart air availability.
func (s *System) SetGroundAir(available bool) {
	s.groundAirAvailable = available
}

// SetAntiIce commands a heating element on or off.
func (s *System) SetAntiIce(name string, on bool) error {
	el, ok := s.aiByName[name]
	if !ok {
		return fmt.Errorf("%w: anti-ice element %q", ErrUnknownEntity, name)
	}
	el.commanded = on
	return nil
}

// SetCrewOxygen turns the crew masks on or off and selects the regulator
// mode.
func (s *System) SetCrewOxygen(on bool, mode OxygenMode) {
	s.oxygen.crewMasksOn = on
	s.oxygen.crewMode = mode
}

// DeployPassengerMasks deploys the masks manually. Deployment is latched.
func (s *System) DeployPassengerMasks() {
	if !s.oxygen.masksDeployed {
		s.oxygen.masksDeployed = true
		s.oxygen.generatorRemainingSec = s.oxygen.cfg.GeneratorDurationSec
	}
}

// InjectPackFault forces a pack offline until cleared.
func (s *System) InjectPackFault(name string) error {
	p, ok := s.packByName[name]
	if !ok {
		return fmt.Errorf("%w: pack %q", ErrUnknownEntity, name)
	}
	p.faultInjected = true
	return nil
}

// ClearPackFault clears an injected pack fault.
func (s *System) ClearPackFault(name string) error {
	p, ok := s.packByName[name]
	if !ok {
		return fmt.Errorf("%w: pack %q", ErrUnknownEntity, name)
	}
	p.faultInjected = false
	return nil
}

// AcknowledgeAlert marks an active alert acknowledged.
func (s *System) AcknowledgeAlert(id string) bool { return s.book.Acknowledge(id) }

// Alerts returns the current derived alert list.
func (s *System) Alerts() []model.Alert { return s.book.Snapshot() }

func (s *System) recomputeAlerts() {
	s.book.Begin()

	pr := &s.press
	switch {
	case pr.cabinAltFt > cabinAltWarningFt:
		s.book.Raise("env.press.cabinalt", model.AlertEmergency, "CABIN ALTITUDE")
	case pr.cabinAltFt > cabinAltCautionFt:
		s.book.Raise("env.press.cabinalt", model.AlertWarning, "CABIN ALT HIGH")
	}
	if pr.safetyOpen {
		s.book.Raise("env.press.safety", model.AlertWarning, "CABIN DIFF PRESS")
	}
	if pr.negativeOpen {
		s.book.Raise("env.press.negrelief", model.AlertCaution, "NEG PRESS RELIEF")
	}

	for _, p := range s.packs {
		switch {
		case p.faultInjected:
			s.book.Raise("env.pack."+p.cfg.Name+".fault", model.AlertCaution,
				fmt.Sprintf("%s FAULT", p.cfg.Name))
		case p.commanded && !p.running:
			s.book.Raise("env.pack."+p.cfg.Name+".off", model.AlertCaution,
				fmt.Sprintf("%s OFF", p.cfg.Name))
		}
	}

	anyDelivering := false
	for _, src := range s.sources {
		if src.delivering {
			anyDelivering = true
		}
	}
	if !anyDelivering {
		s.book.Raise("env.bleed.lost", model.AlertCaution, "BLEED AIR LOST")
	}
	if s.crossbleedOpen {
		s.book.Raise("env.bleed.crossbleed", model.AlertAdvisory, "CROSSBLEED OPEN")
	}

	if s.iceDetected {
		level := model.AlertAdvisory
		if s.iceSeverity > 0.5 {
			level = model.AlertCaution
		}
		s.book.Raise("env.ice.detected", level, "ICE DETECTED")
	}

	ox := &s.oxygen
	if ox.masksDeployed {
		s.book.Raise("env.oxy.masks", model.AlertWarning, "PAX OXYGEN ON")
	}
	if ox.crewQuantityPct() < 25 {
		s.book.Raise("env.oxy.crew.low", model.AlertCaution, "CREW OXYGEN LOW")
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
