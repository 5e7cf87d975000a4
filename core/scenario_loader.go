package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/signalsfoundry/aircraft-systems-simulator/core/avionics"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/electrical"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/environmental"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/hydraulic"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/model"
)

// ErrScenarioInvalid wraps every structural scenario-file failure.
var ErrScenarioInvalid = errors.New("invalid scenario")

// defaultTickMs is used when the scenario file does not fix a frame period.
const defaultTickMs = 100

// Scenario is a fully decoded and validated simulation scenario: the four
// subsystem configurations plus the initial kinematic state and the
// external feeds (flight plan, traffic, weather).
type Scenario struct {
	Name   string
	TickMs float64

	Electrical    electrical.Config
	Hydraulic     hydraulic.Config
	Environmental environmental.Config
	Avionics      avionics.Config

	InitialAircraft model.AircraftState
	FlightPlan      []avionics.Waypoint
	Traffic         []avionics.TrafficTarget
	Weather         []avionics.WeatherCell
}

// LoadScenario reads and validates a scenario file, picking the decoder
// from the file extension (.json, .yaml, .yml).
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseScenarioJSON(f)
	case ".yaml", ".yml":
		return ParseScenarioYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported scenario format %q", ErrScenarioInvalid, ext)
	}
}

// ParseScenarioJSON decodes a JSON scenario from r.
func ParseScenarioJSON(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode failed: %v", ErrScenarioInvalid, err)
	}
	return buildScenario(payload)
}

// ParseScenarioYAML decodes a YAML scenario from r.
func ParseScenarioYAML(r io.Reader) (*Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read failed: %v", ErrScenarioInvalid, err)
	}
	var payload scenarioJSON
	if err := yaml.UnmarshalStrict(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode failed: %v", ErrScenarioInvalid, err)
	}
	return buildScenario(payload)
}

// NewEngineFromScenario constructs the four subsystems from a decoded
// scenario, wires them into an engine, and applies the scenario's initial
// aircraft state and external feeds.
func NewEngineFromScenario(sc *Scenario, log logging.Logger, opts ...EngineOption) (*SimulationEngine, error) {
	elec, err := electrical.New(sc.Electrical, log)
	if err != nil {
		return nil, fmt.Errorf("electrical system: %w", err)
	}
	hyd, err := hydraulic.New(sc.Hydraulic, log)
	if err != nil {
		return nil, fmt.Errorf("hydraulic system: %w", err)
	}
	env, err := environmental.New(sc.Environmental, log)
	if err != nil {
		return nil, fmt.Errorf("environmental system: %w", err)
	}
	avio, err := avionics.New(sc.Avionics, log)
	if err != nil {
		return nil, fmt.Errorf("avionics system: %w", err)
	}

	if len(sc.FlightPlan) > 0 {
		if err := avio.SetFlightPlan(sc.FlightPlan); err != nil {
			return nil, fmt.Errorf("flight plan: %w", err)
		}
	}
	avio.SetTraffic(sc.Traffic)
	avio.SetWeatherCells(sc.Weather)

	engine := NewSimulationEngine(elec, hyd, env, avio, log, opts...)
	engine.SetAircraftState(sc.InitialAircraft)
	return engine, nil
}

// Internal file shapes. Kept unexported so the on-disk format can evolve
// independently of the subsystem configuration types; every field carries
// both json and yaml tags because yaml.v2 ignores json tags.
type scenarioJSON struct {
	Name   string  `json:"name" yaml:"name"`
	TickMs float64 `json:"tick_ms" yaml:"tick_ms"`

	Electrical    electricalJSON    `json:"electrical" yaml:"electrical"`
	Hydraulic     hydraulicJSON     `json:"hydraulic" yaml:"hydraulic"`
	Environmental environmentalJSON `json:"environmental" yaml:"environmental"`
	Avionics      avionicsJSON      `json:"avionics" yaml:"avionics"`

	Aircraft   *aircraftJSON  `json:"aircraft" yaml:"aircraft"`
	FlightPlan []waypointJSON `json:"flight_plan" yaml:"flight_plan"`
	Traffic    []trafficJSON  `json:"traffic" yaml:"traffic"`
	Weather    []weatherJSON  `json:"weather" yaml:"weather"`
}

type electricalJSON struct {
	Generators []generatorJSON `json:"generators" yaml:"generators"`
	Batteries  []batteryJSON   `json:"batteries" yaml:"batteries"`
	Inverters  []inverterJSON  `json:"inverters" yaml:"inverters"`
	Buses      []busJSON       `json:"buses" yaml:"buses"`
	Loads      []loadJSON      `json:"loads" yaml:"loads"`
}

type generatorJSON struct {
	Name             string  `json:"name" yaml:"name"`
	Drive            string  `json:"drive" yaml:"drive"`
	EngineIndex      int     `json:"engine_index" yaml:"engine_index"`
	RatedVoltage     float64 `json:"rated_voltage" yaml:"rated_voltage"`
	RatedFrequencyHz float64 `json:"rated_frequency_hz" yaml:"rated_frequency_hz"`
	RatedPowerW      float64 `json:"rated_power_w" yaml:"rated_power_w"`
	RatedSpeedRPM    float64 `json:"rated_speed_rpm" yaml:"rated_speed_rpm"`
	RatedAirspeedKts float64 `json:"rated_airspeed_kts" yaml:"rated_airspeed_kts"`
	MaxOverloadSec   float64 `json:"max_overload_sec" yaml:"max_overload_sec"`
}

type batteryJSON struct {
	Name                  string  `json:"name" yaml:"name"`
	RatedVoltage          float64 `json:"rated_voltage" yaml:"rated_voltage"`
	CapacityAh            float64 `json:"capacity_ah" yaml:"capacity_ah"`
	InternalResistanceOhm float64 `json:"internal_resistance_ohm" yaml:"internal_resistance_ohm"`
	ChargeCurrentA        float64 `json:"charge_current_a" yaml:"charge_current_a"`
	Bus                   string  `json:"bus" yaml:"bus"`
}

type inverterJSON struct {
	Name         string  `json:"name" yaml:"name"`
	SourceBus    string  `json:"source_bus" yaml:"source_bus"`
	RatedVoltage float64 `json:"rated_voltage" yaml:"rated_voltage"`
	VoltageRatio float64 `json:"voltage_ratio" yaml:"voltage_ratio"`
	Efficiency   float64 `json:"efficiency" yaml:"efficiency"`
}

type sourceRefJSON struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	Priority int    `json:"priority" yaml:"priority"`
}

type busJSON struct {
	Name             string          `json:"name" yaml:"name"`
	AC               bool            `json:"ac" yaml:"ac"`
	CapacityW        float64         `json:"capacity_w" yaml:"capacity_w"`
	MinSourceVoltage float64         `json:"min_source_voltage" yaml:"min_source_voltage"`
	Sources          []sourceRefJSON `json:"sources" yaml:"sources"`
}

type loadJSON struct {
	Name             string  `json:"name" yaml:"name"`
	Bus              string  `json:"bus" yaml:"bus"`
	PowerW           float64 `json:"power_w" yaml:"power_w"`
	Essential        bool    `json:"essential" yaml:"essential"`
	SheddingPriority int     `json:"shedding_priority" yaml:"shedding_priority"`
	BreakerRatingA   float64 `json:"breaker_rating_a" yaml:"breaker_rating_a"`
}

type hydraulicJSON struct {
	Circuits []circuitJSON `json:"circuits" yaml:"circuits"`
}

type circuitJSON struct {
	Name               string  `json:"name" yaml:"name"`
	RatedPressurePSI   float64 `json:"rated_pressure_psi" yaml:"rated_pressure_psi"`
	BulkModulusPSI     float64 `json:"bulk_modulus_psi" yaml:"bulk_modulus_psi"`
	TrappedVolumeGal   float64 `json:"trapped_volume_gal" yaml:"trapped_volume_gal"`
	BackpressureFactor float64 `json:"backpressure_factor" yaml:"backpressure_factor"`

	Pumps       []pumpJSON        `json:"pumps" yaml:"pumps"`
	Reservoir   reservoirJSON     `json:"reservoir" yaml:"reservoir"`
	Accumulator accumulatorJSON   `json:"accumulator" yaml:"accumulator"`
	Filter      filterJSON        `json:"filter" yaml:"filter"`
	Actuators   []actuatorJSON    `json:"actuators" yaml:"actuators"`
	ReliefValve reliefValveJSON   `json:"relief_valve" yaml:"relief_valve"`
	Priorities  classPressureJSON `json:"priorities" yaml:"priorities"`
}

type pumpJSON struct {
	Name              string  `json:"name" yaml:"name"`
	Kind              string  `json:"kind" yaml:"kind"`
	EngineIndex       int     `json:"engine_index" yaml:"engine_index"`
	GearRatio         float64 `json:"gear_ratio" yaml:"gear_ratio"`
	FixedRPM          float64 `json:"fixed_rpm" yaml:"fixed_rpm"`
	PowerBus          string  `json:"power_bus" yaml:"power_bus"`
	RatedAirspeedKts  float64 `json:"rated_airspeed_kts" yaml:"rated_airspeed_kts"`
	RatedRPM          float64 `json:"rated_rpm" yaml:"rated_rpm"`
	MinRPM            float64 `json:"min_rpm" yaml:"min_rpm"`
	MaxAccelRPMPerSec float64 `json:"max_accel_rpm_per_sec" yaml:"max_accel_rpm_per_sec"`
	RatedFlowGPM      float64 `json:"rated_flow_gpm" yaml:"rated_flow_gpm"`
	RatedPressurePSI  float64 `json:"rated_pressure_psi" yaml:"rated_pressure_psi"`
	Efficiency        float64 `json:"efficiency" yaml:"efficiency"`
}

type reservoirJSON struct {
	CapacityGal float64 `json:"capacity_gal" yaml:"capacity_gal"`
	InitialGal  float64 `json:"initial_gal" yaml:"initial_gal"`
}

type accumulatorJSON struct {
	PrechargePSI           float64 `json:"precharge_psi" yaml:"precharge_psi"`
	ChargeRatePSIPerSec    float64 `json:"charge_rate_psi_per_sec" yaml:"charge_rate_psi_per_sec"`
	NitrogenLeakPSIPerHour float64 `json:"nitrogen_leak_psi_per_hour" yaml:"nitrogen_leak_psi_per_hour"`
	SupportFlowGPM         float64 `json:"support_flow_gpm" yaml:"support_flow_gpm"`
}

type filterJSON struct {
	DiffPSIPerGPM     float64 `json:"diff_psi_per_gpm" yaml:"diff_psi_per_gpm"`
	MaxDiffPSI        float64 `json:"max_diff_psi" yaml:"max_diff_psi"`
	BypassPSI         float64 `json:"bypass_psi" yaml:"bypass_psi"`
	ChangeRequiredPSI float64 `json:"change_required_psi" yaml:"change_required_psi"`
}

type actuatorJSON struct {
	Name               string  `json:"name" yaml:"name"`
	Class              string  `json:"class" yaml:"class"`
	Kind               string  `json:"kind" yaml:"kind"`
	ExtendAreaSqIn     float64 `json:"extend_area_sq_in" yaml:"extend_area_sq_in"`
	RetractAreaSqIn    float64 `json:"retract_area_sq_in" yaml:"retract_area_sq_in"`
	FrictionLbf        float64 `json:"friction_lbf" yaml:"friction_lbf"`
	MaxRatePerSec      float64 `json:"max_rate_per_sec" yaml:"max_rate_per_sec"`
	RateResponsePerSec float64 `json:"rate_response_per_sec" yaml:"rate_response_per_sec"`
	FlowPerUnitGPM     float64 `json:"flow_per_unit_gpm" yaml:"flow_per_unit_gpm"`
}

type reliefValveJSON struct {
	CrackPSI    float64 `json:"crack_psi" yaml:"crack_psi"`
	FullOpenPSI float64 `json:"full_open_psi" yaml:"full_open_psi"`
	FlowGPM     float64 `json:"flow_gpm" yaml:"flow_gpm"`
}

type classPressureJSON struct {
	PrimaryFlightPSI   float64 `json:"primary_flight_psi" yaml:"primary_flight_psi"`
	LandingGearPSI     float64 `json:"landing_gear_psi" yaml:"landing_gear_psi"`
	SecondaryFlightPSI float64 `json:"secondary_flight_psi" yaml:"secondary_flight_psi"`
	BrakesPSI          float64 `json:"brakes_psi" yaml:"brakes_psi"`
}

type environmentalJSON struct {
	Pressurization pressurizationJSON `json:"pressurization" yaml:"pressurization"`
	Packs          []packJSON         `json:"packs" yaml:"packs"`
	Zones          []zoneJSON         `json:"zones" yaml:"zones"`
	Bleed          bleedJSON          `json:"bleed" yaml:"bleed"`
	AntiIce        []antiIceJSON      `json:"anti_ice" yaml:"anti_ice"`
	Icing          icingJSON          `json:"icing" yaml:"icing"`
	Oxygen         oxygenJSON         `json:"oxygen" yaml:"oxygen"`
}

type pressurizationJSON struct {
	ScheduleKneeFt        float64 `json:"schedule_knee_ft" yaml:"schedule_knee_ft"`
	SlopeRatio            float64 `json:"slope_ratio" yaml:"slope_ratio"`
	MaxCabinAltFt         float64 `json:"max_cabin_alt_ft" yaml:"max_cabin_alt_ft"`
	ControllerGainPerMin  float64 `json:"controller_gain_per_min" yaml:"controller_gain_per_min"`
	MaxRateFPM            float64 `json:"max_rate_fpm" yaml:"max_rate_fpm"`
	MaxValveRateFPM       float64 `json:"max_valve_rate_fpm" yaml:"max_valve_rate_fpm"`
	ValveSlewPerSec       float64 `json:"valve_slew_per_sec" yaml:"valve_slew_per_sec"`
	InflowFPMPerCFM       float64 `json:"inflow_fpm_per_cfm" yaml:"inflow_fpm_per_cfm"`
	LeakFPMPerPSI         float64 `json:"leak_fpm_per_psi" yaml:"leak_fpm_per_psi"`
	SafetyReliefPSI       float64 `json:"safety_relief_psi" yaml:"safety_relief_psi"`
	SafetyHysteresisPSI   float64 `json:"safety_hysteresis_psi" yaml:"safety_hysteresis_psi"`
	SafetyVentFPM         float64 `json:"safety_vent_fpm" yaml:"safety_vent_fpm"`
	NegativeReliefPSI     float64 `json:"negative_relief_psi" yaml:"negative_relief_psi"`
	NegativeHysteresisPSI float64 `json:"negative_hysteresis_psi" yaml:"negative_hysteresis_psi"`
	NegativeVentFPM       float64 `json:"negative_vent_fpm" yaml:"negative_vent_fpm"`
}

type packJSON struct {
	Name             string  `json:"name" yaml:"name"`
	PowerBus         string  `json:"power_bus" yaml:"power_bus"`
	MinInletPSI      float64 `json:"min_inlet_psi" yaml:"min_inlet_psi"`
	RatedFlowCFM     float64 `json:"rated_flow_cfm" yaml:"rated_flow_cfm"`
	RefInletPSI      float64 `json:"ref_inlet_psi" yaml:"ref_inlet_psi"`
	CompressorDeltaC float64 `json:"compressor_delta_c" yaml:"compressor_delta_c"`
	HXEffectiveness  float64 `json:"hx_effectiveness" yaml:"hx_effectiveness"`
	TurbineDropC     float64 `json:"turbine_drop_c" yaml:"turbine_drop_c"`
	DewPointFloorC   float64 `json:"dew_point_floor_c" yaml:"dew_point_floor_c"`
}

type zoneJSON struct {
	Name               string  `json:"name" yaml:"name"`
	Pack               string  `json:"pack" yaml:"pack"`
	SupplyFlowCFM      float64 `json:"supply_flow_cfm" yaml:"supply_flow_cfm"`
	PassengerHeatW     float64 `json:"passenger_heat_w" yaml:"passenger_heat_w"`
	EquipmentHeatW     float64 `json:"equipment_heat_w" yaml:"equipment_heat_w"`
	ThermalMassJPerC   float64 `json:"thermal_mass_j_per_c" yaml:"thermal_mass_j_per_c"`
	InitialTempC       float64 `json:"initial_temp_c" yaml:"initial_temp_c"`
	DefaultTargetTempC float64 `json:"default_target_temp_c" yaml:"default_target_temp_c"`
	MixValveGain       float64 `json:"mix_valve_gain" yaml:"mix_valve_gain"`
}

type bleedSourceJSON struct {
	Name          string  `json:"name" yaml:"name"`
	Kind          string  `json:"kind" yaml:"kind"`
	EngineIndex   int     `json:"engine_index" yaml:"engine_index"`
	PSIPerPercent float64 `json:"psi_per_percent" yaml:"psi_per_percent"`
	TempPerEGTC   float64 `json:"temp_per_egt_c" yaml:"temp_per_egt_c"`
	FixedPSI      float64 `json:"fixed_psi" yaml:"fixed_psi"`
	FixedTempC    float64 `json:"fixed_temp_c" yaml:"fixed_temp_c"`
}

type bleedJSON struct {
	Sources                []bleedSourceJSON `json:"sources" yaml:"sources"`
	CheckValveMinPSI       float64           `json:"check_valve_min_psi" yaml:"check_valve_min_psi"`
	FlowPerPSI             float64           `json:"flow_per_psi" yaml:"flow_per_psi"`
	PrecoolerAirspeedKts   float64           `json:"precooler_airspeed_kts" yaml:"precooler_airspeed_kts"`
	PrecoolerEffectiveness float64           `json:"precooler_effectiveness" yaml:"precooler_effectiveness"`
	CrossbleedImbalancePSI float64           `json:"crossbleed_imbalance_psi" yaml:"crossbleed_imbalance_psi"`
}

type antiIceJSON struct {
	Name        string  `json:"name" yaml:"name"`
	Kind        string  `json:"kind" yaml:"kind"`
	PowerBus    string  `json:"power_bus" yaml:"power_bus"`
	PowerW      float64 `json:"power_w" yaml:"power_w"`
	BleedDriven bool    `json:"bleed_driven" yaml:"bleed_driven"`
	MinBleedPSI float64 `json:"min_bleed_psi" yaml:"min_bleed_psi"`
}

type icingJSON struct {
	MinTempC                float64 `json:"min_temp_c" yaml:"min_temp_c"`
	MaxTempC                float64 `json:"max_temp_c" yaml:"max_temp_c"`
	MaxAltFt                float64 `json:"max_alt_ft" yaml:"max_alt_ft"`
	MinAirspeedKts          float64 `json:"min_airspeed_kts" yaml:"min_airspeed_kts"`
	DetectProbabilityPerSec float64 `json:"detect_probability_per_sec" yaml:"detect_probability_per_sec"`
	AccretionPerSec         float64 `json:"accretion_per_sec" yaml:"accretion_per_sec"`
	MeltPerSec              float64 `json:"melt_per_sec" yaml:"melt_per_sec"`
}

type oxygenJSON struct {
	PassengerDeployAltFt float64 `json:"passenger_deploy_alt_ft" yaml:"passenger_deploy_alt_ft"`
	GeneratorDurationSec float64 `json:"generator_duration_sec" yaml:"generator_duration_sec"`
	CrewBottleLiters     float64 `json:"crew_bottle_liters" yaml:"crew_bottle_liters"`
	CrewRatedPSI         float64 `json:"crew_rated_psi" yaml:"crew_rated_psi"`
	NormalFlowLPM        float64 `json:"normal_flow_lpm" yaml:"normal_flow_lpm"`
	HighFlowLPM          float64 `json:"high_flow_lpm" yaml:"high_flow_lpm"`
	EmergencyFlowLPM     float64 `json:"emergency_flow_lpm" yaml:"emergency_flow_lpm"`
}

type avionicsJSON struct {
	Rates     ratesJSON        `json:"rates" yaml:"rates"`
	Buses     avioBusesJSON    `json:"buses" yaml:"buses"`
	Autopilot autopilotJSON    `json:"autopilot" yaml:"autopilot"`
	NavRadios []navRadioJSON   `json:"nav_radios" yaml:"nav_radios"`
	Stations  []stationJSON    `json:"stations" yaml:"stations"`
	GPS       gpsJSON          `json:"gps" yaml:"gps"`
	TCAS      tcasJSON         `json:"tcas" yaml:"tcas"`
	Radar     weatherRadarJSON `json:"radar" yaml:"radar"`
}

type ratesJSON struct {
	FMSHz       float64 `json:"fms_hz" yaml:"fms_hz"`
	AutopilotHz float64 `json:"autopilot_hz" yaml:"autopilot_hz"`
	NavHz       float64 `json:"nav_hz" yaml:"nav_hz"`
	RadarHz     float64 `json:"radar_hz" yaml:"radar_hz"`
}

type avioBusesJSON struct {
	FMS         string `json:"fms" yaml:"fms"`
	Autopilot   string `json:"autopilot" yaml:"autopilot"`
	Nav         string `json:"nav" yaml:"nav"`
	Radar       string `json:"radar" yaml:"radar"`
	TCAS        string `json:"tcas" yaml:"tcas"`
	Transponder string `json:"transponder" yaml:"transponder"`
}

type autopilotJSON struct {
	MaxBankDeg          float64 `json:"max_bank_deg" yaml:"max_bank_deg"`
	MaxClimbFPM         float64 `json:"max_climb_fpm" yaml:"max_climb_fpm"`
	MaxDescentFPM       float64 `json:"max_descent_fpm" yaml:"max_descent_fpm"`
	BankDegPerHdgErrDeg float64 `json:"bank_deg_per_hdg_err_deg" yaml:"bank_deg_per_hdg_err_deg"`
	VSFPMPerAltErrFt    float64 `json:"vs_fpm_per_alt_err_ft" yaml:"vs_fpm_per_alt_err_ft"`
}

type navRadioJSON struct {
	Name string `json:"name" yaml:"name"`
}

type stationJSON struct {
	Ident         string  `json:"ident" yaml:"ident"`
	Kind          string  `json:"kind" yaml:"kind"`
	FreqMHz       float64 `json:"freq_mhz" yaml:"freq_mhz"`
	LatDeg        float64 `json:"lat_deg" yaml:"lat_deg"`
	LonDeg        float64 `json:"lon_deg" yaml:"lon_deg"`
	CourseDeg     float64 `json:"course_deg" yaml:"course_deg"`
	GlideslopeDeg float64 `json:"glideslope_deg" yaml:"glideslope_deg"`
	RangeNM       float64 `json:"range_nm" yaml:"range_nm"`
}

type gpsJSON struct {
	MaxSatellites     int     `json:"max_satellites" yaml:"max_satellites"`
	AcquireSatsPerSec float64 `json:"acquire_sats_per_sec" yaml:"acquire_sats_per_sec"`
	BaseAccuracyM     float64 `json:"base_accuracy_m" yaml:"base_accuracy_m"`
	RAIMMinSatellites int     `json:"raim_min_satellites" yaml:"raim_min_satellites"`
	WAASMinSatellites int     `json:"waas_min_satellites" yaml:"waas_min_satellites"`
}

type tcasJSON struct {
	TARangeNM float64 `json:"ta_range_nm" yaml:"ta_range_nm"`
	TAAltFt   float64 `json:"ta_alt_ft" yaml:"ta_alt_ft"`
	TATimeSec float64 `json:"ta_time_sec" yaml:"ta_time_sec"`
	RARangeNM float64 `json:"ra_range_nm" yaml:"ra_range_nm"`
	RAAltFt   float64 `json:"ra_alt_ft" yaml:"ra_alt_ft"`
	RATimeSec float64 `json:"ra_time_sec" yaml:"ra_time_sec"`
}

type weatherRadarJSON struct {
	RangeNM        float64 `json:"range_nm" yaml:"range_nm"`
	SweepDegPerSec float64 `json:"sweep_deg_per_sec" yaml:"sweep_deg_per_sec"`
	SweepLimitDeg  float64 `json:"sweep_limit_deg" yaml:"sweep_limit_deg"`
	BeamWidthDeg   float64 `json:"beam_width_deg" yaml:"beam_width_deg"`
}

type engineJSON struct {
	N1   float64 `json:"n1" yaml:"n1"`
	N2   float64 `json:"n2" yaml:"n2"`
	EGTC float64 `json:"egt_c" yaml:"egt_c"`
}

type apuJSON struct {
	RPMPercent float64 `json:"rpm_percent" yaml:"rpm_percent"`
	Running    bool    `json:"running" yaml:"running"`
}

type aircraftJSON struct {
	LatitudeDeg      float64      `json:"latitude_deg" yaml:"latitude_deg"`
	LongitudeDeg     float64      `json:"longitude_deg" yaml:"longitude_deg"`
	AltitudeFt       float64      `json:"altitude_ft" yaml:"altitude_ft"`
	PitchRad         float64      `json:"pitch_rad" yaml:"pitch_rad"`
	RollRad          float64      `json:"roll_rad" yaml:"roll_rad"`
	HeadingRad       float64      `json:"heading_rad" yaml:"heading_rad"`
	AirspeedKts      float64      `json:"airspeed_kts" yaml:"airspeed_kts"`
	GroundSpeedKts   float64      `json:"ground_speed_kts" yaml:"ground_speed_kts"`
	VerticalSpeedFpm float64      `json:"vertical_speed_fpm" yaml:"vertical_speed_fpm"`
	Engines          []engineJSON `json:"engines" yaml:"engines"`
	APU              apuJSON      `json:"apu" yaml:"apu"`
	AmbientTempC     float64      `json:"ambient_temp_c" yaml:"ambient_temp_c"`
	OnGround         bool         `json:"on_ground" yaml:"on_ground"`
}

type waypointJSON struct {
	Ident  string  `json:"ident" yaml:"ident"`
	LatDeg float64 `json:"lat_deg" yaml:"lat_deg"`
	LonDeg float64 `json:"lon_deg" yaml:"lon_deg"`
	AltFt  float64 `json:"alt_ft" yaml:"alt_ft"`
}

type trafficJSON struct {
	ID               string  `json:"id" yaml:"id"`
	LatDeg           float64 `json:"lat_deg" yaml:"lat_deg"`
	LonDeg           float64 `json:"lon_deg" yaml:"lon_deg"`
	AltFt            float64 `json:"alt_ft" yaml:"alt_ft"`
	TrackDeg         float64 `json:"track_deg" yaml:"track_deg"`
	GroundSpeedKts   float64 `json:"ground_speed_kts" yaml:"ground_speed_kts"`
	VerticalSpeedFPM float64 `json:"vertical_speed_fpm" yaml:"vertical_speed_fpm"`
}

type weatherJSON struct {
	ID        string  `json:"id" yaml:"id"`
	LatDeg    float64 `json:"lat_deg" yaml:"lat_deg"`
	LonDeg    float64 `json:"lon_deg" yaml:"lon_deg"`
	RadiusNM  float64 `json:"radius_nm" yaml:"radius_nm"`
	Intensity int     `json:"intensity" yaml:"intensity"`
}

func buildScenario(payload scenarioJSON) (*Scenario, error) {
	sc := &Scenario{
		Name:   payload.Name,
		TickMs: payload.TickMs,
	}
	if sc.TickMs <= 0 {
		sc.TickMs = defaultTickMs
	}

	var err error
	if sc.Electrical, err = buildElectrical(payload.Electrical); err != nil {
		return nil, err
	}
	if sc.Hydraulic, err = buildHydraulic(payload.Hydraulic); err != nil {
		return nil, err
	}
	if sc.Environmental, err = buildEnvironmental(payload.Environmental); err != nil {
		return nil, err
	}
	if sc.Avionics, err = buildAvionics(payload.Avionics); err != nil {
		return nil, err
	}

	if payload.Aircraft != nil {
		a := payload.Aircraft
		sc.InitialAircraft = model.AircraftState{
			LatitudeDeg:      a.LatitudeDeg,
			LongitudeDeg:     a.LongitudeDeg,
			AltitudeFt:       a.AltitudeFt,
			PitchRad:         a.PitchRad,
			RollRad:          a.RollRad,
			HeadingRad:       a.HeadingRad,
			AirspeedKts:      a.AirspeedKts,
			GroundSpeedKts:   a.GroundSpeedKts,
			VerticalSpeedFpm: a.VerticalSpeedFpm,
			APU:              model.APUState{RPMPercent: a.APU.RPMPercent, Running: a.APU.Running},
			AmbientTempC:     a.AmbientTempC,
			OnGround:         a.OnGround,
		}
		for _, e := range a.Engines {
			sc.InitialAircraft.Engines = append(sc.InitialAircraft.Engines,
				model.EngineState{N1: e.N1, N2: e.N2, EGTC: e.EGTC})
		}
	}

	for _, w := range payload.FlightPlan {
		sc.FlightPlan = append(sc.FlightPlan, avionics.Waypoint{
			Ident: w.Ident, LatDeg: w.LatDeg, LonDeg: w.LonDeg, AltFt: w.AltFt,
		})
	}
	for _, t := range payload.Traffic {
		sc.Traffic = append(sc.Traffic, avionics.TrafficTarget{
			ID:               t.ID,
			LatDeg:           t.LatDeg,
			LonDeg:           t.LonDeg,
			AltFt:            t.AltFt,
			TrackDeg:         t.TrackDeg,
			GroundSpeedKts:   t.GroundSpeedKts,
			VerticalSpeedFPM: t.VerticalSpeedFPM,
		})
	}
	for _, w := range payload.Weather {
		sc.Weather = append(sc.Weather, avionics.WeatherCell{
			ID: w.ID, LatDeg: w.LatDeg, LonDeg: w.LonDeg,
			RadiusNM: w.RadiusNM, Intensity: w.Intensity,
		})
	}

	return sc, nil
}

func buildElectrical(in electricalJSON) (electrical.Config, error) {
	var cfg electrical.Config
	for _, g := range in.Generators {
		drive, err := driveFromString(g.Drive)
		if err != nil {
			return cfg, fmt.Errorf("%w: generator %q: %v", ErrScenarioInvalid, g.Name, err)
		}
		cfg.Generators = append(cfg.Generators, electrical.GeneratorConfig{
			Name:             g.Name,
			Drive:            drive,
			EngineIndex:      g.EngineIndex,
			RatedVoltage:     g.RatedVoltage,
			RatedFrequencyHz: g.RatedFrequencyHz,
			RatedPowerW:      g.RatedPowerW,
			RatedSpeedRPM:    g.RatedSpeedRPM,
			RatedAirspeedKts: g.RatedAirspeedKts,
			MaxOverloadSec:   g.MaxOverloadSec,
		})
	}
	for _, b := range in.Batteries {
		cfg.Batteries = append(cfg.Batteries, electrical.BatteryConfig{
			Name:                  b.Name,
			RatedVoltage:          b.RatedVoltage,
			CapacityAh:            b.CapacityAh,
			InternalResistanceOhm: b.InternalResistanceOhm,
			ChargeCurrentA:        b.ChargeCurrentA,
			Bus:                   b.Bus,
		})
	}
	for _, inv := range in.Inverters {
		cfg.Inverters = append(cfg.Inverters, electrical.InverterConfig{
			Name:         inv.Name,
			SourceBus:    inv.SourceBus,
			RatedVoltage: inv.RatedVoltage,
			VoltageRatio: inv.VoltageRatio,
			Efficiency:   inv.Efficiency,
		})
	}
	for _, b := range in.Buses {
		bc := electrical.BusConfig{
			Name:             b.Name,
			AC:               b.AC,
			CapacityW:        b.CapacityW,
			MinSourceVoltage: b.MinSourceVoltage,
		}
		for _, src := range b.Sources {
			kind, err := sourceKindFromString(src.Kind)
			if err != nil {
				return cfg, fmt.Errorf("%w: bus %q source %q: %v", ErrScenarioInvalid, b.Name, src.Name, err)
			}
			bc.Sources = append(bc.Sources, electrical.SourceRef{
				Kind: kind, Name: src.Name, Priority: src.Priority,
			})
		}
		cfg.Buses = append(cfg.Buses, bc)
	}
	for _, l := range in.Loads {
		cfg.Loads = append(cfg.Loads, electrical.LoadConfig{
			Name:             l.Name,
			Bus:              l.Bus,
			PowerW:           l.PowerW,
			Essential:        l.Essential,
			SheddingPriority: l.SheddingPriority,
			BreakerRatingA:   l.BreakerRatingA,
		})
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrScenarioInvalid, err)
	}
	return cfg, nil
}

func buildHydraulic(in hydraulicJSON) (hydraulic.Config, error) {
	var cfg hydraulic.Config
	for _, c := range in.Circuits {
		cc := hydraulic.CircuitConfig{
			Name:               c.Name,
			RatedPressurePSI:   c.RatedPressurePSI,
			BulkModulusPSI:     c.BulkModulusPSI,
			TrappedVolumeGal:   c.TrappedVolumeGal,
			BackpressureFactor: c.BackpressureFactor,
			Reservoir: hydraulic.ReservoirConfig{
				CapacityGal: c.Reservoir.CapacityGal,
				InitialGal:  c.Reservoir.InitialGal,
			},
			Accumulator: hydraulic.AccumulatorConfig{
				PrechargePSI:           c.Accumulator.PrechargePSI,
				ChargeRatePSIPerSec:    c.Accumulator.ChargeRatePSIPerSec,
				NitrogenLeakPSIPerHour: c.Accumulator.NitrogenLeakPSIPerHour,
				SupportFlowGPM:         c.Accumulator.SupportFlowGPM,
			},
			Filter: hydraulic.FilterConfig{
				DiffPSIPerGPM:     c.Filter.DiffPSIPerGPM,
				MaxDiffPSI:        c.Filter.MaxDiffPSI,
				BypassPSI:         c.Filter.BypassPSI,
				ChangeRequiredPSI: c.Filter.ChangeRequiredPSI,
			},
			ReliefValve: hydraulic.ReliefValveConfig{
				CrackPSI:    c.ReliefValve.CrackPSI,
				FullOpenPSI: c.ReliefValve.FullOpenPSI,
				FlowGPM:     c.ReliefValve.FlowGPM,
			},
			Priorities: hydraulic.ClassPressures{
				PrimaryFlightPSI:   c.Priorities.PrimaryFlightPSI,
				LandingGearPSI:     c.Priorities.LandingGearPSI,
				SecondaryFlightPSI: c.Priorities.SecondaryFlightPSI,
				BrakesPSI:          c.Priorities.BrakesPSI,
			},
		}
		for _, p := range c.Pumps {
			kind, err := pumpKindFromString(p.Kind)
			if err != nil {
				return cfg, fmt.Errorf("%w: pump %q: %v", ErrScenarioInvalid, p.Name, err)
			}
			cc.Pumps = append(cc.Pumps, hydraulic.PumpConfig{
				Name:              p.Name,
				Kind:              kind,
				EngineIndex:       p.EngineIndex,
				GearRatio:         p.GearRatio,
				FixedRPM:          p.FixedRPM,
				PowerBus:          p.PowerBus,
				RatedAirspeedKts:  p.RatedAirspeedKts,
				RatedRPM:          p.RatedRPM,
				MinRPM:            p.MinRPM,
				MaxAccelRPMPerSec: p.MaxAccelRPMPerSec,
				RatedFlowGPM:      p.RatedFlowGPM,
				RatedPressurePSI:  p.RatedPressurePSI,
				Efficiency:        p.Efficiency,
			})
		}
		for _, a := range c.Actuators {
			class, err := actuatorClassFromString(a.Class)
			if err != nil {
				return cfg, fmt.Errorf("%w: actuator %q: %v", ErrScenarioInvalid, a.Name, err)
			}
			kind, err := actuatorKindFromString(a.Kind)
			if err != nil {
				return cfg, fmt.Errorf("%w: actuator %q: %v", ErrScenarioInvalid, a.Name, err)
			}
			cc.Actuators = append(cc.Actuators, hydraulic.ActuatorConfig{
				Name:               a.Name,
				Class:              class,
				Kind:               kind,
				ExtendAreaSqIn:     a.ExtendAreaSqIn,
				RetractAreaSqIn:    a.RetractAreaSqIn,
				FrictionLbf:        a.FrictionLbf,
				MaxRatePerSec:      a.MaxRatePerSec,
				RateResponsePerSec: a.RateResponsePerSec,
				FlowPerUnitGPM:     a.FlowPerUnitGPM,
			})
		}
		cfg.Circuits = append(cfg.Circuits, cc)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrScenarioInvalid, err)
	}
	return cfg, nil
}

func buildEnvironmental(in environmentalJSON) (environmental.Config, error) {
	p := in.Pressurization
	cfg := environmental.Config{
		Pressurization: environmental.PressurizationConfig{
			ScheduleKneeFt:        p.ScheduleKneeFt,
			SlopeRatio:            p.SlopeRatio,
			MaxCabinAltFt:         p.MaxCabinAltFt,
			ControllerGainPerMin:  p.ControllerGainPerMin,
			MaxRateFPM:            p.MaxRateFPM,
			MaxValveRateFPM:       p.MaxValveRateFPM,
			ValveSlewPerSec:       p.ValveSlewPerSec,
			InflowFPMPerCFM:       p.InflowFPMPerCFM,
			LeakFPMPerPSI:         p.LeakFPMPerPSI,
			SafetyReliefPSI:       p.SafetyReliefPSI,
			SafetyHysteresisPSI:   p.SafetyHysteresisPSI,
			SafetyVentFPM:         p.SafetyVentFPM,
			NegativeReliefPSI:     p.NegativeReliefPSI,
			NegativeHysteresisPSI: p.NegativeHysteresisPSI,
			NegativeVentFPM:       p.NegativeVentFPM,
		},
		Bleed: environmental.BleedConfig{
			CheckValveMinPSI:       in.Bleed.CheckValveMinPSI,
			FlowPerPSI:             in.Bleed.FlowPerPSI,
			PrecoolerAirspeedKts:   in.Bleed.PrecoolerAirspeedKts,
			PrecoolerEffectiveness: in.Bleed.PrecoolerEffectiveness,
			CrossbleedImbalancePSI: in.Bleed.CrossbleedImbalancePSI,
		},
		Icing: environmental.IcingConfig{
			MinTempC:                in.Icing.MinTempC,
			MaxTempC:                in.Icing.MaxTempC,
			MaxAltFt:                in.Icing.MaxAltFt,
			MinAirspeedKts:          in.Icing.MinAirspeedKts,
			DetectProbabilityPerSec: in.Icing.DetectProbabilityPerSec,
			AccretionPerSec:         in.Icing.AccretionPerSec,
			MeltPerSec:              in.Icing.MeltPerSec,
		},
		Oxygen: environmental.OxygenConfig{
			PassengerDeployAltFt: in.Oxygen.PassengerDeployAltFt,
			GeneratorDurationSec: in.Oxygen.GeneratorDurationSec,
			CrewBottleLiters:     in.Oxygen.CrewBottleLiters,
			CrewRatedPSI:         in.Oxygen.CrewRatedPSI,
			NormalFlowLPM:        in.Oxygen.NormalFlowLPM,
			HighFlowLPM:          in.Oxygen.HighFlowLPM,
			EmergencyFlowLPM:     in.Oxygen.EmergencyFlowLPM,
		},
	}
	for _, pc := range in.Packs {
		cfg.Packs = append(cfg.Packs, environmental.PackConfig{
			Name:             pc.Name,
			PowerBus:         pc.PowerBus,
			MinInletPSI:      pc.MinInletPSI,
			RatedFlowCFM:     pc.RatedFlowCFM,
			RefInletPSI:      pc.RefInletPSI,
			CompressorDeltaC: pc.CompressorDeltaC,
			HXEffectiveness:  pc.HXEffectiveness,
			TurbineDropC:     pc.TurbineDropC,
			DewPointFloorC:   pc.DewPointFloorC,
		})
	}
	for _, z := range in.Zones {
		cfg.Zones = append(cfg.Zones, environmental.ZoneConfig{
			Name:               z.Name,
			Pack:               z.Pack,
			SupplyFlowCFM:      z.SupplyFlowCFM,
			PassengerHeatW:     z.PassengerHeatW,
			EquipmentHeatW:     z.EquipmentHeatW,
			ThermalMassJPerC:   z.ThermalMassJPerC,
			InitialTempC:       z.InitialTempC,
			DefaultTargetTempC: z.DefaultTargetTempC,
			MixValveGain:       z.MixValveGain,
		})
	}
	for _, src := range in.Bleed.Sources {
		kind, err := bleedKindFromString(src.Kind)
		if err != nil {
			return cfg, fmt.Errorf("%w: bleed source %q: %v", ErrScenarioInvalid, src.Name, err)
		}
		cfg.Bleed.Sources = append(cfg.Bleed.Sources, environmental.BleedSourceConfig{
			Name:          src.Name,
			Kind:          kind,
			EngineIndex:   src.EngineIndex,
			PSIPerPercent: src.PSIPerPercent,
			TempPerEGTC:   src.TempPerEGTC,
			FixedPSI:      src.FixedPSI,
			FixedTempC:    src.FixedTempC,
		})
	}
	for _, el := range in.AntiIce {
		kind, err := antiIceKindFromString(el.Kind)
		if err != nil {
			return cfg, fmt.Errorf("%w: anti-ice element %q: %v", ErrScenarioInvalid, el.Name, err)
		}
		cfg.AntiIce = append(cfg.AntiIce, environmental.AntiIceElementConfig{
			Name:        el.Name,
			Kind:        kind,
			PowerBus:    el.PowerBus,
			PowerW:      el.PowerW,
			BleedDriven: el.BleedDriven,
			MinBleedPSI: el.MinBleedPSI,
		})
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrScenarioInvalid, err)
	}
	return cfg, nil
}

func buildAvionics(in avionicsJSON) (avionics.Config, error) {
	cfg := avionics.Config{
		Rates: avionics.RatesConfig{
			FMSHz:       in.Rates.FMSHz,
			AutopilotHz: in.Rates.AutopilotHz,
			NavHz:       in.Rates.NavHz,
			RadarHz:     in.Rates.RadarHz,
		},
		Buses: avionics.BusesConfig{
			FMS:         in.Buses.FMS,
			Autopilot:   in.Buses.Autopilot,
			Nav:         in.Buses.Nav,
			Radar:       in.Buses.Radar,
			TCAS:        in.Buses.TCAS,
			Transponder: in.Buses.Transponder,
		},
		Autopilot: avionics.AutopilotConfig{
			MaxBankDeg:          in.Autopilot.MaxBankDeg,
			MaxClimbFPM:         in.Autopilot.MaxClimbFPM,
			MaxDescentFPM:       in.Autopilot.MaxDescentFPM,
			BankDegPerHdgErrDeg: in.Autopilot.BankDegPerHdgErrDeg,
			VSFPMPerAltErrFt:    in.Autopilot.VSFPMPerAltErrFt,
		},
		GPS: avionics.GPSConfig{
			MaxSatellites:     in.GPS.MaxSatellites,
			AcquireSatsPerSec: in.GPS.AcquireSatsPerSec,
			BaseAccuracyM:     in.GPS.BaseAccuracyM,
			RAIMMinSatellites: in.GPS.RAIMMinSatellites,
			WAASMinSatellites: in.GPS.WAASMinSatellites,
		},
		TCAS: avionics.TCASConfig{
			TARangeNM: in.TCAS.TARangeNM,
			TAAltFt:   in.TCAS.TAAltFt,
			TATimeSec: in.TCAS.TATimeSec,
			RARangeNM: in.TCAS.RARangeNM,
			RAAltFt:   in.TCAS.RAAltFt,
			RATimeSec: in.TCAS.RATimeSec,
		},
		Radar: avionics.RadarConfig{
			RangeNM:        in.Radar.RangeNM,
			SweepDegPerSec: in.Radar.SweepDegPerSec,
			SweepLimitDeg:  in.Radar.SweepLimitDeg,
			BeamWidthDeg:   in.Radar.BeamWidthDeg,
		},
	}
	for _, r := range in.NavRadios {
		cfg.NavRadios = append(cfg.NavRadios, avionics.NavRadioConfig{Name: r.Name})
	}
	for _, st := range in.Stations {
		kind, err := stationKindFromString(st.Kind)
		if err != nil {
			return cfg, fmt.Errorf("%w: station %q: %v", ErrScenarioInvalid, st.Ident, err)
		}
		cfg.Stations = append(cfg.Stations, avionics.NavStationConfig{
			Ident:         st.Ident,
			Kind:          kind,
			FreqMHz:       st.FreqMHz,
			LatDeg:        st.LatDeg,
			LonDeg:        st.LonDeg,
			CourseDeg:     st.CourseDeg,
			GlideslopeDeg: st.GlideslopeDeg,
			RangeNM:       st.RangeNM,
		})
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrScenarioInvalid, err)
	}
	return cfg, nil
}

func driveFromString(s string) (electrical.GeneratorDrive, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine":
		return electrical.DriveEngine, nil
	case "apu":
		return electrical.DriveAPU, nil
	case "ground":
		return electrical.DriveGround, nil
	case "rat":
		return electrical.DriveRAT, nil
	default:
		return 0, fmt.Errorf("unknown generator drive %q", s)
	}
}

func sourceKindFromString(s string) (electrical.SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine_generator":
		return electrical.SourceEngineGenerator, nil
	case "apu_generator":
		return electrical.SourceAPUGenerator, nil
	case "battery":
		return electrical.SourceBattery, nil
	case "inverter":
		return electrical.SourceInverter, nil
	case "ground_power":
		return electrical.SourceGroundPower, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}

func pumpKindFromString(s string) (hydraulic.PumpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine":
		return hydraulic.PumpEngine, nil
	case "electric":
		return hydraulic.PumpElectric, nil
	case "manual":
		return hydraulic.PumpManual, nil
	case "rat":
		return hydraulic.PumpRAT, nil
	default:
		return 0, fmt.Errorf("unknown pump kind %q", s)
	}
}

func actuatorClassFromString(s string) (hydraulic.ActuatorClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary_flight":
		return hydraulic.ClassPrimaryFlight, nil
	case "landing_gear":
		return hydraulic.ClassLandingGear, nil
	case "secondary_flight":
		return hydraulic.ClassSecondaryFlight, nil
	case "brakes":
		return hydraulic.ClassBrakes, nil
	default:
		return 0, fmt.Errorf("unknown actuator class %q", s)
	}
}

func actuatorKindFromString(s string) (hydraulic.ActuatorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return hydraulic.ActuatorLinear, nil
	case "rotary":
		return hydraulic.ActuatorRotary, nil
	default:
		return 0, fmt.Errorf("unknown actuator kind %q", s)
	}
}

func bleedKindFromString(s string) (environmental.BleedKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine":
		return environmental.BleedEngine, nil
	case "apu":
		return environmental.BleedAPU, nil
	case "ground":
		return environmental.BleedGround, nil
	default:
		return 0, fmt.Errorf("unknown bleed kind %q", s)
	}
}

func antiIceKindFromString(s string) (environmental.AntiIceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wing":
		return environmental.AntiIceWing, nil
	case "engine":
		return environmental.AntiIceEngine, nil
	case "pitot_static", "pitot":
		return environmental.AntiIcePitotStatic, nil
	case "windshield":
		return environmental.AntiIceWindshield, nil
	case "probe":
		return environmental.AntiIceProbe, nil
	default:
		return 0, fmt.Errorf("unknown anti-ice kind %q", s)
	}
}

func stationKindFromString(s string) (avionics.StationKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VOR":
		return avionics.StationVOR, nil
	case "ILS":
		return avionics.StationILS, nil
	default:
		return 0, fmt.Errorf("unknown station kind %q", s)
	}
}
