package config

// #region dashboard-config
// DashboardConfig holds the tunable thresholds of the dashboard. JSON keys
// match the hosted preset documents, so remote presets decode unchanged.
type DashboardConfig struct {
	NorthStar  NorthStar `json:"nsm" yaml:"nsm"`
	Gates      Gates     `json:"gates" yaml:"gates"`
	Bands      Bands     `json:"bands" yaml:"bands"`
	SliceDim   SliceDim  `json:"sliceDim" yaml:"sliceDim"`
	PresetName string    `json:"presetName,omitempty" yaml:"presetName,omitempty"`
}

// NorthStar ceilings drive informational badges only; they never gate.
type NorthStar struct {
	BlockRateMax     float64 `json:"blockRateMax" yaml:"blockRateMax"`
	WorstSliceGapMax float64 `json:"worstSliceGapMax" yaml:"worstSliceGapMax"`
}

// Gates holds the three independent release-gate rule sets.
type Gates struct {
	A GateA `json:"A" yaml:"A"`
	B GateB `json:"B" yaml:"B"`
	C GateC `json:"C" yaml:"C"`
}

// GateA covers quality and latency.
type GateA struct {
	BlockRateMin     float64 `json:"blockRateMin" yaml:"blockRateMin"`
	LatencyP95Max    float64 `json:"latencyP95Max" yaml:"latencyP95Max"`
	WorstSliceGapMax float64 `json:"worstSliceGapMax" yaml:"worstSliceGapMax"`
}

// GateB covers appeals and over-refusal.
type GateB struct {
	OverRefusalMax   float64 `json:"overRefusalMax" yaml:"overRefusalMax"`
	AppealsUpheldMin float64 `json:"appealsUpheldMin" yaml:"appealsUpheldMin"`
}

// GateC covers cost and volume.
type GateC struct {
	AvgCostMax float64 `json:"avgCostMax" yaml:"avgCostMax"`
	MinVolume  float64 `json:"minVolume" yaml:"minVolume"`
}

// Bands are the confidence thresholds of the automation tiers. They are
// rendered as text and not applied to records.
type Bands struct {
	High   float64 `json:"high" yaml:"high"`
	Medium float64 `json:"medium" yaml:"medium"`
}

// SliceDim names the nominal disparity dimension. Stored and shown, but no
// aggregation reads it: disparity always groups by slice.
type SliceDim string

const (
	SliceDimLanguage SliceDim = "language"
	SliceDimSlice    SliceDim = "slice"
)

// #endregion dashboard-config

// #region defaults
// Default returns the "balanced" preset.
func Default() DashboardConfig {
	return DashboardConfig{
		NorthStar: NorthStar{BlockRateMax: 0.45, WorstSliceGapMax: 0.10},
		Gates: Gates{
			A: GateA{BlockRateMin: 0.30, LatencyP95Max: 500, WorstSliceGapMax: 0.10},
			B: GateB{OverRefusalMax: 0.08, AppealsUpheldMin: 0.60},
			C: GateC{AvgCostMax: 1.0, MinVolume: 12},
		},
		Bands:      Bands{High: 0.85, Medium: 0.60},
		SliceDim:   SliceDimLanguage,
		PresetName: "balanced",
	}
}

// #endregion defaults
