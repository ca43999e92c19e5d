package dashboard

import (
	"github.com/danielpatrickdp/policy-dash/internal/breakdown"
	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/gate"
	"github.com/danielpatrickdp/policy-dash/internal/metrics"
	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region snapshot
// Snapshot is every derived view for one (records, filter, config) input.
type Snapshot struct {
	Filter     filter.Spec               `json:"filter"`
	Config     config.DashboardConfig    `json:"config"`
	Records    []records.Record          `json:"records"`
	KPIs       metrics.KpiSet            `json:"kpis"`
	Series     []breakdown.DayCounts     `json:"series"`
	Categories []breakdown.CategoryCount `json:"categories"`
	Bands      []breakdown.BandCount     `json:"bands"`
	Disparity  []breakdown.SliceRate     `json:"disparity"`
	Gates      gate.Report               `json:"gates"`
	NorthStar  gate.NorthStarStatus      `json:"northStar"`
	BandText   []string                  `json:"bandText"`
}

// #endregion snapshot

// #region build
// Build recomputes everything from scratch. It holds no state between calls.
func Build(rows []records.Record, spec filter.Spec, cfg config.DashboardConfig) Snapshot {
	filtered := filter.Apply(rows, spec)
	kpis := metrics.Aggregate(filtered)

	return Snapshot{
		Filter:     spec,
		Config:     cfg,
		Records:    filtered,
		KPIs:       kpis,
		Series:     breakdown.TimeSeries(filtered),
		Categories: breakdown.ByCategory(filtered),
		Bands:      breakdown.DecisionBands(filtered),
		Disparity:  breakdown.SliceDisparity(filtered),
		Gates:      gate.Explain(kpis, cfg),
		NorthStar:  gate.NorthStar(kpis, cfg),
		BandText:   cfg.Bands.Describe(),
	}
}

// #endregion build
