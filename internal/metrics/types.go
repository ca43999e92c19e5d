package metrics

// #region kpi-set
// KpiSet is the flat set of scalar KPIs for one filtered record set.
// Total is the record count, or 1 for an empty set; rates divide by it.
type KpiSet struct {
	Total    int `json:"total"`
	Blocks   int `json:"blocks"`
	Suggests int `json:"suggests"`
	Allows   int `json:"allows"`

	BlockRate         float64 `json:"blockRate"`
	OverRefusalRate   float64 `json:"overRefusalRate"` // overturned / total, a proxy
	AppealsUpheldRate float64 `json:"appealsUpheldRate"`
	P95Latency        float64 `json:"p95Latency"` // ms
	AvgCost           float64 `json:"avgCost"`    // dollars per decision
	WorstDisparity    float64 `json:"worstDisparity"`
}

// #endregion kpi-set
