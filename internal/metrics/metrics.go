package metrics

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region aggregate
// Aggregate computes the KPI set for rows. It never fails: an empty input
// yields zero rates with Total reported as 1.
func Aggregate(rows []records.Record) KpiSet {
	n := len(rows)
	total := n
	if total == 0 {
		total = 1
	}

	var ks KpiSet
	ks.Total = total

	var appeals, overturned, upheld, costCents int
	latencies := make([]float64, 0, n)
	for _, r := range rows {
		switch r.Decision {
		case records.DecisionBlock:
			ks.Blocks++
		case records.DecisionSuggest:
			ks.Suggests++
		case records.DecisionAllow:
			ks.Allows++
		}
		switch r.AppealOutcome {
		case records.AppealOverturned:
			overturned++
		case records.AppealUpheld:
			upheld++
		}
		if r.AppealOutcome != records.AppealNone {
			appeals++
		}
		costCents += r.CostCents
		latencies = append(latencies, float64(r.LatencyMs))
	}

	ks.BlockRate = float64(ks.Blocks) / float64(total)
	ks.OverRefusalRate = float64(overturned) / float64(total)
	if appeals > 0 {
		ks.AppealsUpheldRate = float64(upheld) / float64(appeals)
	}
	ks.P95Latency = P95(latencies)
	if n > 0 {
		ks.AvgCost = float64(costCents) / float64(n) / 100
	}
	ks.WorstDisparity = WorstDisparity(rows)

	return ks
}

// #endregion aggregate

// #region percentile
// P95 returns the nearest-rank 95th percentile: the ascending-sorted value
// at index floor(0.95*(len-1)). Returns 0 for no values. values is not modified.
func P95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(math.Floor(0.95 * float64(len(sorted)-1)))
	return sorted[idx]
}

// #endregion percentile

// #region disparity
// WorstDisparity groups rows by slice, falling back to language when a
// record's slice is empty, and returns the spread between the highest and
// lowest per-group block rate.
func WorstDisparity(rows []records.Record) float64 {
	type tally struct{ total, blocks int }
	groups := make(map[string]*tally)
	for _, r := range rows {
		key := r.Slice
		if key == "" {
			key = r.Language
		}
		g, ok := groups[key]
		if !ok {
			g = &tally{}
			groups[key] = g
		}
		g.total++
		if r.Decision == records.DecisionBlock {
			g.blocks++
		}
	}
	if len(groups) == 0 {
		return 0
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		rate := 0.0
		if g.total > 0 {
			rate = float64(g.blocks) / float64(g.total)
		}
		lo = math.Min(lo, rate)
		hi = math.Max(hi, rate)
	}
	return hi - lo
}

// #endregion disparity
