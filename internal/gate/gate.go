package gate

import (
	"fmt"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/metrics"
)

// #region evaluate
// Evaluate applies the gate thresholds in cfg to kpis. Every comparison is
// inclusive and every gate is decided independently.
func Evaluate(kpis metrics.KpiSet, cfg config.DashboardConfig) Results {
	a := cfg.Gates.A
	b := cfg.Gates.B
	c := cfg.Gates.C
	return Results{
		A: kpis.BlockRate >= a.BlockRateMin &&
			kpis.WorstDisparity <= a.WorstSliceGapMax &&
			kpis.P95Latency <= a.LatencyP95Max,
		B: kpis.OverRefusalRate <= b.OverRefusalMax &&
			kpis.AppealsUpheldRate >= b.AppealsUpheldMin,
		C: kpis.AvgCost <= c.AvgCostMax &&
			float64(kpis.Total) >= c.MinVolume,
	}
}

// #endregion evaluate

// #region explain
// Explain evaluates the same rules as Evaluate and keeps every individual
// check, so a failing gate can be traced to the threshold it missed.
func Explain(kpis metrics.KpiSet, cfg config.DashboardConfig) Report {
	a := cfg.Gates.A
	b := cfg.Gates.B
	c := cfg.Gates.C

	checks := []Check{
		check(GateA, "block_rate", kpis.BlockRate, AtLeast, a.BlockRateMin),
		check(GateA, "worst_slice_gap", kpis.WorstDisparity, AtMost, a.WorstSliceGapMax),
		check(GateA, "latency_p95_ms", kpis.P95Latency, AtMost, a.LatencyP95Max),
		check(GateB, "over_refusal_rate", kpis.OverRefusalRate, AtMost, b.OverRefusalMax),
		check(GateB, "appeals_upheld_rate", kpis.AppealsUpheldRate, AtLeast, b.AppealsUpheldMin),
		check(GateC, "avg_cost_usd", kpis.AvgCost, AtMost, c.AvgCostMax),
		check(GateC, "volume", float64(kpis.Total), AtLeast, c.MinVolume),
	}

	res := Results{A: true, B: true, C: true}
	var failed []Check
	for _, ch := range checks {
		if ch.Pass {
			continue
		}
		failed = append(failed, ch)
		switch ch.Gate {
		case GateA:
			res.A = false
		case GateB:
			res.B = false
		case GateC:
			res.C = false
		}
	}

	reason := "all gates passed"
	if len(failed) > 0 {
		f := failed[0]
		reason = fmt.Sprintf("gate %s: %s %.4f not %s %.4f", f.Gate, f.Name, f.Value, f.Op, f.Threshold)
		if len(failed) > 1 {
			reason = fmt.Sprintf("%d checks failed, first %s", len(failed), reason)
		}
	}

	return Report{Results: res, Checks: checks, Reason: reason}
}

// #endregion explain

// #region north-star
// NorthStar compares kpis against the informational NSM ceilings.
func NorthStar(kpis metrics.KpiSet, cfg config.DashboardConfig) NorthStarStatus {
	return NorthStarStatus{
		BlockRateOK:     kpis.BlockRate <= cfg.NorthStar.BlockRateMax,
		WorstSliceGapOK: kpis.WorstDisparity <= cfg.NorthStar.WorstSliceGapMax,
	}
}

// #endregion north-star

// #region helpers
func check(g Name, name string, value float64, op Comparator, threshold float64) Check {
	pass := value <= threshold
	if op == AtLeast {
		pass = value >= threshold
	}
	return Check{Gate: g, Name: name, Value: value, Op: op, Threshold: threshold, Pass: pass}
}

// #endregion helpers
