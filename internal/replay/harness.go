package replay

import (
	"fmt"

	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
)

// #region types

// Result captures the outcome of running one fixture.
type Result struct {
	Name        string
	Description string
	Snapshot    dashboard.Snapshot
	Mismatches  []string
}

// Passed reports whether the snapshot matched every expectation.
func (r Result) Passed() bool { return len(r.Mismatches) == 0 }

// Summary aggregates a batch of fixture runs.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion types

// #region run

// Run builds the dashboard for the fixture's inputs and compares it against
// the expected verdict.
func Run(f *Fixture) (Result, error) {
	rows, spec, cfg, err := f.Inputs()
	if err != nil {
		return Result{}, err
	}

	snap := dashboard.Build(rows, spec, cfg)
	res := Result{Name: f.Name, Description: f.Description, Snapshot: snap}

	exp := f.Expected
	got := snap.Gates.Results
	if got != exp.Gates {
		res.Mismatches = append(res.Mismatches,
			fmt.Sprintf("gates: expected A=%t B=%t C=%t, got A=%t B=%t C=%t",
				exp.Gates.A, exp.Gates.B, exp.Gates.C, got.A, got.B, got.C))
	}
	res.checkInt("total", exp.Total, snap.KPIs.Total)
	res.checkInt("blocks", exp.Blocks, snap.KPIs.Blocks)
	res.checkInt("suggests", exp.Suggests, snap.KPIs.Suggests)
	res.checkInt("allows", exp.Allows, snap.KPIs.Allows)
	if exp.Reason != "" && exp.Reason != snap.Gates.Reason {
		res.Mismatches = append(res.Mismatches,
			fmt.Sprintf("reason: expected %q, got %q", exp.Reason, snap.Gates.Reason))
	}
	return res, nil
}

func (r *Result) checkInt(name string, want *int, got int) {
	if want != nil && *want != got {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("%s: expected %d, got %d", name, *want, got))
	}
}

// RunAll runs every fixture in order. A fixture whose inputs cannot be
// resolved stops the batch.
func RunAll(fixtures []*Fixture) ([]Result, Summary, error) {
	results := make([]Result, 0, len(fixtures))
	var s Summary
	for _, f := range fixtures {
		r, err := Run(f)
		if err != nil {
			return nil, Summary{}, err
		}
		results = append(results, r)
		s.Total++
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return results, s, nil
}

// #endregion run
