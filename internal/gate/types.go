package gate

// #region gate-name
// Name identifies one of the three release gates.
type Name string

const (
	GateA Name = "A" // quality + latency
	GateB Name = "B" // appeals + over-refusal
	GateC Name = "C" // cost + volume
)

// #endregion gate-name

// #region results
// Results holds the independent pass/fail outcome of each gate.
type Results struct {
	A bool `json:"A"`
	B bool `json:"B"`
	C bool `json:"C"`
}

// AllPass reports whether every gate passed.
func (r Results) AllPass() bool {
	return r.A && r.B && r.C
}

// Get returns the outcome of gate n.
func (r Results) Get(n Name) bool {
	switch n {
	case GateA:
		return r.A
	case GateB:
		return r.B
	case GateC:
		return r.C
	}
	return false
}

// #endregion results

// #region check
// Comparator is the inclusive comparison applied by a check.
type Comparator string

const (
	AtLeast Comparator = ">="
	AtMost  Comparator = "<="
)

// Check is a single threshold comparison inside a gate.
type Check struct {
	Gate      Name       `json:"gate"`
	Name      string     `json:"name"`
	Value     float64    `json:"value"`
	Op        Comparator `json:"op"`
	Threshold float64    `json:"threshold"`
	Pass      bool       `json:"pass"`
}

// Report is Results plus the checks that produced them.
type Report struct {
	Results Results `json:"results"`
	Checks  []Check `json:"checks"`
	Reason  string  `json:"reason"`
}

// #endregion check

// #region north-star
// NorthStarStatus is the informational badge state against the NSM ceilings.
type NorthStarStatus struct {
	BlockRateOK     bool `json:"blockRateOk"`
	WorstSliceGapOK bool `json:"worstSliceGapOk"`
}

// #endregion north-star
