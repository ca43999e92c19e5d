package logging

import "time"

// #region evaluation-entry
// EvaluationEntry is a single row in the evaluation_log table: one gate
// verdict together with the inputs that produced it.
type EvaluationEntry struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"` // "cli" | "http"
	ConfigVersion string    `json:"configVersion,omitempty"`
	RecordCount   int       `json:"recordCount"`
	FilterJSON    string    `json:"filter,omitempty"`
	KPIsJSON      string    `json:"kpis,omitempty"`
	GateA         bool      `json:"gateA"`
	GateB         bool      `json:"gateB"`
	GateC         bool      `json:"gateC"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// #endregion evaluation-entry
