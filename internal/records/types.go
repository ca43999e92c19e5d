package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// #region enums
// Decision is the categorical output of an enforcement decision.
type Decision string

const (
	DecisionBlock   Decision = "block"
	DecisionSuggest Decision = "suggest"
	DecisionAllow   Decision = "allow"
)

// Decisions lists the closed decision set in display order.
var Decisions = []Decision{DecisionBlock, DecisionSuggest, DecisionAllow}

// Valid reports whether d is one of block, suggest, allow.
func (d Decision) Valid() bool {
	switch d {
	case DecisionBlock, DecisionSuggest, DecisionAllow:
		return true
	}
	return false
}

// UserResponse is how the end user reacted to a decision.
type UserResponse string

const (
	ResponseAccept  UserResponse = "accept"
	ResponseClarify UserResponse = "clarify"
	ResponseDispute UserResponse = "dispute"
	ResponseNone    UserResponse = "none"
)

func (u UserResponse) Valid() bool {
	switch u {
	case ResponseAccept, ResponseClarify, ResponseDispute, ResponseNone:
		return true
	}
	return false
}

// AppealOutcome is the result of an appeal, if any.
type AppealOutcome string

const (
	AppealUpheld     AppealOutcome = "upheld"
	AppealOverturned AppealOutcome = "overturned"
	AppealNone       AppealOutcome = "none"
)

func (a AppealOutcome) Valid() bool {
	switch a {
	case AppealUpheld, AppealOverturned, AppealNone:
		return true
	}
	return false
}

// #endregion enums

// #region record
// Record is one enforcement decision event.
type Record struct {
	ID             RecordID      `json:"id"`
	Timestamp      time.Time     `json:"ts"`
	PolicyCategory string        `json:"policy_category"`
	Confidence     float64       `json:"confidence"`
	Decision       Decision      `json:"decision"`
	Rationale      string        `json:"rationale"`
	Slice          string        `json:"slice"`
	Language       string        `json:"language"`
	LatencyMs      int           `json:"latencyMs"`
	CostCents      int           `json:"costCents"`
	UserResponse   UserResponse  `json:"user_response"`
	AppealOutcome  AppealOutcome `json:"appeal_outcome"`
}

// Validate checks the invariants every imported record must hold.
func (r Record) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("record %s: missing timestamp", r.ID)
	}
	if !(r.Confidence >= 0 && r.Confidence <= 1) {
		return fmt.Errorf("record %s: confidence %v outside [0,1]", r.ID, r.Confidence)
	}
	if !r.Decision.Valid() {
		return fmt.Errorf("record %s: unknown decision %q", r.ID, r.Decision)
	}
	if r.LatencyMs < 0 || r.CostCents < 0 {
		return fmt.Errorf("record %s: negative latency or cost", r.ID)
	}
	if !r.UserResponse.Valid() {
		return fmt.Errorf("record %s: unknown user_response %q", r.ID, r.UserResponse)
	}
	if !r.AppealOutcome.Valid() {
		return fmt.Errorf("record %s: unknown appeal_outcome %q", r.ID, r.AppealOutcome)
	}
	return nil
}

// DateKey is the calendar date of the timestamp as written, in its own offset.
func (r Record) DateKey() string {
	return r.Timestamp.Format("2006-01-02")
}

// #endregion record

// #region record-id
// RecordID is an opaque identifier. Upstream producers emit either JSON
// numbers or strings; both decode to the same textual form.
type RecordID string

func (id RecordID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string or number.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// MarshalJSON emits integer-looking IDs as numbers so round trips keep the
// producer's shape for the common case.
func (id RecordID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// #endregion record-id

// #region timestamps
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 instant. Zone-less inputs are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}

// FormatTimestamp is the inverse used by exports and stores.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// rawRecord mirrors Record with the timestamp kept as text so decoding can
// accept every layout ParseTimestamp does.
type rawRecord struct {
	ID             RecordID      `json:"id"`
	Timestamp      string        `json:"ts"`
	PolicyCategory string        `json:"policy_category"`
	Confidence     float64       `json:"confidence"`
	Decision       Decision      `json:"decision"`
	Rationale      string        `json:"rationale"`
	Slice          string        `json:"slice"`
	Language       string        `json:"language"`
	LatencyMs      int           `json:"latencyMs"`
	CostCents      int           `json:"costCents"`
	UserResponse   UserResponse  `json:"user_response"`
	AppealOutcome  AppealOutcome `json:"appeal_outcome"`
}

// UnmarshalJSON decodes the wire form and defaults the optional enums to none.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return fmt.Errorf("record %s: %w", raw.ID, err)
	}
	if raw.UserResponse == "" {
		raw.UserResponse = ResponseNone
	}
	if raw.AppealOutcome == "" {
		raw.AppealOutcome = AppealNone
	}
	*r = Record{
		ID:             raw.ID,
		Timestamp:      ts,
		PolicyCategory: raw.PolicyCategory,
		Confidence:     raw.Confidence,
		Decision:       raw.Decision,
		Rationale:      raw.Rationale,
		Slice:          raw.Slice,
		Language:       raw.Language,
		LatencyMs:      raw.LatencyMs,
		CostCents:      raw.CostCents,
		UserResponse:   raw.UserResponse,
		AppealOutcome:  raw.AppealOutcome,
	}
	return nil
}

// MarshalJSON writes the timestamp in RFC 3339 with its original offset.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(rawRecord{
		ID:             r.ID,
		Timestamp:      FormatTimestamp(r.Timestamp),
		PolicyCategory: r.PolicyCategory,
		Confidence:     r.Confidence,
		Decision:       r.Decision,
		Rationale:      r.Rationale,
		Slice:          r.Slice,
		Language:       r.Language,
		LatencyMs:      r.LatencyMs,
		CostCents:      r.CostCents,
		UserResponse:   r.UserResponse,
		AppealOutcome:  r.AppealOutcome,
	})
}

// #endregion timestamps
