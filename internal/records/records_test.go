package records

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSample_LoadsTwelveValidRecords(t *testing.T) {
	rows := Sample()
	if len(rows) != 12 {
		t.Fatalf("expected 12 sample records, got %d", len(rows))
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			t.Errorf("sample record invalid: %v", err)
		}
	}
	if rows[0].ID != "1" {
		t.Errorf("expected first id '1', got %q", rows[0].ID)
	}
}

func TestSample_ReturnsIndependentCopies(t *testing.T) {
	a := Sample()
	a[0].Decision = DecisionAllow
	b := Sample()
	if b[0].Decision != DecisionBlock {
		t.Fatalf("mutating one sample leaked into another: %s", b[0].Decision)
	}
}

func TestRecordID_AcceptsNumberAndString(t *testing.T) {
	var r struct {
		A RecordID `json:"a"`
		B RecordID `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 42, "b": "abc-7"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.A != "42" || r.B != "abc-7" {
		t.Fatalf("got a=%q b=%q", r.A, r.B)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":42,"b":"abc-7"}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestRecordID_LeadingZeroStaysString(t *testing.T) {
	out, err := json.Marshal(RecordID("007"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"007"` {
		t.Fatalf("expected quoted id, got %s", out)
	}
}

func TestRecord_UnmarshalDefaultsOptionalEnums(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"id":"x","ts":"2025-08-07T15:10:00Z","policy_category":"HATE_SPEECH","confidence":0.5,"decision":"allow"}`), &r)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.UserResponse != ResponseNone || r.AppealOutcome != AppealNone {
		t.Fatalf("expected none defaults, got %q/%q", r.UserResponse, r.AppealOutcome)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRecord_UnmarshalRejectsBadTimestamp(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"id":1,"ts":"yesterday","decision":"block"}`), &r)
	if err == nil {
		t.Fatal("expected error for unparseable ts")
	}
}

func TestRecord_Validate(t *testing.T) {
	base := Sample()[0]

	bad := base
	bad.Confidence = 1.2
	if err := bad.Validate(); err == nil {
		t.Error("expected error for confidence > 1")
	}

	bad = base
	bad.Decision = "escalate"
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "decision") {
		t.Errorf("expected decision error, got %v", err)
	}

	bad = base
	bad.LatencyMs = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative latency")
	}

	bad = base
	bad.AppealOutcome = "pending"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown appeal outcome")
	}
}

func TestDateKey_UsesWrittenOffset(t *testing.T) {
	ts, err := ParseTimestamp("2025-08-08T01:30:00+05:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := Record{Timestamp: ts}
	if got := r.DateKey(); got != "2025-08-08" {
		t.Fatalf("expected 2025-08-08, got %s", got)
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	for _, in := range []string{
		"2025-08-07T15:10:00Z",
		"2025-08-07T15:10:00.123456Z",
		"2025-08-07T15:10:00",
		"2025-08-07",
	} {
		if _, err := ParseTimestamp(in); err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
		}
	}
	got, _ := ParseTimestamp("2025-08-07")
	if !got.Equal(time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only should be UTC midnight, got %v", got)
	}
}

func TestCategoryOptions_KnownFirstThenExtras(t *testing.T) {
	rows := []Record{{PolicyCategory: "ZZZ"}, {PolicyCategory: "HATE_SPEECH"}, {PolicyCategory: "AAA"}}
	opts := CategoryOptions(rows)
	if len(opts) != len(KnownCategories)+2 {
		t.Fatalf("expected %d options, got %d", len(KnownCategories)+2, len(opts))
	}
	if opts[len(opts)-2].Value != "AAA" || opts[len(opts)-1].Value != "ZZZ" {
		t.Fatalf("extras not sorted: %+v", opts[len(opts)-2:])
	}
}

func TestLanguageOptions_DisplayNames(t *testing.T) {
	opts := LanguageOptions(Sample())
	if len(opts) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(opts))
	}
	want := map[string]string{"en": "English", "es": "Spanish", "fr": "French"}
	for _, o := range opts {
		if want[o.Value] != o.Label {
			t.Errorf("language %s: expected label %q, got %q", o.Value, want[o.Value], o.Label)
		}
	}
}
