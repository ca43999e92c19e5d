package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

func TestParse_DispatchesOnExtension(t *testing.T) {
	rows, err := Parse("upload.JSON", []byte(`[]`))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", rows)
	}

	if _, err := Parse("upload.xlsx", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Parse("noext", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseJSON_NumericAndStringIDs(t *testing.T) {
	data := `[
		{"id": 7, "ts": "2025-08-07T10:00:00Z", "policy_category": "HATE_SPEECH", "confidence": 0.9,
		 "decision": "block", "rationale": "r", "slice": "EN", "language": "en", "latencyMs": 100, "costCents": 5},
		{"id": "abc", "ts": "2025-08-08T10:00:00Z", "policy_category": "SELF_HARM", "confidence": 0.7,
		 "decision": "suggest", "rationale": "r", "slice": "ES", "language": "es", "latencyMs": 90, "costCents": 4,
		 "user_response": "dispute", "appeal_outcome": "upheld"}
	]`
	rows, err := ParseJSON([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "7" || rows[1].ID != "abc" {
		t.Fatalf("unexpected ids %q %q", rows[0].ID, rows[1].ID)
	}
	if rows[0].UserResponse != records.ResponseNone || rows[0].AppealOutcome != records.AppealNone {
		t.Fatalf("expected defaulted enums, got %q %q", rows[0].UserResponse, rows[0].AppealOutcome)
	}
	if rows[1].AppealOutcome != records.AppealUpheld {
		t.Fatalf("expected upheld, got %q", rows[1].AppealOutcome)
	}
}

func TestParseJSON_InvalidRowRejectsFile(t *testing.T) {
	data := `[
		{"id": 1, "ts": "2025-08-07T10:00:00Z", "confidence": 0.9, "decision": "block"},
		{"id": 2, "ts": "2025-08-07T10:00:00Z", "confidence": 0.9, "decision": "escalate"}
	]`
	rows, err := ParseJSON([]byte(data))
	if err == nil {
		t.Fatal("expected error for unknown decision")
	}
	if rows != nil {
		t.Fatalf("expected no rows on failure, got %d", len(rows))
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected error to name row 2, got %v", err)
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"id": 1}`)); err == nil {
		t.Fatal("expected error for non-array document")
	}
	if _, err := ParseJSON([]byte(`[{"id": 1, "ts": "yesterday", "decision": "block"}]`)); err == nil {
		t.Fatal("expected error for bad timestamp")
	}
}

func TestParseCSV_HeaderOrderAndDefaults(t *testing.T) {
	csvText := "decision,ts,confidence,policy_category,language,slice,latencyMs,costCents,rationale\n" +
		"block,2025-08-07T10:00:00Z,0.91,HATE_SPEECH,en,EN,120,7,slur detected\n" +
		"allow,2025-08-08T11:30:00Z,not-a-number,SELF_HARM,fr,FR,88.9,oops,\n"

	rows, err := ParseCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.ID != "1" || rows[1].ID != "2" {
		t.Fatalf("expected row-index ids, got %q %q", first.ID, rows[1].ID)
	}
	if first.Decision != records.DecisionBlock || first.Confidence != 0.91 || first.LatencyMs != 120 {
		t.Fatalf("unexpected first row %+v", first)
	}
	if first.UserResponse != records.ResponseNone || first.AppealOutcome != records.AppealNone {
		t.Fatalf("expected none defaults, got %q %q", first.UserResponse, first.AppealOutcome)
	}

	second := rows[1]
	if second.Confidence != 0 {
		t.Errorf("expected unparseable confidence to become 0, got %v", second.Confidence)
	}
	if second.LatencyMs != 88 {
		t.Errorf("expected decimal latency to truncate to 88, got %d", second.LatencyMs)
	}
	if second.CostCents != 0 {
		t.Errorf("expected unparseable cost to become 0, got %d", second.CostCents)
	}
}

func TestParseCSV_ByteOrderMark(t *testing.T) {
	csvText := "\ufeffid,ts,decision,confidence\n" +
		"a1,2025-08-07T10:00:00Z,suggest,0.6\n"
	rows, err := ParseCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a1" {
		t.Fatalf("expected id a1 after BOM strip, got %+v", rows)
	}
}

func TestParseCSV_EmptyInput(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", rows)
	}

	rows, err = ParseCSV(strings.NewReader("id,ts,decision\n"))
	if err != nil {
		t.Fatalf("parse header only: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestParseCSV_InvalidRowRejectsFile(t *testing.T) {
	csvText := "id,ts,decision,confidence\n" +
		"1,2025-08-07T10:00:00Z,block,0.9\n" +
		"2,2025-08-07T10:00:00Z,maybe,0.9\n"
	rows, err := ParseCSV(strings.NewReader(csvText))
	if err == nil {
		t.Fatal("expected error for unknown decision")
	}
	if rows != nil {
		t.Fatalf("expected nil rows on failure, got %d", len(rows))
	}

	csvText = "id,ts,decision\n1,,block\n"
	if _, err := ParseCSV(strings.NewReader(csvText)); err == nil {
		t.Fatal("expected error for missing timestamp")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	rows := records.Sample()
	rows[0].Rationale = `contains, commas and "quotes"`
	rows[1].Rationale = "spans\ntwo lines"
	rows[2].Timestamp = time.Date(2025, 8, 7, 23, 30, 0, 0, time.FixedZone("", -4*3600))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got[2].DateKey() != "2025-08-07" {
		t.Fatalf("expected offset to survive export, got date key %s", got[2].DateKey())
	}
}

func TestWriteCSV_HeaderOnlyForEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join(Columns, ",") + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestExportFileName(t *testing.T) {
	now := time.UnixMilli(1754500000123)
	if got := ExportFileName(now); got != "enforcement_export_1754500000123.csv" {
		t.Fatalf("unexpected name %q", got)
	}
}
