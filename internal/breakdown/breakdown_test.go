package breakdown

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

func TestTimeSeries_Sample(t *testing.T) {
	got := TimeSeries(records.Sample())
	want := []DayCounts{
		{Date: "2025-08-07", Block: 2, Suggest: 1, Allow: 0},
		{Date: "2025-08-08", Block: 1, Suggest: 1, Allow: 1},
		{Date: "2025-08-09", Block: 1, Suggest: 1, Allow: 1},
		{Date: "2025-08-10", Block: 2, Suggest: 1, Allow: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TimeSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeSeries_SortsUnorderedInput(t *testing.T) {
	mk := func(day int, d records.Decision) records.Record {
		return records.Record{Timestamp: time.Date(2025, 8, day, 12, 0, 0, 0, time.UTC), Decision: d}
	}
	got := TimeSeries([]records.Record{
		mk(9, records.DecisionAllow),
		mk(7, records.DecisionBlock),
		mk(9, records.DecisionBlock),
	})
	want := []DayCounts{
		{Date: "2025-08-07", Block: 1},
		{Date: "2025-08-09", Block: 1, Allow: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TimeSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestByCategory_DescendingStable(t *testing.T) {
	got := ByCategory(records.Sample())
	want := []CategoryCount{
		{Category: "NONVIOLENT_WRONGDOING", Count: 4},
		{Category: "HATE_SPEECH", Count: 4},
		{Category: "SELF_HARM", Count: 2},
		{Category: "SEXUAL_CONTENT", Count: 1},
		{Category: "VIOLENT_HARM", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ByCategory mismatch (-want +got):\n%s", diff)
	}
}

func TestDecisionBands_FixedOrder(t *testing.T) {
	want := []BandCount{{"Block", 6}, {"Suggest", 4}, {"Allow", 2}}
	if diff := cmp.Diff(want, DecisionBands(records.Sample())); diff != "" {
		t.Fatalf("DecisionBands mismatch (-want +got):\n%s", diff)
	}

	empty := []BandCount{{"Block", 0}, {"Suggest", 0}, {"Allow", 0}}
	if diff := cmp.Diff(empty, DecisionBands(nil)); diff != "" {
		t.Fatalf("DecisionBands(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceDisparity_Sample(t *testing.T) {
	got := SliceDisparity(records.Sample())
	want := []SliceRate{
		{Slice: "EN", BlockRate: 4.0 / 6},
		{Slice: "ES", BlockRate: 0.25},
		{Slice: "FR", BlockRate: 0.5},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("SliceDisparity mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceDisparity_NoLanguageFallback(t *testing.T) {
	rows := []records.Record{
		{Slice: "", Language: "de", Decision: records.DecisionBlock},
		{Slice: "", Language: "it", Decision: records.DecisionAllow},
		{Slice: "EN", Language: "en", Decision: records.DecisionBlock},
	}
	got := SliceDisparity(rows)
	want := []SliceRate{
		{Slice: "", BlockRate: 0.5},
		{Slice: "EN", BlockRate: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SliceDisparity mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilders_EmptyInput(t *testing.T) {
	if got := TimeSeries(nil); len(got) != 0 {
		t.Errorf("expected empty series, got %v", got)
	}
	if got := ByCategory(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil categories, got %v", got)
	}
	if got := SliceDisparity(nil); len(got) != 0 {
		t.Errorf("expected empty slices, got %v", got)
	}
}
