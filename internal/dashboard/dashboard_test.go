package dashboard

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/gate"
	"github.com/danielpatrickdp/policy-dash/internal/metrics"
	"github.com/danielpatrickdp/policy-dash/internal/records"
)

func TestBuild_SampleDefaults(t *testing.T) {
	snap := Build(records.Sample(), filter.Default(), config.Default())

	if len(snap.Records) != 12 {
		t.Fatalf("expected 12 records, got %d", len(snap.Records))
	}
	if snap.KPIs.Total != 12 {
		t.Fatalf("expected total 12, got %d", snap.KPIs.Total)
	}
	want := gate.Results{A: false, B: false, C: true}
	if snap.Gates.Results != want {
		t.Fatalf("expected %+v, got %+v", want, snap.Gates.Results)
	}
	if len(snap.Bands) != 3 || len(snap.Series) != 4 || len(snap.Disparity) != 3 {
		t.Fatalf("unexpected breakdown sizes: bands=%d series=%d disparity=%d",
			len(snap.Bands), len(snap.Series), len(snap.Disparity))
	}
	if len(snap.BandText) != 3 {
		t.Fatalf("expected band text, got %v", snap.BandText)
	}
}

func TestBuild_GatesFollowFilteredKpis(t *testing.T) {
	spec := filter.Everything()
	spec.Language = "es"
	snap := Build(records.Sample(), spec, config.Default())

	if snap.KPIs != metrics.Aggregate(snap.Records) {
		t.Fatal("snapshot KPIs do not match aggregate of filtered records")
	}
	if snap.Gates.Results != gate.Evaluate(snap.KPIs, config.Default()) {
		t.Fatal("snapshot gates do not match Evaluate")
	}
}

func TestBuild_SliceDimHasNoEffect(t *testing.T) {
	rows := records.Sample()
	byLang := config.Default()
	bySlice := byLang
	bySlice.SliceDim = config.SliceDimSlice

	a := Build(rows, filter.Everything(), byLang)
	b := Build(rows, filter.Everything(), bySlice)
	if diff := cmp.Diff(a.Disparity, b.Disparity); diff != "" {
		t.Fatalf("sliceDim changed disparity (-lang +slice):\n%s", diff)
	}
	if a.KPIs != b.KPIs || a.Gates.Results != b.Gates.Results {
		t.Fatal("sliceDim changed KPIs or gates")
	}
}

func TestBuild_ConcurrentCallsAgree(t *testing.T) {
	rows := records.Sample()
	want := Build(rows, filter.Default(), config.Default())

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Build(rows, filter.Default(), config.Default())
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)
	for d := range errs {
		t.Fatalf("concurrent build differed:\n%s", d)
	}
}
