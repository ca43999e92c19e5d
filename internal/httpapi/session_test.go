package httpapi

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/records"
)

func TestSession_WithoutStores(t *testing.T) {
	s := NewSession(records.Sample(), config.Default(), "", Options{})

	if _, err := s.SaveConfig(""); !errors.Is(err, errNoStore) {
		t.Fatalf("expected errNoStore, got %v", err)
	}
	if _, err := s.History(5); !errors.Is(err, errNoStore) {
		t.Fatalf("expected errNoStore, got %v", err)
	}
	entries, err := s.Evaluations(5)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected no evaluations, got %v %v", entries, err)
	}

	n, err := s.Import("more.json", []byte(`[]`))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 0 || len(s.Records()) != 0 {
		t.Fatalf("expected empty set after importing an empty array, got %d", len(s.Records()))
	}
}

func TestSession_FetchUnreachableKeepsConfig(t *testing.T) {
	s := NewSession(nil, config.Default(), "v0", Options{})
	cfg, ok := s.FetchConfig(context.Background(), "http://127.0.0.1:0/preset.json")
	if ok {
		t.Fatal("expected fetch to fail")
	}
	if cfg != config.Default() {
		t.Fatalf("expected unchanged config, got %+v", cfg)
	}
	if _, v := s.Config(); v != "v0" {
		t.Fatalf("expected version v0, got %q", v)
	}
}

func TestSession_ExportFiltered(t *testing.T) {
	s := NewSession(records.Sample(), config.Default(), "", Options{})
	spec := filter.Everything()
	spec.Language = "fr"

	var buf bytes.Buffer
	if err := s.Export(&buf, spec); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", got)
	}
}

func TestSession_ConcurrentSnapshotsAndEdits(t *testing.T) {
	s := NewSession(records.Sample(), config.Default(), "", Options{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				snap := s.Snapshot(filter.Default())
				if snap.KPIs.Total != 12 {
					t.Errorf("expected total 12, got %d", snap.KPIs.Total)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := s.PatchConfig("bands.high", "0.9"); err != nil {
					t.Errorf("PatchConfig: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
