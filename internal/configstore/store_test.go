package configstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/policy-dash/internal/config"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetCurrent_EmptyStore(t *testing.T) {
	s := tempStore(t)
	if _, err := s.GetCurrent(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	versions, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected no versions, got %d", len(versions))
	}
}

func TestSaveAndGetCurrent(t *testing.T) {
	s := tempStore(t)
	cfg := config.Default()
	cfg.Gates.A.LatencyP95Max = 750

	v, err := s.Save(cfg, "raise latency ceiling")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v.ID == "" || v.ParentID != "" || !v.Active {
		t.Fatalf("unexpected first version %+v", v)
	}

	cur, err := s.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cur.ID != v.ID || cur.Note != "raise latency ceiling" || !cur.Active {
		t.Fatalf("unexpected current %+v", cur)
	}
	if diff := cmp.Diff(cfg, cur.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveChainsParents(t *testing.T) {
	s := tempStore(t)
	v1, err := s.Save(config.Default(), "")
	if err != nil {
		t.Fatalf("Save v1: %v", err)
	}
	cfg := config.Default()
	cfg.Bands.High = 0.9
	v2, err := s.Save(cfg, "")
	if err != nil {
		t.Fatalf("Save v2: %v", err)
	}
	if v2.ParentID != v1.ID {
		t.Fatalf("expected parent %s, got %s", v1.ID, v2.ParentID)
	}

	versions, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].ID != v2.ID || versions[1].ID != v1.ID {
		t.Fatal("expected newest first")
	}
	if !versions[0].Active || versions[1].Active {
		t.Fatal("expected only the newest version to be active")
	}

	limited, err := s.ListVersions(1)
	if err != nil {
		t.Fatalf("ListVersions(1): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 version, got %d", len(limited))
	}
}

func TestRollback(t *testing.T) {
	s := tempStore(t)
	v1, _ := s.Save(config.Default(), "baseline")
	cfg := config.Default()
	cfg.Gates.C.MinVolume = 50
	if _, err := s.Save(cfg, "stricter volume"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := s.Rollback(v1.ID)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if back.ID != v1.ID || !back.Active {
		t.Fatalf("unexpected rollback result %+v", back)
	}
	cur, _ := s.GetCurrent()
	if cur.Config.Gates.C.MinVolume != config.Default().Gates.C.MinVolume {
		t.Fatalf("expected baseline min volume, got %v", cur.Config.Gates.C.MinVolume)
	}

	versions, _ := s.ListVersions(10)
	if len(versions) != 2 {
		t.Fatalf("rollback must keep history, got %d versions", len(versions))
	}

	// Saving after a rollback parents on the rolled-back version.
	v3, _ := s.Save(config.Default(), "")
	if v3.ParentID != v1.ID {
		t.Fatalf("expected parent %s, got %s", v1.ID, v3.ParentID)
	}
}

func TestRollback_UnknownVersion(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Rollback("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetVersion("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	v, err := s.Save(config.Default(), "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	cur, err := s2.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cur.ID != v.ID {
		t.Fatalf("expected %s after reopen, got %s", v.ID, cur.ID)
	}
}
