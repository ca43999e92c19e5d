package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/gate"
	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a regression fixture: a record
// set, a filter and a config, plus the verdict they must produce.
type Fixture struct {
	Description string           `json:"description"`
	UseSample   bool             `json:"use_sample"`
	Records     []records.Record `json:"records"`
	Filter      json.RawMessage  `json:"filter,omitempty"`
	Config      json.RawMessage  `json:"config,omitempty"`
	Expected    Expected         `json:"expected"`

	// Name is the file's base name, set by LoadFixture.
	Name string `json:"-"`
}

// Expected holds the asserted outcome. Nil counters are not checked.
type Expected struct {
	Gates    gate.Results `json:"gates"`
	Total    *int         `json:"total,omitempty"`
	Blocks   *int         `json:"blocks,omitempty"`
	Suggests *int         `json:"suggests,omitempty"`
	Allows   *int         `json:"allows,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	f.Name = filepath.Base(path)
	return &f, nil
}

// LoadDir loads every *.json fixture in dir, sorted by name.
func LoadDir(dir string) ([]*Fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob fixtures: %w", err)
	}
	sort.Strings(paths)
	out := make([]*Fixture, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFixture(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Inputs resolves the fixture's record set, filter and config. Filter and
// config fields are decoded over the defaults, so fixtures name only what
// they change.
func (f *Fixture) Inputs() ([]records.Record, filter.Spec, config.DashboardConfig, error) {
	rows := f.Records
	if f.UseSample {
		rows = append(records.Sample(), rows...)
	}
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, filter.Spec{}, config.DashboardConfig{}, fmt.Errorf("fixture %s row %d: %w", f.Name, i+1, err)
		}
	}

	spec := filter.Default()
	if len(f.Filter) > 0 {
		if err := json.Unmarshal(f.Filter, &spec); err != nil {
			return nil, filter.Spec{}, config.DashboardConfig{}, fmt.Errorf("fixture %s filter: %w", f.Name, err)
		}
	}

	cfg := config.Default()
	if len(f.Config) > 0 {
		if err := json.Unmarshal(f.Config, &cfg); err != nil {
			return nil, filter.Spec{}, config.DashboardConfig{}, fmt.Errorf("fixture %s config: %w", f.Name, err)
		}
	}
	return rows, spec, cfg, nil
}

// #endregion fixture-loader
