package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/configstore"
	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
	"github.com/danielpatrickdp/policy-dash/internal/records"
	"github.com/danielpatrickdp/policy-dash/internal/recordstore"
)

// #region stores
// stores bundles the three tables that share one SQLite file.
type stores struct {
	configs *configstore.Store
	records *recordstore.Store
	audit   *logging.EvaluationLog
}

func openStores(path string) (*stores, error) {
	cs, err := configstore.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	rs, err := recordstore.NewStore(cs.DB())
	if err != nil {
		cs.Close()
		return nil, err
	}
	audit, err := logging.NewEvaluationLog(cs.DB())
	if err != nil {
		cs.Close()
		return nil, err
	}
	return &stores{configs: cs, records: rs, audit: audit}, nil
}

func (s *stores) Close() error {
	return s.configs.Close()
}

// workingState is what every command evaluates against.
type workingState struct {
	rows       []records.Record
	cfg        config.DashboardConfig
	version    string
	fromSample bool
}

// loadWorkingState reads the stored record set and the active config
// concurrently. An empty record store falls back to the bundled sample and a
// missing active config to the balanced default.
func loadWorkingState(ctx context.Context, st *stores) (workingState, error) {
	var ws workingState
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := st.records.List()
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			ws.rows, ws.fromSample = records.Sample(), true
			return nil
		}
		ws.rows = rows
		return nil
	})

	g.Go(func() error {
		v, err := st.configs.GetCurrent()
		if errors.Is(err, configstore.ErrNotFound) {
			ws.cfg = config.Default()
			return nil
		}
		if err != nil {
			return err
		}
		ws.cfg, ws.version = v.Config, v.ID
		return nil
	})

	if err := g.Wait(); err != nil {
		return workingState{}, fmt.Errorf("load working state: %w", err)
	}
	return ws, nil
}

// #endregion stores

// #region filter-flags
type filterFlags struct {
	all      bool
	start    string
	end      string
	category string
	band     string
	language string
	confMin  float64
	confMax  float64
}

func addFilterFlags(cmd *cobra.Command, ff *filterFlags) {
	d := filter.Default()
	f := cmd.Flags()
	f.BoolVar(&ff.all, "all", false, "Ignore every other filter flag and keep all records")
	f.StringVar(&ff.start, "start", d.Start, "Inclusive start date or timestamp (empty for unbounded)")
	f.StringVar(&ff.end, "end", d.End, "Inclusive end date or timestamp (empty for unbounded)")
	f.StringVar(&ff.category, "category", d.Category, "Policy category or 'all'")
	f.StringVar(&ff.band, "band", d.DecisionBand, "Decision (block, suggest, allow) or 'all'")
	f.StringVar(&ff.language, "language", d.Language, "Language code or 'all'")
	f.Float64Var(&ff.confMin, "conf-min", d.ConfidenceRange[0], "Minimum confidence")
	f.Float64Var(&ff.confMax, "conf-max", d.ConfidenceRange[1], "Maximum confidence")
}

func (ff filterFlags) spec() filter.Spec {
	if ff.all {
		return filter.Everything()
	}
	return filter.Spec{
		Start:           ff.start,
		End:             ff.end,
		Category:        ff.category,
		DecisionBand:    ff.band,
		Language:        ff.language,
		ConfidenceRange: [2]float64{ff.confMin, ff.confMax},
	}
}

// #endregion filter-flags

// #region output
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

// #region audit
func logEvaluation(st *stores, source string, ws workingState, snap dashboard.Snapshot) {
	filterJSON, _ := json.Marshal(snap.Filter)
	kpisJSON, _ := json.Marshal(snap.KPIs)
	_, err := st.audit.Log(logging.EvaluationEntry{
		Source:        source,
		ConfigVersion: ws.version,
		RecordCount:   len(ws.rows),
		FilterJSON:    string(filterJSON),
		KPIsJSON:      string(kpisJSON),
		GateA:         snap.Gates.Results.A,
		GateB:         snap.Gates.Results.B,
		GateC:         snap.Gates.Results.C,
		Reason:        snap.Gates.Reason,
	})
	if err != nil {
		logging.New("cli").Warn("evaluation log write failed", "error", err)
	}
}

// #endregion audit
