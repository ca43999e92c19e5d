package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
	"github.com/danielpatrickdp/policy-dash/internal/gate"
)

var errGatesFailed = errors.New("release gates failed")

var gatesFlags struct {
	filter  filterFlags
	strict  bool
	jsonOut bool
}

var gatesCmd = &cobra.Command{
	Use:   "gates",
	Short: "Evaluate release gates A, B and C against the active config",
	Args:  cobra.NoArgs,
	RunE:  runGates,
}

func init() {
	addFilterFlags(gatesCmd, &gatesFlags.filter)
	gatesCmd.Flags().BoolVar(&gatesFlags.strict, "strict", false, "Exit non-zero unless every gate passes")
	gatesCmd.Flags().BoolVar(&gatesFlags.jsonOut, "json", false, "Output the gate report as JSON")
}

type gatesOutput struct {
	ConfigVersion string               `json:"configVersion,omitempty"`
	Preset        string               `json:"preset,omitempty"`
	Gates         gate.Report          `json:"gates"`
	NorthStar     gate.NorthStarStatus `json:"northStar"`
}

func runGates(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(cmd.Context(), st)
	if err != nil {
		return err
	}
	snap := dashboard.Build(ws.rows, gatesFlags.filter.spec(), ws.cfg)
	logEvaluation(st, "cli", ws, snap)

	out := cmd.OutOrStdout()
	if gatesFlags.jsonOut {
		if err := printJSON(out, gatesOutput{
			ConfigVersion: ws.version,
			Preset:        ws.cfg.PresetName,
			Gates:         snap.Gates,
			NorthStar:     snap.NorthStar,
		}); err != nil {
			return err
		}
	} else {
		printGates(out, snap, ws.version)
	}

	if gatesFlags.strict && !snap.Gates.Results.AllPass() {
		return errGatesFailed
	}
	return nil
}

func printGates(w io.Writer, snap dashboard.Snapshot, version string) {
	label := snap.Config.PresetName
	if version != "" {
		label = fmt.Sprintf("%s (version %s)", label, shortID(version))
	}
	fmt.Fprintf(w, "Config: %s\n\n", label)

	fmt.Fprintf(w, "%-4s  %-18s  %10s  %-2s  %10s  %s\n", "Gate", "Check", "Value", "Op", "Threshold", "Result")
	fmt.Fprintf(w, "%-4s+-%-18s+-%10s+-%-2s+-%10s+-%s\n", "----", "------------------", "----------", "--", "----------", "------")
	for _, c := range snap.Gates.Checks {
		fmt.Fprintf(w, "%-4s  %-18s  %10.4f  %-2s  %10.4f  %s\n",
			c.Gate, c.Name, c.Value, c.Op, c.Threshold, passFail(c.Pass))
	}

	r := snap.Gates.Results
	fmt.Fprintf(w, "\nA=%s  B=%s  C=%s\n", passFail(r.A), passFail(r.B), passFail(r.C))
	fmt.Fprintf(w, "Verdict: %s\n", snap.Gates.Reason)
	fmt.Fprintf(w, "North star: block rate %s, worst slice gap %s\n",
		okLabel(snap.NorthStar.BlockRateOK), okLabel(snap.NorthStar.WorstSliceGapOK))
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "over"
}
