package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
)

var summaryFlags struct {
	filter  filterFlags
	jsonOut bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print KPIs and breakdowns for the filtered record set",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	addFilterFlags(summaryCmd, &summaryFlags.filter)
	summaryCmd.Flags().BoolVar(&summaryFlags.jsonOut, "json", false, "Output the full snapshot as JSON")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(cmd.Context(), st)
	if err != nil {
		return err
	}
	snap := dashboard.Build(ws.rows, summaryFlags.filter.spec(), ws.cfg)
	logEvaluation(st, "cli", ws, snap)

	out := cmd.OutOrStdout()
	if summaryFlags.jsonOut {
		return printJSON(out, snap)
	}
	printSummary(out, snap, ws.fromSample)
	return nil
}

// #region tables
func printSummary(w io.Writer, snap dashboard.Snapshot, fromSample bool) {
	k := snap.KPIs
	if fromSample {
		fmt.Fprintln(w, "(no imported records, showing bundled sample)")
	}
	fmt.Fprintf(w, "Records: %d matched (blocks %d, suggests %d, allows %d)\n\n",
		len(snap.Records), k.Blocks, k.Suggests, k.Allows)

	fmt.Fprintf(w, "%-20s  %10s\n", "KPI", "Value")
	fmt.Fprintf(w, "%-20s+-%10s\n", strings.Repeat("-", 20), strings.Repeat("-", 10))
	fmt.Fprintf(w, "%-20s  %9.1f%%\n", "Block rate", k.BlockRate*100)
	fmt.Fprintf(w, "%-20s  %9.1f%%\n", "Over-refusal", k.OverRefusalRate*100)
	fmt.Fprintf(w, "%-20s  %9.1f%%\n", "Appeals upheld", k.AppealsUpheldRate*100)
	fmt.Fprintf(w, "%-20s  %8.0fms\n", "Latency p95", k.P95Latency)
	fmt.Fprintf(w, "%-20s  %10s\n", "Avg cost", fmt.Sprintf("$%.3f", k.AvgCost))
	fmt.Fprintf(w, "%-20s  %9.1f%%\n", "Worst slice gap", k.WorstDisparity*100)

	if len(snap.Series) > 0 {
		fmt.Fprintf(w, "\n%-12s  %7s  %7s  %7s\n", "Date", "Block", "Suggest", "Allow")
		fmt.Fprintf(w, "%-12s+-%7s+-%7s+-%7s\n", "------------", "-------", "-------", "-------")
		for _, d := range snap.Series {
			fmt.Fprintf(w, "%-12s  %7d  %7d  %7d\n", d.Date, d.Block, d.Suggest, d.Allow)
		}
	}

	if len(snap.Categories) > 0 {
		fmt.Fprintf(w, "\n%-24s  %6s\n", "Category", "Count")
		fmt.Fprintf(w, "%-24s+-%6s\n", strings.Repeat("-", 24), "------")
		for _, c := range snap.Categories {
			fmt.Fprintf(w, "%-24s  %6d\n", c.Category, c.Count)
		}
	}

	fmt.Fprintf(w, "\n%-10s  %6s\n", "Decision", "Count")
	fmt.Fprintf(w, "%-10s+-%6s\n", "----------", "------")
	for _, b := range snap.Bands {
		fmt.Fprintf(w, "%-10s  %6d\n", b.Name, b.Value)
	}

	if len(snap.Disparity) > 0 {
		fmt.Fprintf(w, "\n%-10s  %10s\n", "Slice", "Block rate")
		fmt.Fprintf(w, "%-10s+-%10s\n", "----------", "----------")
		for _, s := range snap.Disparity {
			fmt.Fprintf(w, "%-10s  %9.1f%%\n", s.Slice, s.BlockRate*100)
		}
	}

	fmt.Fprintln(w, "\nAutomation bands:")
	for _, line := range snap.BandText {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// #endregion tables
