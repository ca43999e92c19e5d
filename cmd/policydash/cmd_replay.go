package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture-dir>",
	Short: "Run gate fixtures and compare verdicts against expectations",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	fixtures, err := replay.LoadDir(args[0])
	if err != nil {
		return err
	}
	results, summary, err := replay.RunAll(fixtures)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%-4s  %-28s  %s\n", passFail(r.Passed()), r.Name, r.Snapshot.Gates.Reason)
		for _, m := range r.Mismatches {
			fmt.Fprintf(out, "        %s\n", m)
		}
	}
	fmt.Fprintf(out, "\n%d fixtures, %d passed, %d failed\n", summary.Total, summary.Passed, summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", summary.Failed, summary.Total)
	}
	return nil
}
