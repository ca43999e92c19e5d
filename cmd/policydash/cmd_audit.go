package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditFlags struct {
	last    int
	jsonOut bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent gate evaluations",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditFlags.last, "last", 20, "Show N most recent evaluations")
	auditCmd.Flags().BoolVar(&auditFlags.jsonOut, "json", false, "Output as JSON")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.audit.Recent(auditFlags.last)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if auditFlags.jsonOut {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no evaluations recorded")
		return nil
	}

	fmt.Fprintf(out, "%-12s  %-6s  %-12s  %7s  %-4s  %-4s  %-4s  %s\n",
		"Evaluation", "Source", "Config", "Records", "A", "B", "C", "Time")
	fmt.Fprintf(out, "%-12s+-%-6s+-%-12s+-%7s+-%-4s+-%-4s+-%-4s+-%s\n",
		"------------", "------", "------------", "-------", "----", "----", "----", "--------------------")
	for _, e := range entries {
		cfg := "default"
		if e.ConfigVersion != "" {
			cfg = shortID(e.ConfigVersion)
		}
		fmt.Fprintf(out, "%-12s  %-6s  %-12s  %7d  %-4s  %-4s  %-4s  %s\n",
			shortID(e.ID), e.Source, cfg, e.RecordCount,
			passFail(e.GateA), passFail(e.GateB), passFail(e.GateC),
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}
