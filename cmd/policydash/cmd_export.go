package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/ingest"
)

var exportFlags struct {
	filter filterFlags
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered records as CSV",
	Long: "Write the filtered records as CSV. Without -o the file is named\n" +
		"enforcement_export_<unix-ms>.csv in the current directory; -o - writes to stdout.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd, &exportFlags.filter)
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "Output path, or - for stdout")
}

func runExport(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(cmd.Context(), st)
	if err != nil {
		return err
	}
	rows := filter.Apply(ws.rows, exportFlags.filter.spec())

	if exportFlags.output == "-" {
		return ingest.WriteCSV(cmd.OutOrStdout(), rows)
	}

	path := exportFlags.output
	if path == "" {
		path = ingest.ExportFileName(time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := ingest.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(rows), path)
	return nil
}
