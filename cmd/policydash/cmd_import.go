package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/ingest"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
)

var importCmd = &cobra.Command{
	Use:   "import <records.json|records.csv>",
	Short: "Replace the stored record set with a JSON or CSV file",
	Long: "Replace the stored record set with the contents of a JSON array or a\n" +
		"headed CSV file. The file is validated as a whole: if any row is invalid\n" +
		"nothing is stored and the previous set is kept.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	// #nosec G304 -- path is an operator-provided import file.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	rows, err := ingest.Parse(filepath.Base(path), data)
	if err != nil {
		return err
	}

	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.records.Replace(rows); err != nil {
		return err
	}
	logging.New("cli").Info("records imported", "source", path, "count", len(rows))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %s\n", len(rows), filepath.Base(path))
	return nil
}
