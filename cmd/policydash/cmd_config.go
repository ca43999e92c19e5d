package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
)

var configFlags struct {
	note    string
	last    int
	jsonOut bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and version the dashboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration as JSON",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the field paths accepted by config set",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, f := range config.Fields {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one field and save the result as a new version",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configLoadCmd = &cobra.Command{
	Use:   "load <preset.json|preset.yaml>",
	Short: "Save a preset file as the active configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigLoad,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Save the balanced default as the active configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

var configFetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Fetch a remote preset and save it as the active configuration",
	Long: "Fetch a remote JSON preset. Without an argument the configured\n" +
		"config_url is used. A failed fetch leaves the active configuration unchanged.",
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigFetch,
}

var configHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored configuration versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runConfigHistory,
}

var configRollbackCmd = &cobra.Command{
	Use:   "rollback <version-id>",
	Short: "Make a stored version active again",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigRollback,
}

func init() {
	for _, c := range []*cobra.Command{configSetCmd, configLoadCmd, configResetCmd} {
		c.Flags().StringVar(&configFlags.note, "note", "", "Note stored with the new version")
	}
	configHistoryCmd.Flags().IntVar(&configFlags.last, "last", 20, "Show N most recent versions")
	configHistoryCmd.Flags().BoolVar(&configFlags.jsonOut, "json", false, "Output as JSON")

	configCmd.AddCommand(configShowCmd, configFieldsCmd, configSetCmd, configLoadCmd,
		configResetCmd, configFetchCmd, configHistoryCmd, configRollbackCmd)
}

// #region show
func runConfigShow(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(cmd.Context(), st)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), configView{Version: ws.version, Config: ws.cfg})
}

type configView struct {
	Version string                 `json:"version,omitempty"`
	Config  config.DashboardConfig `json:"config"`
}

// #endregion show

// #region writes
func runConfigSet(cmd *cobra.Command, args []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(cmd.Context(), st)
	if err != nil {
		return err
	}
	next, err := ws.cfg.Set(args[0], args[1])
	if err != nil {
		return err
	}
	note := configFlags.note
	if note == "" {
		note = fmt.Sprintf("set %s=%s", args[0], args[1])
	}
	return saveConfig(cmd, st, next, note)
}

func runConfigLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(args[0])
	if err != nil {
		return err
	}
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	note := configFlags.note
	if note == "" {
		note = "loaded from " + args[0]
	}
	return saveConfig(cmd, st, cfg, note)
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	note := configFlags.note
	if note == "" {
		note = "reset to default"
	}
	return saveConfig(cmd, st, config.Default(), note)
}

func runConfigFetch(cmd *cobra.Command, args []string) error {
	url := settings.ConfigURL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return errors.New("no url given and config_url is not set")
	}

	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.FetchTimeout)
	defer cancel()
	cfg, err := config.Fetch(ctx, &http.Client{}, url)
	if err != nil {
		// A failed fetch keeps the active configuration; it is not a command failure.
		logging.New("cli").Warn("config fetch failed", "url", url, "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "fetch failed, active configuration unchanged: %v\n", err)
		return nil
	}
	return saveConfig(cmd, st, cfg, "fetched from "+url)
}

func saveConfig(cmd *cobra.Command, st *stores, cfg config.DashboardConfig, note string) error {
	v, err := st.configs.Save(cfg, note)
	if err != nil {
		return err
	}
	logging.New("cli").Info("config saved", "version", v.ID, "note", note)
	fmt.Fprintf(cmd.OutOrStdout(), "saved version %s (%s)\n", v.ID, note)
	return nil
}

// #endregion writes

// #region history
func runConfigHistory(cmd *cobra.Command, _ []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.configs.ListVersions(configFlags.last)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if configFlags.jsonOut {
		return printJSON(out, versions)
	}
	if len(versions) == 0 {
		fmt.Fprintln(out, "no versions found")
		return nil
	}

	fmt.Fprintf(out, "%-1s %-12s  %-12s  %-12s  %-20s  %s\n", "", "Version", "Parent", "Preset", "Time", "Note")
	fmt.Fprintf(out, "%-1s %-12s+-%-12s+-%-12s+-%-20s+-%s\n", "", "------------", "------------", "------------", "--------------------", "----")
	for _, v := range versions {
		marker := ""
		if v.Active {
			marker = "*"
		}
		parent := "-"
		if v.ParentID != "" {
			parent = shortID(v.ParentID)
		}
		fmt.Fprintf(out, "%-1s %-12s  %-12s  %-12s  %-20s  %s\n",
			marker, shortID(v.ID), parent, v.Config.PresetName,
			v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), v.Note)
	}
	return nil
}

func runConfigRollback(cmd *cobra.Command, args []string) error {
	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := st.configs.Rollback(args[0])
	if err != nil {
		return err
	}
	logging.New("cli").Info("config rolled back", "version", v.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "active version is now %s\n", v.ID)
	return nil
}

// #endregion history
