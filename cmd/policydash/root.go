package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	settingsPath string
	dbPath       string
	logLevel     string
	logFormat    string
}

// settings is resolved once per invocation by the persistent pre-run.
var settings config.Settings

var rootCmd = &cobra.Command{
	Use:   "policydash",
	Short: "Policy enforcement metrics and release gates",
	Long: "policydash aggregates block/suggest/allow decision logs into quality,\n" +
		"fairness and cost KPIs and evaluates them against configurable release gates.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: loadSettings,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.settingsPath, "settings", "", "Path to a YAML settings file")
	pf.StringVar(&rootFlags.dbPath, "db", "", "SQLite database path (overrides settings)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "debug, info, warn or error (overrides settings)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "text or json (overrides settings)")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(gatesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	s, err := config.LoadSettings(rootFlags.settingsPath)
	if err != nil {
		return err
	}
	if rootFlags.dbPath != "" {
		s.DBPath = rootFlags.dbPath
	}
	if rootFlags.logLevel != "" {
		s.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		s.LogFormat = rootFlags.logFormat
	}
	if err := s.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, s.LogFormat, cmd.ErrOrStderr())
	settings = s
	return nil
}
