package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/configstore"
	"github.com/danielpatrickdp/policy-dash/internal/dashboard"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/ingest"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
	"github.com/danielpatrickdp/policy-dash/internal/records"
	"github.com/danielpatrickdp/policy-dash/internal/telemetry"
)

// errNoStore is returned by persistence operations when the session has no
// config store.
var errNoStore = errors.New("no config store configured")

// #region ports
// ConfigStore persists dashboard configuration versions.
type ConfigStore interface {
	Save(cfg config.DashboardConfig, note string) (configstore.Version, error)
	ListVersions(limit int) ([]configstore.Version, error)
	Rollback(id string) (configstore.Version, error)
}

// RecordStore persists the working record set.
type RecordStore interface {
	Replace(rows []records.Record) error
}

// Auditor records gate evaluations.
type Auditor interface {
	Log(entry logging.EvaluationEntry) (logging.EvaluationEntry, error)
	Recent(limit int) ([]logging.EvaluationEntry, error)
}

// #endregion ports

// #region session
// Options carries the optional collaborators of a Session. Nil stores
// disable persistence; a nil Auditor disables the evaluation log.
type Options struct {
	Configs      ConfigStore
	Records      RecordStore
	Audit        Auditor
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger
	HTTPClient   *http.Client
	FetchTimeout time.Duration
}

// Session owns the working record set and configuration. Every read hands
// the pure core a consistent view; writers replace values wholesale.
type Session struct {
	mu      sync.RWMutex
	rows    []records.Record
	cfg     config.DashboardConfig
	version string

	configs      ConfigStore
	store        RecordStore
	audit        Auditor
	metrics      *telemetry.Metrics
	logger       *slog.Logger
	client       *http.Client
	fetchTimeout time.Duration
}

// NewSession starts a session over rows and cfg. version is the ID of the
// stored config version cfg came from, or empty.
func NewSession(rows []records.Record, cfg config.DashboardConfig, version string, opts Options) *Session {
	if rows == nil {
		rows = []records.Record{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("session")
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = config.DefaultSettings().FetchTimeout
	}
	return &Session{
		rows:         rows,
		cfg:          cfg,
		version:      version,
		configs:      opts.Configs,
		store:        opts.Records,
		audit:        opts.Audit,
		metrics:      opts.Metrics,
		logger:       logger,
		client:       opts.HTTPClient,
		fetchTimeout: timeout,
	}
}

// #endregion session

// #region reads
// Records returns the working record set. Callers must not modify it.
func (s *Session) Records() []records.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Config returns the working configuration and the stored version it was
// last saved as or rolled back to.
func (s *Session) Config() (config.DashboardConfig, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.version
}

// Snapshot recomputes the dashboard for spec and records the evaluation.
func (s *Session) Snapshot(spec filter.Spec) dashboard.Snapshot {
	s.mu.RLock()
	rows, cfg, version := s.rows, s.cfg, s.version
	s.mu.RUnlock()

	start := time.Now()
	snap := dashboard.Build(rows, spec, cfg)
	s.metrics.Observe("http", snap, time.Since(start))
	s.logEvaluation(snap, version, len(rows))
	return snap
}

func (s *Session) logEvaluation(snap dashboard.Snapshot, version string, count int) {
	if s.audit == nil {
		return
	}
	filterJSON, _ := json.Marshal(snap.Filter)
	kpisJSON, _ := json.Marshal(snap.KPIs)
	_, err := s.audit.Log(logging.EvaluationEntry{
		Source:        "http",
		ConfigVersion: version,
		RecordCount:   count,
		FilterJSON:    string(filterJSON),
		KPIsJSON:      string(kpisJSON),
		GateA:         snap.Gates.Results.A,
		GateB:         snap.Gates.Results.B,
		GateC:         snap.Gates.Results.C,
		Reason:        snap.Gates.Reason,
	})
	if err != nil {
		s.logger.Warn("evaluation log write failed", "error", err)
	}
}

// Evaluations returns recent audit entries, or none when auditing is off.
func (s *Session) Evaluations(limit int) ([]logging.EvaluationEntry, error) {
	if s.audit == nil {
		return []logging.EvaluationEntry{}, nil
	}
	return s.audit.Recent(limit)
}

// Options lists the category and language selector values for the loaded set.
func (s *Session) Options() ([]records.Option, []records.Option) {
	rows := s.Records()
	return records.CategoryOptions(rows), records.LanguageOptions(rows)
}

// #endregion reads

// #region config-writes
// ReplaceConfig swaps the working configuration. It is not persisted until
// SaveConfig.
func (s *Session) ReplaceConfig(cfg config.DashboardConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// PatchConfig edits one field of the working configuration.
func (s *Session) PatchConfig(path, value string) (config.DashboardConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.cfg.Set(path, value)
	if err != nil {
		return s.cfg, err
	}
	s.cfg = next
	return next, nil
}

// SaveConfig persists the working configuration as a new version.
func (s *Session) SaveConfig(note string) (configstore.Version, error) {
	if s.configs == nil {
		return configstore.Version{}, errNoStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.configs.Save(s.cfg, note)
	if err != nil {
		return configstore.Version{}, fmt.Errorf("save config: %w", err)
	}
	s.version = v.ID
	s.logger.Info("config saved", "version", v.ID)
	return v, nil
}

// FetchConfig replaces the working configuration with the document at url
// and persists it. Any failure leaves the configuration unchanged; it is
// logged and reported only through the boolean.
func (s *Session) FetchConfig(ctx context.Context, url string) (config.DashboardConfig, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	cfg, err := config.Fetch(ctx, s.client, url)
	if err != nil {
		s.logger.Warn("config fetch failed", "url", url, "error", err)
		s.metrics.IncrementFetchFailure()
		current, _ := s.Config()
		return current, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if s.configs != nil {
		v, err := s.configs.Save(cfg, "fetched from "+url)
		if err != nil {
			s.logger.Error("persist fetched config failed", "url", url, "error", err)
		} else {
			s.version = v.ID
		}
	}
	s.logger.Info("config fetched", "url", url, "version", s.version)
	return cfg, true
}

// History lists stored configuration versions, newest first.
func (s *Session) History(limit int) ([]configstore.Version, error) {
	if s.configs == nil {
		return nil, errNoStore
	}
	return s.configs.ListVersions(limit)
}

// Rollback activates a stored version and loads it as the working config.
func (s *Session) Rollback(id string) (configstore.Version, error) {
	if s.configs == nil {
		return configstore.Version{}, errNoStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.configs.Rollback(id)
	if err != nil {
		return configstore.Version{}, err
	}
	s.cfg = v.Config
	s.version = v.ID
	s.logger.Info("config rolled back", "version", v.ID)
	return v, nil
}

// #endregion config-writes

// #region records-io
// Import parses data as the format named by name's extension and replaces
// the working set. On any failure the previous set is kept.
func (s *Session) Import(name string, data []byte) (int, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	rows, err := ingest.Parse(name, data)
	if err != nil {
		s.logger.Error("record import failed", "source", name, "error", err)
		s.metrics.IncrementImport(format, false)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Replace(rows); err != nil {
			s.logger.Error("persist records failed", "source", name, "error", err)
			s.metrics.IncrementImport(format, false)
			return 0, fmt.Errorf("persist records: %w", err)
		}
	}
	s.rows = rows
	s.metrics.IncrementImport(format, true)
	s.logger.Info("records imported", "source", name, "count", len(rows))
	return len(rows), nil
}

// Export writes the records matching spec as CSV.
func (s *Session) Export(w io.Writer, spec filter.Spec) error {
	return ingest.WriteCSV(w, filter.Apply(s.Records(), spec))
}

// #endregion records-io
