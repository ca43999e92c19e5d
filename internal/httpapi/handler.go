package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/configstore"
	"github.com/danielpatrickdp/policy-dash/internal/filter"
	"github.com/danielpatrickdp/policy-dash/internal/ingest"
)

const (
	maxUploadBytes = 10 << 20
	maxBodyBytes   = 1 << 20
	defaultLimit   = 20
)

// Handler wires the dashboard endpoints to a Session.
type Handler struct {
	session *Session
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a handler over session.
func New(session *Session, logger *slog.Logger) *Handler {
	return &Handler{session: session, logger: logger, now: time.Now}
}

// Register mounts the dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.HandleSnapshot)
		r.Get("/options", h.HandleOptions)
		r.Get("/evaluations", h.HandleEvaluations)

		r.Get("/config", h.HandleGetConfig)
		r.Put("/config", h.HandlePutConfig)
		r.Patch("/config", h.HandlePatchConfig)
		r.Post("/config/save", h.HandleSaveConfig)
		r.Post("/config/fetch", h.HandleFetchConfig)
		r.Get("/config/history", h.HandleHistory)
		r.Post("/config/rollback", h.HandleRollback)

		r.Post("/records", h.HandleImport)
		r.Get("/export.csv", h.HandleExport)
	})
}

// NewRouter builds the full HTTP surface: the API plus /metrics served from
// gatherer. A nil gatherer serves the default registry.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// #region snapshot
// HandleSnapshot handles GET /api/snapshot.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	spec, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap := h.session.Snapshot(spec)
	h.logger.DebugContext(r.Context(), "snapshot served",
		"request_id", middleware.GetReqID(r.Context()),
		"records", len(snap.Records),
		"gates", snap.Gates.Reason,
	)
	writeJSON(w, http.StatusOK, snap)
}

// HandleOptions handles GET /api/options.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	categories, languages := h.session.Options()
	writeJSON(w, http.StatusOK, optionsResponse{Categories: categories, Languages: languages})
}

// HandleEvaluations handles GET /api/evaluations.
func (h *Handler) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := h.session.Evaluations(limit)
	if err != nil {
		h.internalError(w, r, "list evaluations", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// #endregion snapshot

// #region config
// HandleGetConfig handles GET /api/config.
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, version := h.session.Config()
	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Version: version})
}

// HandlePutConfig handles PUT /api/config. The body is a full DashboardConfig.
func (h *Handler) HandlePutConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	cfg, err := config.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.session.ReplaceConfig(cfg)
	_, version := h.session.Config()
	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Version: version})
}

// HandlePatchConfig handles PATCH /api/config with {"path", "value"}.
func (h *Handler) HandlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := h.session.PatchConfig(req.Path, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, version := h.session.Config()
	writeJSON(w, http.StatusOK, configResponse{Config: cfg, Version: version})
}

// HandleSaveConfig handles POST /api/config/save.
func (h *Handler) HandleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	v, err := h.session.SaveConfig(req.Note)
	if err != nil {
		h.storeError(w, r, "save config", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleFetchConfig handles POST /api/config/fetch. A failed fetch is not an
// HTTP error: the response reports fetched=false with the unchanged config.
func (h *Handler) HandleFetchConfig(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	cfg, ok := h.session.FetchConfig(r.Context(), req.URL)
	_, version := h.session.Config()
	writeJSON(w, http.StatusOK, fetchResponse{Config: cfg, Version: version, Fetched: ok})
}

// HandleHistory handles GET /api/config/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	versions, err := h.session.History(limit)
	if err != nil {
		h.storeError(w, r, "list history", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// HandleRollback handles POST /api/config/rollback with {"id"}.
func (h *Handler) HandleRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.session.Rollback(req.ID)
	if err != nil {
		h.storeError(w, r, "rollback", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// #endregion config

// #region records
// HandleImport handles POST /api/records?name=<file>. The body is the raw
// file; the name's extension picks the parser.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name query parameter is required"))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	n, err := h.session.Import(name, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Source: name, Count: n})
}

// HandleExport handles GET /api/export.csv with the same filter parameters
// as the snapshot.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	spec, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := h.session.Export(&buf, spec); err != nil {
		h.internalError(w, r, "export records", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", ingest.ExportFileName(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// #endregion records

// #region helpers
// filterFromQuery overlays query parameters on the default filter. A present
// but empty start or end clears that bound.
func filterFromQuery(q url.Values) (filter.Spec, error) {
	spec := filter.Default()
	if q.Has("start") {
		spec.Start = q.Get("start")
	}
	if q.Has("end") {
		spec.End = q.Get("end")
	}
	if v := q.Get("category"); v != "" {
		spec.Category = v
	}
	if v := q.Get("band"); v != "" {
		spec.DecisionBand = v
	}
	if v := q.Get("language"); v != "" {
		spec.Language = v
	}
	for i, key := range []string{"conf_min", "conf_max"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter.Spec{}, fmt.Errorf("%s: %w", key, err)
		}
		spec.ConfidenceRange[i] = f
	}
	return spec, nil
}

func limitFromQuery(q url.Values) (int, error) {
	v := q.Get("limit")
	if v == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", v)
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, configstore.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, errNoStore):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.internalError(w, r, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op+" failed",
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// #endregion helpers
