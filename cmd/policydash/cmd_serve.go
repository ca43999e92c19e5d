package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/policy-dash/internal/httpapi"
	"github.com/danielpatrickdp/policy-dash/internal/logging"
	"github.com/danielpatrickdp/policy-dash/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and Prometheus metrics",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides settings)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New("serve")
	addr := settings.ListenAddr
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}

	st, err := openStores(settings.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := loadWorkingState(ctx, st)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	session := httpapi.NewSession(ws.rows, ws.cfg, ws.version, httpapi.Options{
		Configs:      st.configs,
		Records:      st.records,
		Audit:        st.audit,
		Metrics:      telemetry.New(reg),
		Logger:       logging.New("session"),
		HTTPClient:   &http.Client{},
		FetchTimeout: settings.FetchTimeout,
	})
	if settings.ConfigURL != "" {
		session.FetchConfig(ctx, settings.ConfigURL)
	}

	handler := httpapi.New(session, logging.New("http"))
	srv := httpapi.NewServer(addr, httpapi.NewRouter(handler, reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr, "records", len(ws.rows), "sample", ws.fromSample)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
