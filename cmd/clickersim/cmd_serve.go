package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/spf13/cobra"

	"github.com/dasje/cookie-clicker-simulator/internal/transport/ws"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulation runs over a websocket",
		Long: `serve exposes the simulator on an HTTP listener:

  /v1/ws    websocket run stream (RUN in, RUN_STARTED/POINT/RESULT out)
  /healthz  liveness probe
  /metrics  Prometheus text exposition

Set CLICKERSIM_STATSVIEW to a listen address for a live runtime viewer,
and CLICKERSIM_ENABLE_PPROF=true to mount /debug/pprof handlers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("catalog") {
				cfg.CatalogPath, _ = cmd.Flags().GetString("catalog")
			}
			if cmd.Flags().Changed("max-points") {
				cfg.Serve.MaxStreamPoints, _ = cmd.Flags().GetInt("max-points")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newRootLogger(cmd)
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			if addr := strings.TrimSpace(os.Getenv("CLICKERSIM_STATSVIEW")); addr != "" {
				// set configurations before calling `statsview.New()` method
				viewer.SetConfiguration(viewer.WithAddr(addr))
				mgr := statsview.New()
				go mgr.Start()
				logger.Info("statsview enabled", "addr", addr)
			}

			srv := ws.NewServer(cat, cfg.BaseRate, cfg.Serve.MaxStreamPoints, logger)

			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
				rw.WriteHeader(200)
				_, _ = rw.Write([]byte("ok"))
			})
			mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
				rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

				m := srv.Metrics()

				// Minimal Prometheus exposition format.
				fmt.Fprintf(rw, "# HELP clickersim_runs_started_total Accepted RUN requests.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_runs_started_total counter\n")
				fmt.Fprintf(rw, "clickersim_runs_started_total %d\n", m.RunsStarted)

				fmt.Fprintf(rw, "# HELP clickersim_runs_finished_total Runs that reached RESULT.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_runs_finished_total counter\n")
				fmt.Fprintf(rw, "clickersim_runs_finished_total %d\n", m.RunsFinished)

				fmt.Fprintf(rw, "# HELP clickersim_runs_failed_total Runs aborted after start.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_runs_failed_total counter\n")
				fmt.Fprintf(rw, "clickersim_runs_failed_total %d\n", m.RunsFailed)

				fmt.Fprintf(rw, "# HELP clickersim_rejects_total Requests rejected before a run started.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_rejects_total counter\n")
				fmt.Fprintf(rw, "clickersim_rejects_total %d\n", m.Rejects)

				fmt.Fprintf(rw, "# HELP clickersim_points_streamed_total POINT messages sent.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_points_streamed_total counter\n")
				fmt.Fprintf(rw, "clickersim_points_streamed_total %d\n", m.PointsStreamed)

				fmt.Fprintf(rw, "# HELP clickersim_catalog_items Items in the served catalog.\n")
				fmt.Fprintf(rw, "# TYPE clickersim_catalog_items gauge\n")
				fmt.Fprintf(rw, "clickersim_catalog_items{digest=%q} %d\n", cat.Digest(), len(cat.Items()))
			})
			if envBool("CLICKERSIM_ENABLE_PPROF", false) {
				mux.HandleFunc("/debug/pprof/", pprof.Index)
				mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
				mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
				mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
				mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
			} else {
				logger.Info("pprof endpoints disabled (CLICKERSIM_ENABLE_PPROF=false)")
			}
			mux.HandleFunc("/v1/ws", srv.Handler())

			hs := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-ctx.Done()
				ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel2()
				_ = hs.Shutdown(ctx2)
			}()

			logger.Info("listening", "addr", cfg.Serve.Addr, "catalog_digest", cat.Digest(), "items", len(cat.Items()))
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().String("catalog", "", "Catalog JSON path (overrides config)")
	cmd.Flags().Int("max-points", 0, "Max streamed points per run (overrides config)")
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
