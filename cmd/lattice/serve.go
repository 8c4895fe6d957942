package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/cli"
	httpapi "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/adapters/prometheus"
	redisstore "github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/analytics"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/session"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the JSON API, websocket play sessions, the OpenAPI document and
Swagger UI. With metrics enabled a second listener exposes /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr = addr
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
		}
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return serve(sigCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address of the API listener")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics")
}

func serve(ctx context.Context) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing store failed", "err", err)
		}
	}()

	streams := httpapi.NewStreamManager(logger)
	sinks := analytics.Multi{streams}

	registry := prom.NewRegistry()
	if cfg.Metrics.Enabled {
		metrics, err := prometheus.NewEmitter(registry)
		if err != nil {
			return err
		}
		sinks = append(sinks, metrics)
	}
	if cfg.Analytics.Stream != "" {
		sinks = append(sinks, redisstore.NewStreamEmitter(backend.Redis(), cfg.Analytics.Stream, cfg.Analytics.StreamMaxLen, logger))
	}
	if cfg.Analytics.Log {
		sinks = append(sinks, analytics.NewLogger(logger, slog.LevelInfo))
	}
	async := analytics.NewAsync(sinks,
		analytics.WithBuffer(cfg.Analytics.Buffer),
		analytics.WithLogger(logger),
	)

	engine := cli.NewEngine(backend.Store, content.FormatHTML, logger, async)

	sessionStore, locker, err := backend.SessionStore()
	if err != nil {
		return err
	}
	sessionOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Sessions.LockTTL),
	}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}

	handler, err := httpapi.NewHandler(engine,
		httpapi.WithLogger(logger),
		httpapi.WithVersion(lattice.Version),
		httpapi.WithCORSOrigin(cfg.HTTP.CORSOrigin),
		httpapi.WithSessions(session.NewManager(engine, sessionStore, sessionOpts...)),
		httpapi.WithStreams(streams),
	)
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", prometheus.Handler(registry))
		servers = append(servers, &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr, "driver", cfg.Store.Driver)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if backend.Watcher != nil {
		g.Go(func() error {
			changes, err := backend.Watcher.Watch(gctx)
			if err != nil {
				logger.Warn("hot reload disabled", "err", err)
				return nil
			}
			streams.Forward(gctx, changes)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		errs = append(errs, async.Close(shutdownCtx))
		if n := async.Dropped(); n > 0 {
			logger.Warn("analytics events dropped", "count", n)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
