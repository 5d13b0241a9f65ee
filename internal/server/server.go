// Package server wires configuration, storage, providers and the HTTP stack
// into a runnable service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"strafenkasse-service/internal/catalog"
	"strafenkasse-service/internal/config"
	httpapi "strafenkasse-service/internal/http"
	"strafenkasse-service/internal/http/handlers"
	"strafenkasse-service/internal/http/middleware"
	"strafenkasse-service/internal/ledger"
	"strafenkasse-service/internal/logging"
	"strafenkasse-service/internal/metrics"
	"strafenkasse-service/internal/poller"
	"strafenkasse-service/internal/providers"
	"strafenkasse-service/internal/reconcile"
	"strafenkasse-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	store    store.Store
	catalog  *catalog.Service
	ledger   *ledger.Service
	engine   *reconcile.Engine
	provider providers.DataProvider

	httpServer    httpServer
	metricsServer httpServer
	sync          syncLoop
	metricsStop   func(context.Context) error
}

// New constructs a server with default provider and storage wiring.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithProvider(cfg, logger, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.DataProvider) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	if provider == nil {
		provider = newProviderFactory(logger, recorder).build(cfg)
	}

	st, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cat := catalog.NewService(st)
	if err := cat.Seed(context.Background()); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	lgr := ledger.NewService(st)

	engine := reconcile.New(provider, lgr, cat, logger, recorder, reconcile.Config{
		GroupID:       cfg.Spond.GroupID,
		Window:        cfg.SyncWindow(),
		DefaultAmount: cfg.Spond.NoReplyPenalty,
	})

	var loop syncLoop
	var statusFn func() poller.Status
	if cfg.SyncInterval > 0 {
		p := poller.New(engine, logger, cfg.SyncInterval)
		loop = p
		statusFn = p.Status
	}

	httpSrv := buildHTTPServer(cfg, cat, lgr, engine, provider, logger, recorder, statusFn)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         st,
		catalog:       cat,
		ledger:        lgr,
		engine:        engine,
		provider:      provider,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		sync:          loop,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, st store.Store, httpSrv httpServer, loop syncLoop) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		httpServer: httpSrv,
		sync:       loop,
	}
}

func buildStore(cfg config.Config) (store.Store, error) {
	if cfg.DBPath == "" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(cfg.DBPath)
}

func buildHTTPServer(cfg config.Config, cat *catalog.Service, lgr *ledger.Service, engine *reconcile.Engine, provider providers.DataProvider, logger *slog.Logger, recorder *metrics.Recorder, statusFn func() poller.Status) httpServer {
	handler := handlers.New(cat, lgr, engine, provider, logger, statusFn)
	router := httpapi.NewRouter(handler, cfg.AdminToken, logger)

	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.Logging(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the sync loop and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.sync != nil {
		s.sync.Start(ctx)
	}

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if s.sync != nil {
		if err := s.sync.Stop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Error("failed to stop sync loop", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	// Stop rate-limited providers to avoid ticker leaks when present.
	if rl, ok := s.provider.(interface{ Close() }); ok {
		rl.Close()
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil && s.logger != nil {
			s.logger.Warn("store close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
