package server

import (
	"context"
	"errors"
	"fmt"
	"ggarquitectos-site/internal/auth"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/middlewares"
	"ggarquitectos-site/internal/preferences"
	"ggarquitectos-site/internal/version"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	appCtx      *middlewares.AppContext
	httpServer  *http.Server
	debugServer *http.Server
	redis       *redis.Client
	unsubscribe []func()
	cancel      context.CancelFunc
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	prefs, redisClient, err := preferences.NewSessionManager(logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	if err := prometheus.Register(versioncollector.NewCollector(version.Program)); err != nil {
		logger.Debug("failed to register build info collector: already registered", "error", err)
	}

	if redisClient != nil && cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		collector := redisprometheus.NewCollector(metrics.Namespace, "preferences", redisClient)
		if err := prometheus.Register(collector); err != nil {
			logger.Debug("failed to register redis preferences collector: already registered", "error", err)
		}
	}

	verifier, err := auth.NewGoogleVerifier(ctx, cfg.Google)
	if err != nil {
		cancel()
		closeRedis(redisClient, logger)
		return nil, err
	}

	trusted, err := middlewares.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		cancel()
		closeRedis(redisClient, logger)
		return nil, err
	}

	bus := events.NewBus(logger)
	appCtx := middlewares.NewAppContext(ctx, cfg, logger, prefs, verifier, bus)

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		debugServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler:           setupDebugRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		appCtx: appCtx,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           setupRouter(appCtx, trusted),
			ReadHeaderTimeout: 10 * time.Second,
		},
		debugServer: debugServer,
		redis:       redisClient,
		unsubscribe: subscribeServerEvents(bus, logger),
		cancel:      cancel,
	}, nil
}

// subscribeServerEvents logs what happens on the server bus.
func subscribeServerEvents(bus *events.Bus, logger *slog.Logger) []func() {
	return []func(){
		events.Subscribe(bus, events.PreferenceChanged, func(c events.PreferenceChange) {
			logger.Info("Visitor preference changed", "key", c.Key, "enabled", c.Enabled)
		}),
	}
}

func closeRedis(client *redis.Client, logger *slog.Logger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Warn("Failed to close redis client", "error", err)
	}
}

// Start serves until SIGINT/SIGTERM or until a listener fails.
func (s *Server) Start() error {
	go func() {
		s.logger.Info("Server Started", "port", s.cfg.Server.Port, "preferences", s.appCtx.Preferences.StoreName(), "build", version.Info())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting Down Server")
	defer s.cancel()

	for _, unsub := range s.unsubscribe {
		unsub()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(ctx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	closeRedis(s.redis, s.logger)

	s.logger.Info("Server Exited")
	return nil
}
