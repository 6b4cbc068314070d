package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joshuakim/sharpline/internal/api"
	"github.com/joshuakim/sharpline/internal/cache"
	"github.com/joshuakim/sharpline/internal/config"
	"github.com/joshuakim/sharpline/internal/injuries"
	"github.com/joshuakim/sharpline/internal/logger"
	"github.com/joshuakim/sharpline/internal/metrics"
	"github.com/joshuakim/sharpline/internal/nbastats"
	"github.com/joshuakim/sharpline/internal/oddsapi"
	"github.com/joshuakim/sharpline/internal/projection"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/joshuakim/sharpline/internal/service"
	"github.com/joshuakim/sharpline/internal/sportsdata"
	"github.com/joshuakim/sharpline/internal/store"
	"github.com/joshuakim/sharpline/internal/teams"
	"github.com/joshuakim/sharpline/internal/websocket"
	"github.com/sirupsen/logrus"
)

const (
	breakerTimeout   = 30 * time.Second
	maxWSConnections = 100
	requestTimeout   = 2 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	responses, err := cache.New(ctx, cfg.CacheBackend, cfg.CacheTarget())
	if err != nil {
		log.WithError(err).WithField("backend", cfg.CacheBackend).Fatal("Failed to open response cache")
	}
	defer responses.Close()

	m := metrics.New()
	guard := func(name string) *providers.Guard {
		g := providers.NewGuard(providers.GuardConfig{
			Name:             name,
			MaxRetries:       cfg.ProviderMaxRetries,
			RetryDelay:       cfg.ProviderRetryDelay,
			RateLimit:        cfg.ProviderRateLimit,
			BreakerThreshold: cfg.CircuitBreakerThreshold,
			BreakerTimeout:   breakerTimeout,
		}, log)
		m.RegisterBreaker(name, g.State)
		return g
	}

	sources := service.Sources{
		Lines:   oddsapi.NewClient(cfg.OddsAPIKey, cfg.PropBookmaker, cfg.ProviderTimeout, guard(service.SourceOdds), log),
		Metrics: nbastats.NewClient(cfg.NBASeason, cfg.ProviderTimeout, guard(service.SourceMetrics), responses, cfg.MetricsCacheTTL, log),
	}
	if cfg.RapidAPIKey != "" {
		sources.Injuries = injuries.NewClient(cfg.RapidAPIKey, cfg.ProviderTimeout, guard(service.SourceInjuries), responses, cfg.InjuryCacheTTL, log)
	} else {
		log.Warn("RAPIDAPI_KEY not set, every player is treated as available")
	}
	if cfg.SportsDataAPIKey != "" {
		sources.GameLogs = sportsdata.NewClient(cfg.SportsDataAPIKey, cfg.SportsDataSeason, cfg.RecentGames,
			cfg.ProviderTimeout, guard(service.SourceGameLogs), responses, cfg.GameLogCacheTTL, log)
	} else {
		log.Warn("SPORTSDATA_API_KEY not set, player props are disabled")
	}

	table := teams.Default()
	svc := service.New(sources, projection.NewEngine(table), store.New(), m, cfg.PropScanGames, log)
	if p, ok := responses.(cache.Purger); ok {
		svc.SetPurger(p)
	}

	hub := websocket.NewHub(svc, m, maxWSConnections, log)
	go hub.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// The socket is long-lived and must not sit behind the request timeout
	r.Get("/api/ws", hub.ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		api.NewHandler(svc, m, table, log).RegisterRoutes(r)
	})

	if cfg.IsDevelopment() {
		chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			log.Debugf("  %-6s %s", method, route)
			return nil
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":      cfg.Port,
			"env":       cfg.Env,
			"cache":     cfg.CacheBackend,
			"injuries":  sources.Injuries != nil,
			"game_logs": sources.GameLogs != nil,
		}).Info("sharpline API starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}
