package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/api"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/attribution"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/credential"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/adjust"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/amplitude"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/appsflyer"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/appstore"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/mixpanel"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider/revenuecat"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/syncer"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logger.DEBUG)
	}

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	st := store.New(db)
	if err := st.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it the redirector reads links from the
	// database on every click.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, link cache disabled", "error", err.Error())
			redisClient = nil
		}
	}

	registry := provider.NewRegistry(
		revenuecat.NewAdapter(cfg.Providers.RevenueCat),
		appsflyer.NewAdapter(cfg.Providers.AppsFlyer),
		adjust.NewAdapter(cfg.Providers.Adjust),
		mixpanel.NewAdapter(cfg.Providers.Mixpanel),
		amplitude.NewAdapter(cfg.Providers.Amplitude),
		appstore.NewAdapter(cfg.Providers.AppStore),
	)

	orchestrator := syncer.New(st, registry)
	matcher := attribution.NewMatcher(st, cfg.Attribution.MatchWindow())
	redirector := attribution.NewRedirector(st, redisClient, cfg.Tracking.CacheTTL(), cfg.Tracking.FallbackSearchURL)
	validator := credential.NewValidator(registry)

	var scheduler *syncer.Scheduler
	if cfg.Sync.Enabled {
		scheduler = syncer.NewScheduler(orchestrator, cfg.Sync.CronSpec)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start sync scheduler: %v", err)
		}
	}

	handlers := api.NewHandlers(st, orchestrator, matcher, redirector, validator)
	server := api.NewServer(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	logger.Info("shutting down")
	if scheduler != nil {
		scheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}
