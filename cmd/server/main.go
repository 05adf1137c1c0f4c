package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/ses-stats/internal/api"
	"github.com/ignite/ses-stats/internal/auth"
	"github.com/ignite/ses-stats/internal/cache"
	"github.com/ignite/ses-stats/internal/config"
	"github.com/ignite/ses-stats/internal/notification"
	"github.com/ignite/ses-stats/internal/ses"
	"github.com/ignite/ses-stats/internal/store"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// PostgreSQL for bounce/complaint persistence
	var db *sql.DB
	var feedbackStore *store.Store
	if cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			pingCancel()
			log.Fatalf("Failed to reach database: %v", err)
		}
		pingCancel()

		feedbackStore = store.New(db)
		if err := feedbackStore.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database connected, feedback tables ready")
	} else {
		log.Println("No DATABASE_URL configured; bounce/complaint persistence disabled")
	}

	// Redis for the dashboard result cache
	var redisClient *redis.Client
	var resultCache api.ResultCache
	if cfg.Cache.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unreachable (%v); dashboard caching disabled", err)
			redisClient = nil
		} else {
			resultCache = cache.New(redisClient, cfg.Cache.TTL())
			log.Printf("Redis connected, dashboard cache TTL %s", cfg.Cache.TTL())
		}
	}

	// SES client
	sesClient, err := ses.NewClient(ctx, cfg.SES)
	if err != nil {
		log.Fatalf("Failed to create SES client: %v", err)
	}
	log.Printf("SES client ready (region %s, key %s)", sesClient.Region(), sesClient.AccessKeyDisplay())

	// Notification classifier wired to the store sinks
	var bounceSink notification.BounceSink = notification.BounceFanout{}
	var complaintSink notification.ComplaintSink = notification.ComplaintFanout{}
	if feedbackStore != nil {
		bounceSink = notification.BounceFanout{feedbackStore}
		complaintSink = notification.ComplaintFanout{feedbackStore}
	}
	classifier := notification.NewClassifier(bounceSink, complaintSink)

	// Display timezone
	location, err := cfg.SES.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	handlers := api.NewHandlers(sesClient, resultCache, classifier, location, cfg.SES.Timeout())
	handlers.SetHealthChecker(api.NewHealthChecker(db, redisClient))

	// Google OAuth (optional)
	var authManager *auth.Manager
	if cfg.Auth.Enabled {
		baseURL := fmt.Sprintf("http://%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		if url := os.Getenv("BASE_URL"); url != "" {
			baseURL = url
		}
		authManager = auth.NewManager(&cfg.Auth, baseURL)
		go authManager.CleanupExpiredSessions(ctx)
		log.Println("Google OAuth enabled")
	} else {
		log.Println("Auth disabled; dashboard is open")
	}

	server := api.NewServer(cfg.Server, handlers, authManager)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
