package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/playmatatu/billiard/internal/api"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/database"
	"github.com/playmatatu/billiard/internal/game"
	"github.com/playmatatu/billiard/internal/migrations"
	"github.com/playmatatu/billiard/internal/redis"
	"github.com/playmatatu/billiard/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if cfg.PhysicsConfigPath != "" {
		physics, err := config.LoadPhysics(cfg.PhysicsConfigPath)
		if err != nil {
			log.Fatalf("Failed to load physics config: %v", err)
		}
		cfg.Physics = physics
		log.Printf("[CONFIG] physics overlay loaded from %s", cfg.PhysicsConfigPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database (optional)
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Run migrations on start if requested
		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		log.Println("[DB] DATABASE_URL not set; shot history kept in memory only")
	}

	// Initialize Redis (optional)
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL not set; snapshots and cross-instance events disabled")
	}

	// Table manager, then the websocket hub that fans its messages out
	game.InitializeManager(ctx, db, rdb, cfg)
	game.Manager.SetBroadcaster(ws.TableHub)

	ws.SetRedisClient(rdb)
	ws.StartTableEventSubscriber(ctx)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, rdb, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting billiard server on port %s (tick=%dHz, max tables=%d)", cfg.Port, cfg.TickRateHz, cfg.MaxRooms)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	game.Manager.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
