package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Rooms
	MaxRooms              int
	TickRateHz            int
	MaxDeltaMillis        int
	SnapshotEveryTicks    int
	IdleRoomMinutes       int
	IdleWorkerPollSeconds int

	// Security
	JWTSecret       string
	TokenTTLMinutes int

	// Physics tuning (YAML overlay on top of embedded defaults)
	PhysicsConfigPath string
	Physics           Physics
}

// Load reads settings from the environment (and .env when present). Physics
// starts at the embedded defaults; the PHYSICS_CONFIG overlay is applied by
// the caller so a bad file can fail startup.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database (empty disables persistence)
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis (empty disables snapshots and pub/sub)
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Rooms
		MaxRooms:              getEnvInt("MAX_ROOMS", 64),
		TickRateHz:            getEnvInt("TICK_RATE_HZ", 60),
		MaxDeltaMillis:        getEnvInt("MAX_DELTA_MS", 50),
		SnapshotEveryTicks:    getEnvInt("SNAPSHOT_EVERY_TICKS", 30),
		IdleRoomMinutes:       getEnvInt("IDLE_ROOM_MINUTES", 15),
		IdleWorkerPollSeconds: getEnvInt("IDLE_WORKER_POLL_SECONDS", 30),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 240),

		PhysicsConfigPath: getEnv("PHYSICS_CONFIG", ""),
		Physics:           DefaultPhysics(),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
