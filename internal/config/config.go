package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Cleanup   CleanupConfig
	Analytics AnalyticsConfig
	Authz     AuthzConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	NatsURL     string
	RedisAddr   string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	DefaultTTLMinutes int
	CacheDriver       string // "memory", "redis" or "disabled"
	CacheTTLMinutes   int
}

type CleanupConfig struct {
	RetentionDays   int
	IntervalMinutes int
	SweepExpired    bool
}

type AnalyticsConfig struct {
	Transport             string // "channel" or "nats"
	TrackTopic            string
	RollupIntervalMinutes int
}

type AuthzConfig struct {
	TokenSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/store.log"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			DefaultTTLMinutes: getEnvAsInt("SESSION_DEFAULT_TTL_MINUTES", 30),
			CacheDriver:       getEnv("SESSION_CACHE_DRIVER", "memory"),
			CacheTTLMinutes:   getEnvAsInt("SESSION_CACHE_TTL_MINUTES", 5),
		},
		Cleanup: CleanupConfig{
			RetentionDays:   getEnvAsInt("CLEANUP_RETENTION_DAYS", 7),
			IntervalMinutes: getEnvAsInt("CLEANUP_INTERVAL_MINUTES", 60),
			SweepExpired:    getEnvAsBool("CLEANUP_SWEEP_EXPIRED", true),
		},
		Analytics: AnalyticsConfig{
			Transport:             getEnv("TRACK_TRANSPORT", "channel"),
			TrackTopic:            getEnv("TRACK_TOPIC_NAME", "TRACK_EVENT"),
			RollupIntervalMinutes: getEnvAsInt("ROLLUP_INTERVAL_MINUTES", 60),
		},
		Authz: AuthzConfig{
			TokenSecret: getEnv("AUTHZ_TOKEN_SECRET", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
