package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Portal   PortalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	HubLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

// PortalConfig holds the media timing knobs of the intro portal. The defaults
// mirror what the mobile clients ship with; they are configurable mostly so
// staging can shrink them.
type PortalConfig struct {
	DisplaySettleDelay time.Duration
	FadeDuration       time.Duration
	FadeOutDuration    time.Duration
	PinnedSessionTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			HubLogFilePath:     getEnv("HUB_LOG_FILE_PATH", "hub.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Portal: PortalConfig{
			DisplaySettleDelay: getEnvAsDuration("PORTAL_SETTLE_DELAY_MS", 2000),
			FadeDuration:       getEnvAsDuration("PORTAL_FADE_MS", 10000),
			FadeOutDuration:    getEnvAsDuration("PORTAL_FADE_OUT_MS", 5000),
			PinnedSessionTTL:   getEnvAsDuration("PINNED_SESSION_TTL_MS", 30*24*60*60*1000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallbackMs int) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(value) * time.Millisecond
	}
	return time.Duration(fallbackMs) * time.Millisecond
}
