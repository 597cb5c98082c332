package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	DatabaseURL   string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	DBSSLMode     string
	DBAutoMigrate bool

	RedisAddr   string
	KafkaBroker string

	CORSAllowedOrigins []string

	DashboardCacheTTL     time.Duration
	DashboardWarmSchedule string
	OutboxPollInterval    time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "5000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBUser:                getEnv("DB_USER", "postgres"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                getEnv("DB_NAME", "hrms"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBSSLMode:             getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate:         getEnvBool("DB_AUTO_MIGRATE", true),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		KafkaBroker:           os.Getenv("KAFKA_BROKER"),
		CORSAllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DashboardCacheTTL:     time.Duration(getEnvInt("DASHBOARD_CACHE_TTL_SECONDS", 300)) * time.Second,
		DashboardWarmSchedule: getEnv("DASHBOARD_WARM_SCHEDULE", "5 0 * * *"),
		OutboxPollInterval:    time.Duration(getEnvInt("OUTBOX_POLL_SECONDS", 3)) * time.Second,
	}

	if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		return cfg, errors.New("missing env: DATABASE_URL or DB_PASSWORD")
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from
// the DB_* variables.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
