package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Allocator AllocatorConfig
	Registry  RegistryConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the admin credential and token settings.
type AuthConfig struct {
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	TokenExpiry       time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AllocatorConfig bounds the placeholder-phone retry loop.
type AllocatorConfig struct {
	MaxRetries int
}

// RegistryConfig controls the university backfill at startup.
type RegistryConfig struct {
	BackfillOnStart bool
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig toggles the report export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenExpiry:       parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Allocator = AllocatorConfig{
		MaxRetries: v.GetInt("ALLOCATOR_MAX_RETRIES"),
	}
	if cfg.Allocator.MaxRetries <= 0 {
		cfg.Allocator.MaxRetries = 3
	}

	cfg.Registry = RegistryConfig{
		BackfillOnStart: v.GetBool("REGISTRY_BACKFILL_ON_START"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "brokerage")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ALLOCATOR_MAX_RETRIES", 3)
	v.SetDefault("REGISTRY_BACKFILL_ON_START", true)

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
