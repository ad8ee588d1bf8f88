package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	JWTSecret          string
	AIBaseURL          string
	AIAPIKey           string
	AIModel            string
	AIMaxTokens        int
	GradingWorkers     int
	GradingQueueSize   int
	AssignmentCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STUDYSYS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Student System API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 500)
	v.SetDefault("grading.workers", 10)
	v.SetDefault("grading.queue_size", 256)
	v.SetDefault("assignments.cache_ttl", "2m")

	ttlString := v.GetString("assignments.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid assignments cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		AIBaseURL:          v.GetString("ai.base_url"),
		AIAPIKey:           v.GetString("ai.api_key"),
		AIModel:            v.GetString("ai.model"),
		AIMaxTokens:        v.GetInt("ai.max_tokens"),
		GradingWorkers:     v.GetInt("grading.workers"),
		GradingQueueSize:   v.GetInt("grading.queue_size"),
		AssignmentCacheTTL: ttl,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradingWorkers <= 0 {
		cfg.GradingWorkers = 10
	}

	if cfg.GradingQueueSize <= 0 {
		cfg.GradingQueueSize = 256
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 500
	}

	return cfg, nil
}
