package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SERVICE_NAME                string
	SERVICE_VERSION             string
	ENVIRONMENT                 string
	OTEL_EXPORTER_OTLP_ENDPOINT string
	OTEL_RESOURCE_ATTRIBUTES    string
	LOG_LEVEL                   string
	METRIC_INTERVAL             time.Duration
	RUNTIME_METRICS             bool
	REQUESTS_METRIC             bool
	DEV_MODE                    bool
	SERVER_PORT                 string
	ALLOW_ORIGINS               string
	MYSQL_HOST                  string
	MYSQL_PORT                  string
	MYSQL_USER                  string
	MYSQL_PASSWORD              string
	MYSQL_DBNAME                string
	MYSQL_CHARSET               string
	MYSQL_PARSE_TIME            bool
	MYSQL_LOC                   string
	REDIS_ADDRESS               string
	REDIS_PASSWORD              string
	REDIS_DB                    int
	CARD_CACHE_TTL              time.Duration
	KAFKA_BROKERS               string
	KAFKA_CARD_TOPIC            string
	RATE_LIMIT_RPS              float64
	RATE_LIMIT_BURST            int
	RATE_LIMIT_TTL              time.Duration
	SERVICE_TIMEOUT             time.Duration
	SHUTDOWN_TIMEOUT            time.Duration
}

func LoadConfig() (*Config, error) {
	// Helper function to get environment variable with default value
	Env := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	// Helper function to parse Duration from environment variable
	Duration := func(key string, defaultValue time.Duration) time.Duration {
		if value := os.Getenv(key); value != "" {
			if duration, err := time.ParseDuration(value); err == nil {
				return duration
			}
		}
		return defaultValue
	}

	// Helper function to parse boolean from environment variable
	Bool := func(key string, defaultValue bool) bool {
		if value := os.Getenv(key); value != "" {
			if boolValue, err := strconv.ParseBool(value); err == nil {
				return boolValue
			}
		}
		return defaultValue
	}

	Int := func(key string, defaultValue int) int {
		if value := os.Getenv(key); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		return defaultValue
	}

	Float := func(key string, defaultValue float64) float64 {
		if value := os.Getenv(key); value != "" {
			if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
				return floatValue
			}
		}
		return defaultValue
	}

	config := &Config{
		SERVICE_NAME:                Env("SERVICE_NAME", "cards"),
		SERVICE_VERSION:             Env("SERVICE_VERSION", "1.0.0"),
		ENVIRONMENT:                 Env("ENVIRONMENT", "production"),
		OTEL_EXPORTER_OTLP_ENDPOINT: Env("OTEL_EXPORTER_OTLP_ENDPOINT", "0.0.0.0:4317"),
		OTEL_RESOURCE_ATTRIBUTES:    Env("OTEL_RESOURCE_ATTRIBUTES", "service.name=cards,service.namespace=bank,deployment.environment=production"),
		LOG_LEVEL:                   Env("LOG_LEVEL", "info"),
		METRIC_INTERVAL:             Duration("METRIC_INTERVAL", 15*time.Second),
		RUNTIME_METRICS:             Bool("RUNTIME_METRICS", true),
		REQUESTS_METRIC:             Bool("REQUESTS_METRIC", true),
		DEV_MODE:                    Bool("DEV_MODE", false),
		SERVER_PORT:                 Env("SERVER_PORT", "9000"),
		ALLOW_ORIGINS:               Env("ALLOW_ORIGINS", "*"),
		MYSQL_HOST:                  Env("MYSQL_HOST", "127.0.0.1"),
		MYSQL_PORT:                  Env("MYSQL_PORT", "3306"),
		MYSQL_USER:                  Env("MYSQL_USER", "root"),
		MYSQL_PASSWORD:              Env("MYSQL_PASSWORD", ""),
		MYSQL_DBNAME:                Env("MYSQL_DBNAME", "cardsdb"),
		MYSQL_CHARSET:               Env("MYSQL_CHARSET", "utf8mb4"),
		MYSQL_PARSE_TIME:            Bool("MYSQL_PARSE_TIME", true),
		MYSQL_LOC:                   Env("MYSQL_LOC", "UTC"),
		REDIS_ADDRESS:               Env("REDIS_ADDRESS", "localhost:6379"),
		REDIS_PASSWORD:              Env("REDIS_PASSWORD", ""),
		REDIS_DB:                    Int("REDIS_DB", 0),
		CARD_CACHE_TTL:              Duration("CARD_CACHE_TTL", 10*time.Minute),
		KAFKA_BROKERS:               Env("KAFKA_BROKERS", ""),
		KAFKA_CARD_TOPIC:            Env("KAFKA_CARD_TOPIC", "cards.events"),
		RATE_LIMIT_RPS:              Float("RATE_LIMIT_RPS", 100.0/(15*60)),
		RATE_LIMIT_BURST:            Int("RATE_LIMIT_BURST", 100),
		RATE_LIMIT_TTL:              Duration("RATE_LIMIT_TTL", 15*time.Minute),
		SERVICE_TIMEOUT:             Duration("SERVICE_TIMEOUT", 10*time.Second),
		SHUTDOWN_TIMEOUT:            Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	return config, nil
}
