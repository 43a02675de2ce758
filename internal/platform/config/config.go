// Package config loads application configuration from the environment so main
// stays lean. Every knob has a development default; only the Postgres DSN is
// required to boot.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Guard    GuardConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr            string        `env:"CANVASS_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"CANVASS_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"CANVASS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type PostgresConfig struct {
	DSN string `env:"CANVASS_POSTGRES_DSN,required"`
}

// RedisConfig configures the session marker store. An empty URL disables
// Redis; the in-memory marker store is used instead.
type RedisConfig struct {
	URL          string        `env:"CANVASS_REDIS_URL"`
	PoolSize     int           `env:"CANVASS_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"CANVASS_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"CANVASS_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"CANVASS_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"CANVASS_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures fact publishing. No brokers means facts are dropped
// after local delivery, which is fine for development.
type KafkaConfig struct {
	Brokers []string `env:"CANVASS_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"CANVASS_KAFKA_TOPIC" envDefault:"canvass.facts"`
}

type AuthConfig struct {
	// JWTSigningKey must be overridden in production.
	JWTSigningKey string        `env:"CANVASS_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer        string        `env:"CANVASS_JWT_ISSUER" envDefault:"canvass"`
	Audience      string        `env:"CANVASS_JWT_AUDIENCE" envDefault:"canvass-api"`
	TokenTTL      time.Duration `env:"CANVASS_TOKEN_TTL" envDefault:"24h"`
}

type GuardConfig struct {
	// SessionMarkerTTL bounds how long a one-per-session marker survives.
	SessionMarkerTTL time.Duration `env:"CANVASS_SESSION_MARKER_TTL" envDefault:"720h"`
}

type LogConfig struct {
	Level  string `env:"CANVASS_LOG_LEVEL" envDefault:"info"`
	Format string `env:"CANVASS_LOG_FORMAT" envDefault:"json"`
}

// Load parses the full configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
