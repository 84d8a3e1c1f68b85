package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Endpoint EndpointConfig `koanf:"endpoint"`
	Gateways GatewaysConfig `koanf:"gateways"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Worker   WorkerConfig   `koanf:"worker"`
	Logger   LoggerConfig   `koanf:"logger"`
}

// WorkerConfig drives the expiration loop. A zero Interval disables it.
type WorkerConfig struct {
	Interval  time.Duration `koanf:"interval"`
	MaxAge    time.Duration `koanf:"max_age"`
	BatchSize int           `koanf:"batch_size"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// EndpointConfig describes where the payment endpoint is reachable from the
// outside. Gateways redirect browsers and send notifications to this base.
type EndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required"`
}

// GatewaysConfig declares the gateways available for payment creation: one
// remote HTTP gateway and an optional manual one for offline methods.
type GatewaysConfig struct {
	Remote RemoteGatewayConfig `koanf:"remote"`
	Manual ManualGatewayConfig `koanf:"manual"`
}

type RemoteGatewayConfig struct {
	Name        string        `koanf:"name" validate:"required"`
	BaseURL     string        `koanf:"base_url" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
}

type ManualGatewayConfig struct {
	Enabled bool   `koanf:"enabled"`
	Name    string `koanf:"name"`
}

// RedisConfig is optional. When Addr is empty, completion triggers are
// serialized with in-process locks instead.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	LockTTL  time.Duration `koanf:"lock_ttl"`
}

// KafkaConfig is optional. When Brokers is empty, status change events are
// discarded.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// LoadConfig reads PAYFLOW_-prefixed environment variables, with double
// underscores separating nested keys, and validates the result.
func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("PAYFLOW_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PAYFLOW_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
