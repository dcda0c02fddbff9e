package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// AppConfig holds application identity used in log and trace attributes.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// InventoryConfig holds the snapshot location and low-stock defaults.
type InventoryConfig struct {
	SnapshotPath string `mapstructure:"snapshot_path"`
	LowThreshold int    `mapstructure:"low_threshold"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TracingConfig holds the optional OTLP endpoint; empty disables tracing.
type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// Load loads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stockroom")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("inventory.snapshot_path", "inventory.json")
	v.SetDefault("inventory.low_threshold", 5)

	v.SetDefault("logger.level", "info")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("tracing.endpoint", "")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.name", "APP_NAME")
	_ = v.BindEnv("app.environment", "APP_ENVIRONMENT")

	_ = v.BindEnv("server.addr", "SERVER_ADDR")
	_ = v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	_ = v.BindEnv("inventory.snapshot_path", "INVENTORY_SNAPSHOT_PATH")
	_ = v.BindEnv("inventory.low_threshold", "INVENTORY_LOW_THRESHOLD")

	_ = v.BindEnv("logger.level", "LOGGER_LEVEL")

	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")

	_ = v.BindEnv("tracing.endpoint", "TRACING_ENDPOINT")
}

func validate(cfg *Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app name must not be empty")
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if cfg.Inventory.SnapshotPath == "" {
		return fmt.Errorf("inventory snapshot path must not be empty")
	}
	return nil
}
