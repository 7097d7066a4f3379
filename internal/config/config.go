package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	osclient "github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/popular"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Config корневая конфигурация сервиса
type Config struct {
	Service    ServiceConfig   `mapstructure:"service"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Health     HealthConfig    `mapstructure:"health"`
	Logger     logger.Config   `mapstructure:"logger"`
	OpenSearch osclient.Config `mapstructure:"opensearch"`
	Postgres   PostgresConfig  `mapstructure:"postgres"`
	Redis      popular.Config  `mapstructure:"redis"`
}

// ServiceConfig общие сведения о сервисе
type ServiceConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"oneof=dev staging production"`
}

// HTTPConfig конфигурация основного HTTP сервера
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig конфигурация сервера метрик
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// HealthConfig конфигурация healthcheck сервера
type HealthConfig struct {
	Addr string `mapstructure:"addr"`
}

// PostgresConfig конфигурация подключения к PostgreSQL.
// База опциональна, без нее конфигурация фасетов живет только в памяти.
type PostgresConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// Load читает конфигурацию из файла и переменных окружения.
// Переменные окружения имеют приоритет, например SEARCH_HTTP_ADDR.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "search-service")
	v.SetDefault("service.version", "dev")
	v.SetDefault("service.environment", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("metrics.addr", ":8091")
	v.SetDefault("health.addr", ":8092")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("opensearch.url", "http://localhost:9200")
	v.SetDefault("opensearch.index_prefix", "search")
	v.SetDefault("opensearch.timeout", 30*time.Second)
	v.SetDefault("opensearch.max_retries", 3)
	v.SetDefault("opensearch.max_idle_conns", 10)

	v.SetDefault("postgres.enabled", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.OpenSearch.Validate(); err != nil {
		return fmt.Errorf("invalid opensearch configuration: %w", err)
	}

	if c.Postgres.Enabled && c.Postgres.URL == "" {
		return fmt.Errorf("invalid configuration: postgres enabled but url is empty")
	}

	return nil
}
