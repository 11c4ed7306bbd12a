package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// PaymentConfig selects the active gateway and carries per-provider
// credentials. Webhook secrets live here and are injected into the
// reconciler at construction, never read from the environment by handlers.
type PaymentConfig struct {
	Gateway string        `mapstructure:"gateway" validate:"required,oneof=asaas abacate"`
	Asaas   AsaasConfig   `mapstructure:"asaas"`
	Abacate AbacateConfig `mapstructure:"abacate"`

	// SandboxMode enables synthetic document generation to satisfy
	// provider checksum validation in test environments. Never enable
	// in production.
	SandboxMode bool `mapstructure:"sandbox_mode"`
}

type AsaasConfig struct {
	APIURL         string        `mapstructure:"api_url" validate:"required,url"`
	APIKey         string        `mapstructure:"api_key"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type AbacateConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds a Config from environment variables for
// containerized deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DATABASE_URL", ""),
		},
		Payment: PaymentConfig{
			Gateway: getEnv("PAYMENT_GATEWAY", "asaas"),
			Asaas: AsaasConfig{
				APIURL:         getEnv("ASAAS_API_URL", ""),
				APIKey:         getEnv("ASAAS_API_KEY", ""),
				WebhookSecret:  getEnv("ASAAS_WEBHOOK_SECRET", ""),
				RequestTimeout: 10 * time.Second,
			},
			Abacate: AbacateConfig{
				APIURL:         getEnv("ABACATE_API_URL", ""),
				APIKey:         getEnv("ABACATE_API_KEY", ""),
				WebhookSecret:  getEnv("ABACATE_WEBHOOK_SECRET", ""),
				RequestTimeout: 10 * time.Second,
			},
			SandboxMode: getEnv("PAYMENT_SANDBOX_MODE", "false") == "true",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *PaymentConfig) Validate() error {
	switch c.Gateway {
	case "asaas":
		if c.Asaas.APIURL == "" {
			return errors.New("asaas api_url is required")
		}
		if _, err := url.Parse(c.Asaas.APIURL); err != nil {
			return fmt.Errorf("invalid asaas api_url: %w", err)
		}
		if c.Asaas.WebhookSecret == "" {
			return errors.New("asaas webhook_secret is required")
		}
	case "abacate":
		if c.Abacate.APIURL == "" {
			return errors.New("abacate api_url is required")
		}
		if c.Abacate.WebhookSecret == "" {
			return errors.New("abacate webhook_secret is required")
		}
	default:
		return fmt.Errorf("unknown payment gateway: %s", c.Gateway)
	}
	return nil
}

func (c *AsaasConfig) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return c.RequestTimeout
}

func (c *AbacateConfig) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return c.RequestTimeout
}
