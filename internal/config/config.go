// Package config loads the service configuration from a yaml file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mechmarket/internal/infrastructure/logging"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     logging.Config    `yaml:"logging"`
	DynamoDB    DynamoDBConfig    `yaml:"dynamodb"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
	Payments    PaymentsConfig    `yaml:"payments"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DynamoDBConfig holds the DynamoDB connection settings. Endpoint is only
// set for local development against dynamodb-local.
type DynamoDBConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// PostgresConfig holds the connection for the display number sequence.
// An empty host disables Postgres and the service falls back to an
// in-process allocator.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslmode)
}

// RabbitMQConfig holds the event bridge settings. Disabled keeps events
// in-process only.
type RabbitMQConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	User              string        `yaml:"user"`
	Password          string        `yaml:"password"`
	VHost             string        `yaml:"vhost"`
	Exchange          string        `yaml:"exchange"`
	ConnectRetries    int           `yaml:"connect_retries"`
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay"`
	PublishRetries    int           `yaml:"publish_retries"`
	PublishRetryDelay time.Duration `yaml:"publish_retry_delay"`
}

// MercadoPagoConfig holds payment processor credentials. MockMode short
// circuits the processor for local development and tests.
type MercadoPagoConfig struct {
	AccessToken string `yaml:"access_token"`
	MockMode    bool   `yaml:"mock_mode"`
}

// PaymentsConfig holds escrow and retry tuning.
type PaymentsConfig struct {
	FeeRate        float64       `yaml:"fee_rate"`
	Currency       string        `yaml:"currency"`
	MinAmountCents int64         `yaml:"min_amount_cents"`
	MaxAmountCents int64         `yaml:"max_amount_cents"`
	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffBase    time.Duration `yaml:"backoff_base"`
}

// SchedulerConfig holds the expiration sweep cadence.
type SchedulerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	WarnAhead     time.Duration `yaml:"warn_ahead"`
}

// LifecycleConfig holds the deadlines assigned to new entities.
type LifecycleConfig struct {
	JobTTL         time.Duration `yaml:"job_ttl"`
	BidTTL         time.Duration `yaml:"bid_ttl"`
	ChangeOrderTTL time.Duration `yaml:"change_order_ttl"`
}

// Load reads and parses the configuration file, then overlays secrets from
// the environment.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// applyEnv overrides credentials so they never have to live in the yaml.
func (c *Config) applyEnv() {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.DynamoDB.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.DynamoDB.SecretAccessKey = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("RABBITMQ_PASSWORD"); v != "" {
		c.RabbitMQ.Password = v
	}
	if v := os.Getenv("MERCADOPAGO_ACCESS_TOKEN"); v != "" {
		c.MercadoPago.AccessToken = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.DynamoDB.Region == "" {
		return fmt.Errorf("dynamodb region is required")
	}

	if c.Postgres.Host != "" {
		if c.Postgres.Port < MinPort || c.Postgres.Port > MaxPort {
			return fmt.Errorf("invalid postgres port: %d (must be between %d and %d)", c.Postgres.Port, MinPort, MaxPort)
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
	}

	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required")
		}
		if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
		}
	}

	if c.Payments.FeeRate < 0 || c.Payments.FeeRate >= 1 {
		return fmt.Errorf("payments fee_rate must be in [0, 1)")
	}

	if c.Payments.MinAmountCents < 0 || c.Payments.MaxAmountCents < c.Payments.MinAmountCents {
		return fmt.Errorf("payments amount limits are inverted")
	}

	if !c.MercadoPago.MockMode && c.MercadoPago.AccessToken == "" {
		return fmt.Errorf("mercadopago access token is required outside mock mode")
	}

	if c.Scheduler.SweepInterval <= 0 {
		return fmt.Errorf("scheduler sweep_interval must be greater than 0")
	}

	if c.Lifecycle.JobTTL <= 0 || c.Lifecycle.BidTTL <= 0 || c.Lifecycle.ChangeOrderTTL <= 0 {
		return fmt.Errorf("lifecycle ttls must be greater than 0")
	}

	return nil
}
