package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by the link store bootstrap.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// Mail drivers understood by the dispatcher bootstrap.
const (
	MailSES = "ses"
	MailLog = "log"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Store        StoreConfig        `yaml:"store"`
	Mail         MailConfig         `yaml:"mail"`
	Notification NotificationConfig `yaml:"notification"`
	CORS         CORSConfig         `yaml:"cors"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Intake       IntakeConfig       `yaml:"intake"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                   int    `yaml:"port"`
	Host                   string `yaml:"host"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShutdownTimeout returns the graceful shutdown budget as a duration
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the payment link store
type StoreConfig struct {
	Driver                string `yaml:"driver"`
	MongoURI              string `yaml:"mongo_uri"`
	MongoDatabase         string `yaml:"mongo_database"`
	DatabaseURL           string `yaml:"database_url"`
	DynamoDBTable         string `yaml:"dynamodb_table"`
	AWSRegion             string `yaml:"aws_region"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
}

// ConnectTimeout returns the dial timeout as a duration
func (c StoreConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// MailConfig holds outgoing mail configuration
type MailConfig struct {
	Driver         string `yaml:"driver"`
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NotificationConfig holds the fixed operator address and rendering options
type NotificationConfig struct {
	OperatorEmail string `yaml:"operator_email"`
	TimeZone      string `yaml:"time_zone"`
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig holds the per-client request budget. Limiting is on
// unless Disabled is set.
type RateLimitConfig struct {
	Disabled      bool   `yaml:"disabled"`
	Requests      int    `yaml:"requests"`
	WindowSeconds int    `yaml:"window_seconds"`
	RedisURL      string `yaml:"redis_url"`
}

// Window returns the rate limit window as a duration
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// IntakeConfig bounds multipart parsing and optional attachment checks.
// MaxFileBytes == 0 and empty AllowedTypes keep presence-only validation.
type IntakeConfig struct {
	MaxMemoryMB  int      `yaml:"max_memory_mb"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// MaxMemory returns the in-memory multipart budget in bytes
func (c IntakeConfig) MaxMemory() int64 {
	return int64(c.MaxMemoryMB) << 20
}

// LoggingConfig holds logger options
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on (default true).
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreMongo
	}
	if cfg.Store.MongoDatabase == "" {
		cfg.Store.MongoDatabase = "guaraci"
	}
	if cfg.Store.DynamoDBTable == "" {
		cfg.Store.DynamoDBTable = "payment-links"
	}
	if cfg.Store.AWSRegion == "" {
		cfg.Store.AWSRegion = "us-east-1"
	}
	if cfg.Store.ConnectTimeoutSeconds == 0 {
		cfg.Store.ConnectTimeoutSeconds = 10
	}
	if cfg.Mail.Driver == "" {
		cfg.Mail.Driver = MailSES
	}
	if cfg.Mail.Region == "" {
		cfg.Mail.Region = "us-east-1"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Guaraci"
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 30
	}
	if cfg.Notification.TimeZone == "" {
		cfg.Notification.TimeZone = "America/Sao_Paulo"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 15 * 60
	}
	if cfg.Intake.MaxMemoryMB == 0 {
		cfg.Intake.MaxMemoryMB = 32
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
// A missing config file is not an error: env-only deployments get defaults.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
		cfg.applyDefaults()
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.Store.MongoDatabase = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		cfg.Store.DynamoDBTable = v
	}
	if v := os.Getenv("MAIL_DRIVER"); v != "" {
		cfg.Mail.Driver = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mail.Region = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Mail.FromEmail = v
	}
	if v := os.Getenv("RESPONSIBLE_EMAIL"); v != "" {
		cfg.Notification.OperatorEmail = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RateLimit.RedisURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}

// Validate reports settings the submission pipeline cannot run without.
func (cfg *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(cfg.Notification.OperatorEmail) == "" {
		problems = append(problems, "notification.operator_email (RESPONSIBLE_EMAIL) is required")
	}
	switch cfg.Store.Driver {
	case StoreMongo:
		if cfg.Store.MongoURI == "" {
			problems = append(problems, "store.mongo_uri (MONGODB_URI) is required for the mongo driver")
		}
	case StorePostgres:
		if cfg.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url (DATABASE_URL) is required for the postgres driver")
		}
	case StoreDynamoDB, StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", cfg.Store.Driver))
	}
	switch cfg.Mail.Driver {
	case MailSES:
		if cfg.Mail.FromEmail == "" {
			problems = append(problems, "mail.from_email (MAIL_FROM) is required for the ses driver")
		}
	case MailLog:
	default:
		problems = append(problems, fmt.Sprintf("unknown mail driver %q", cfg.Mail.Driver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
