package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ericfitz/personnel/internal/envutil"
	"github.com/ericfitz/personnel/internal/slogging"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Events    EventsConfig    `yaml:"events"`
	Secrets   SecretsConfig   `yaml:"secrets"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `yaml:"port" env:"SERVER_PORT"`
	Interface       string        `yaml:"interface" env:"SERVER_INTERFACE"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	TLSEnabled      bool          `yaml:"tls_enabled" env:"SERVER_TLS_ENABLED"`
	TLSCertFile     string        `yaml:"tls_cert_file" env:"SERVER_TLS_CERT_FILE"`
	TLSKeyFile      string        `yaml:"tls_key_file" env:"SERVER_TLS_KEY_FILE"`
}

// DatabaseConfig selects and configures the relational store
type DatabaseConfig struct {
	Type                 string `yaml:"type" env:"DATABASE_TYPE"`
	Host                 string `yaml:"host" env:"DATABASE_HOST"`
	Port                 string `yaml:"port" env:"DATABASE_PORT"`
	User                 string `yaml:"user" env:"DATABASE_USER"`
	Password             string `yaml:"password" env:"DATABASE_PASSWORD"` //nolint:gosec // database password
	Name                 string `yaml:"name" env:"DATABASE_NAME"`
	SSLMode              string `yaml:"sslmode" env:"DATABASE_SSL_MODE"`
	SQLitePath           string `yaml:"sqlite_path" env:"DATABASE_SQLITE_PATH"`
	OracleConnectString  string `yaml:"oracle_connect_string" env:"DATABASE_ORACLE_CONNECT_STRING"`
	OracleWalletLocation string `yaml:"oracle_wallet_location" env:"DATABASE_ORACLE_WALLET_LOCATION"`
	AutoMigrate          bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
}

// RedisConfig holds Redis configuration. Redis is optional; when disabled
// the definition cache and token revocation list are not used.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Host      string        `yaml:"host" env:"REDIS_HOST"`
	Port      string        `yaml:"port" env:"REDIS_PORT"`
	Password  string        `yaml:"password" env:"REDIS_PASSWORD"` //nolint:gosec // redis password
	DB        int           `yaml:"db" env:"REDIS_DB"`
	KeyPrefix string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"REDIS_CACHE_TTL"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// Required rejects requests without a valid bearer token.
	Required bool      `yaml:"required" env:"AUTH_REQUIRED"`
	JWT      JWTConfig `yaml:"jwt"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"` //nolint:gosec // signing key
	Issuer            string `yaml:"issuer" env:"JWT_ISSUER"`
	ExpirationSeconds int    `yaml:"expiration_seconds" env:"JWT_EXPIRATION_SECONDS"`
	SigningMethod     string `yaml:"signing_method" env:"JWT_SIGNING_METHOD"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level            string `yaml:"level" env:"LOGGING_LEVEL"`
	IsDev            bool   `yaml:"is_dev" env:"LOGGING_IS_DEV"`
	IsTest           bool   `yaml:"is_test" env:"LOGGING_IS_TEST"`
	LogDir           string `yaml:"log_dir" env:"LOGGING_LOG_DIR"`
	MaxAgeDays       int    `yaml:"max_age_days" env:"LOGGING_MAX_AGE_DAYS"`
	MaxSizeMB        int    `yaml:"max_size_mb" env:"LOGGING_MAX_SIZE_MB"`
	MaxBackups       int    `yaml:"max_backups" env:"LOGGING_MAX_BACKUPS"`
	AlsoLogToConsole bool   `yaml:"also_log_to_console" env:"LOGGING_ALSO_LOG_TO_CONSOLE"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName       string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	ServiceVersion    string  `yaml:"service_version" env:"OTEL_SERVICE_VERSION"`
	Environment       string  `yaml:"environment" env:"OTEL_ENVIRONMENT"`
	TracingEnabled    bool    `yaml:"tracing_enabled" env:"OTEL_TRACING_ENABLED"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate" env:"OTEL_TRACING_SAMPLE_RATE"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ConsoleExporter   bool    `yaml:"console_exporter" env:"OTEL_CONSOLE_EXPORTER"`
	MetricsEnabled    bool    `yaml:"metrics_enabled" env:"OTEL_METRICS_ENABLED"`
}

// EventsConfig holds schema change event publishing configuration
type EventsConfig struct {
	// NATSURL enables publishing when set, e.g. nats://localhost:4222
	NATSURL       string `yaml:"nats_url" env:"EVENTS_NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" env:"EVENTS_SUBJECT_PREFIX"`
}

// SecretsConfig selects the provider used to resolve credentials
type SecretsConfig struct {
	Provider      string `yaml:"provider" env:"SECRETS_PROVIDER"`
	AWSRegion     string `yaml:"aws_region" env:"SECRETS_AWS_REGION"`
	AWSSecretName string `yaml:"aws_secret_name" env:"SECRETS_AWS_SECRET_NAME"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load(configFile string) (*Config, error) {
	config := getDefaultConfig()

	if configFile != "" {
		if err := loadFromYAML(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from YAML: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, fmt.Errorf("failed to override with environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// getDefaultConfig returns a configuration with default values
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Interface:       "0.0.0.0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Type:        "sqlite",
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Name:        "personnel",
			SSLMode:     "disable",
			SQLitePath:  "personnel.db",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      "6379",
			KeyPrefix: "personnel",
			CacheTTL:  5 * time.Minute,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Issuer:            "personnel",
				ExpirationSeconds: 3600,
				SigningMethod:     "HS256",
			},
		},
		Logging: LoggingConfig{
			Level:            "info",
			IsDev:            true,
			LogDir:           "logs",
			MaxAgeDays:       7,
			MaxSizeMB:        100,
			MaxBackups:       10,
			AlsoLogToConsole: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:       "personnel-api",
			ServiceVersion:    "1.0.0",
			Environment:       "development",
			TracingSampleRate: 1.0,
			MetricsEnabled:    true,
		},
		Events: EventsConfig{
			SubjectPrefix: "personnel",
		},
		Secrets: SecretsConfig{
			Provider: "env",
		},
	}
}

// loadFromYAML loads configuration from a YAML file
func loadFromYAML(config *Config, filename string) error {
	data, err := os.ReadFile(filename) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// overrideWithEnv overrides configuration values with environment variables
func overrideWithEnv(config *Config) error {
	return overrideStructWithEnv(reflect.ValueOf(config).Elem())
}

// overrideStructWithEnv recursively overrides struct fields with environment variables
func overrideStructWithEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := overrideStructWithEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue, ok := envutil.Lookup(envTag)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldFromString(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromString sets a struct field value from a string based on the field type
func setFieldFromString(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value: %s", value)
		}
		field.SetBool(boolVal)
	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid int value: %s", value)
		}
		field.SetInt(int64(intVal))
	case reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int64 value: %s", value)
			}
			field.SetInt(intVal)
		}
	case reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(floatVal)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

var supportedDatabases = []string{"postgres", "mysql", "sqlserver", "sqlite", "oracle"}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if c.Server.TLSEnabled && (c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("tls cert and key files are required when tls is enabled"))
	}

	if !contains(supportedDatabases, c.Database.Type) {
		errs = append(errs, fmt.Errorf("unsupported database type %q", c.Database.Type))
	}
	switch c.Database.Type {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path is required"))
		}
	case "oracle":
		if c.Database.OracleConnectString == "" {
			errs = append(errs, errors.New("oracle connect string is required"))
		}
	default:
		if c.Database.Host == "" || c.Database.Port == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database host, port and name are required"))
		}
	}

	if c.Redis.Enabled && (c.Redis.Host == "" || c.Redis.Port == "") {
		errs = append(errs, errors.New("redis host and port are required when redis is enabled"))
	}

	if c.Auth.Required && c.Auth.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt secret is required when auth is required"))
	}
	if c.Auth.JWT.ExpirationSeconds <= 0 {
		errs = append(errs, errors.New("jwt expiration must be greater than 0"))
	}
	if c.Auth.JWT.SigningMethod != "HS256" {
		errs = append(errs, fmt.Errorf("unsupported jwt signing method %q", c.Auth.JWT.SigningMethod))
	}

	if c.Telemetry.TracingSampleRate < 0 || c.Telemetry.TracingSampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing sample rate must be between 0.0 and 1.0, got %f", c.Telemetry.TracingSampleRate))
	}

	switch c.Secrets.Provider {
	case "", "env":
	case "aws":
		if c.Secrets.AWSRegion == "" || c.Secrets.AWSSecretName == "" {
			errs = append(errs, errors.New("aws secrets provider requires region and secret name"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown secrets provider %q", c.Secrets.Provider))
	}

	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// IsTestMode returns true if running in test mode
func (c *Config) IsTestMode() bool {
	return c.Logging.IsTest || flag.Lookup("test.v") != nil
}

// GetJWTDuration returns the JWT expiration duration
func (c *Config) GetJWTDuration() time.Duration {
	return time.Duration(c.Auth.JWT.ExpirationSeconds) * time.Second
}

// GetLogLevel returns the parsed log level
func (c *Config) GetLogLevel() slogging.LogLevel {
	return slogging.ParseLogLevel(c.Logging.Level)
}

// LoggerConfig converts the logging section for slogging.Initialize
func (c *Config) LoggerConfig() slogging.Config {
	return slogging.Config{
		Level:            c.GetLogLevel(),
		IsDev:            c.Logging.IsDev,
		LogDir:           c.Logging.LogDir,
		MaxAgeDays:       c.Logging.MaxAgeDays,
		MaxSizeMB:        c.Logging.MaxSizeMB,
		MaxBackups:       c.Logging.MaxBackups,
		AlsoLogToConsole: c.Logging.AlsoLogToConsole,
	}
}

// ListenAddress returns interface:port
func (c *Config) ListenAddress() string {
	return c.Server.Interface + ":" + c.Server.Port
}

// ExampleYAML renders the default configuration as YAML
func ExampleYAML() ([]byte, error) {
	return yaml.Marshal(getDefaultConfig())
}
