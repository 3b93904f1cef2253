package telemetry

import (
	"fmt"
	"strings"

	"github.com/ericfitz/personnel/internal/config"
)

// Config holds configuration options for OpenTelemetry
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	TracingEnabled    bool
	TracingSampleRate float64
	// OTLPEndpoint is host:port of a gRPC collector; empty disables OTLP export
	OTLPEndpoint    string
	ConsoleExporter bool

	MetricsEnabled bool
}

// FromRuntimeConfig builds the telemetry configuration from the application config
func FromRuntimeConfig(tc config.TelemetryConfig) *Config {
	return &Config{
		ServiceName:       tc.ServiceName,
		ServiceVersion:    tc.ServiceVersion,
		Environment:       tc.Environment,
		TracingEnabled:    tc.TracingEnabled,
		TracingSampleRate: tc.TracingSampleRate,
		OTLPEndpoint:      stripScheme(tc.OTLPEndpoint),
		ConsoleExporter:   tc.ConsoleExporter,
		MetricsEnabled:    tc.MetricsEnabled,
	}
}

func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	return strings.TrimPrefix(endpoint, "https://")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if c.TracingSampleRate < 0.0 || c.TracingSampleRate > 1.0 {
		return fmt.Errorf("tracing sample rate must be between 0.0 and 1.0, got %f", c.TracingSampleRate)
	}
	return nil
}

// IsProduction returns true if this is a production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
