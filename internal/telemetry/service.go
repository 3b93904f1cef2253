package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ericfitz/personnel/internal/slogging"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Service manages OpenTelemetry providers and the Prometheus registry
type Service struct {
	config *Config

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *promclient.Registry

	tracer trace.Tracer
	meter  metric.Meter

	resource *resource.Resource
}

// NewService creates a new telemetry service
func NewService(ctx context.Context, config *Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	s := &Service{
		config: config,
		tracer: noop.NewTracerProvider().Tracer(config.ServiceName),
		meter:  otel.Meter(config.ServiceName),
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		resource.Default().SchemaURL(),
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
		attribute.String("deployment.environment", config.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to merge resource: %w", err)
	}
	s.resource = res

	if config.TracingEnabled {
		if err := s.initTracing(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if config.MetricsEnabled {
		if err := s.initMetrics(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return s, nil
}

func (s *Service) initTracing(ctx context.Context) error {
	var exporters []sdktrace.SpanExporter

	if s.config.ConsoleExporter {
		consoleExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create console trace exporter: %w", err)
		}
		exporters = append(exporters, consoleExporter)
	}

	if s.config.OTLPEndpoint != "" {
		otlpExporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(s.config.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		exporters = append(exporters, otlpExporter)
	}

	if len(exporters) == 0 {
		return fmt.Errorf("no trace exporters configured")
	}

	var sampler sdktrace.Sampler
	switch rate := s.config.TracingSampleRate; {
	case rate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case rate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(rate)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(s.resource),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}
	for _, exporter := range exporters {
		if s.config.IsProduction() {
			opts = append(opts, sdktrace.WithBatcher(exporter))
		} else {
			opts = append(opts, sdktrace.WithSyncer(exporter))
		}
	}

	s.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(s.tracerProvider)
	s.tracer = s.tracerProvider.Tracer(s.config.ServiceName,
		trace.WithInstrumentationVersion(s.config.ServiceVersion))

	slogging.Get().Info("Tracing initialized with %d exporters, sample rate %.2f", len(exporters), s.config.TracingSampleRate)
	return nil
}

func (s *Service) initMetrics(ctx context.Context) error {
	s.registry = promclient.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	promExporter, err := prometheus.New(prometheus.WithRegisterer(s.registry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(s.resource),
		sdkmetric.WithReader(promExporter),
	}

	if s.config.OTLPEndpoint != "" {
		otlpExporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(s.config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(otlpExporter)))
	}

	s.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(s.meterProvider)
	s.meter = s.meterProvider.Meter(s.config.ServiceName,
		metric.WithInstrumentationVersion(s.config.ServiceVersion))
	return nil
}

// Tracer returns the service tracer
func (s *Service) Tracer() trace.Tracer {
	return s.tracer
}

// Meter returns the service meter
func (s *Service) Meter() metric.Meter {
	return s.meter
}

// ServiceName returns the configured service name
func (s *Service) ServiceName() string {
	return s.config.ServiceName
}

// MetricsHandler serves the Prometheus exposition format. It returns
// 404 when metrics are disabled.
func (s *Service) MetricsHandler() http.Handler {
	if s.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops all providers
func (s *Service) Shutdown(ctx context.Context) error {
	var errs []error
	if s.tracerProvider != nil {
		if err := s.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if s.meterProvider != nil {
		if err := s.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HealthStatus represents the health status of the telemetry service
type HealthStatus struct {
	TracingEnabled bool   `json:"tracing_enabled"`
	MetricsEnabled bool   `json:"metrics_enabled"`
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
}

// Health reports which providers are running
func (s *Service) Health() HealthStatus {
	return HealthStatus{
		TracingEnabled: s.tracerProvider != nil,
		MetricsEnabled: s.meterProvider != nil,
		ServiceName:    s.config.ServiceName,
		ServiceVersion: s.config.ServiceVersion,
	}
}
