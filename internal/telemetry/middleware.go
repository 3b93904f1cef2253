package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request counts, latency and in-flight requests
type HTTPMetrics struct {
	requestCounter   metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	mb := newMetricBuilder(meter)
	h := &HTTPMetrics{
		requestCounter: mb.Int64Counter("http_requests", "Total number of HTTP requests"),
		requestDuration: mb.Float64Histogram("http_request_duration", "Duration of HTTP requests", "s",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}),
		requestsInFlight: mb.Int64UpDownCounter("http_requests_in_flight", "HTTP requests currently being processed"),
	}
	if err := mb.Error(); err != nil {
		return nil, err
	}
	return h, nil
}

// GinMiddleware records metrics labelled by route template
func (h *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		h.requestsInFlight.Add(ctx, 1)
		defer h.requestsInFlight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		)
		h.requestCounter.Add(ctx, 1, attrs)
		h.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// Middleware returns the tracing and metrics middleware chain for the service
func (s *Service) Middleware() ([]gin.HandlerFunc, error) {
	var chain []gin.HandlerFunc
	if s.tracerProvider != nil {
		chain = append(chain, otelgin.Middleware(s.config.ServiceName,
			otelgin.WithTracerProvider(s.tracerProvider)))
	}
	if s.meterProvider != nil {
		h, err := NewHTTPMetrics(s.meter)
		if err != nil {
			return nil, err
		}
		chain = append(chain, h.GinMiddleware())
	}
	return chain, nil
}
