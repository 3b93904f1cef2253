package slogging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Gin context keys shared with the auth middleware.
const (
	loggerKey = "logger"
	// UserKey holds the authenticated subject.
	UserKey = "userName"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// GinContextLike defines a minimal interface for contexts that can be used with the logger
type GinContextLike interface {
	Get(key any) (any, bool)
	GetHeader(key string) string
	ClientIP() string
}

// GetContextLogger retrieves the request logger or falls back to the global one
func GetContextLogger(c GinContextLike) SimpleLogger {
	if l, exists := c.Get(loggerKey); exists {
		if logger, ok := l.(SimpleLogger); ok {
			return logger
		}
	}
	return Get()
}

// WithContext returns a logger that tags every record with the request id,
// client ip and authenticated user.
func (l *Logger) WithContext(c GinContextLike) *ContextLogger {
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		if setter, ok := c.(interface{ Header(string, string) }); ok {
			setter.Header(RequestIDHeader, requestID)
		}
	}

	userID := ""
	if u, ok := c.Get(UserKey); ok && u != nil {
		userID = fmt.Sprintf("%v", u)
	}

	return &ContextLogger{
		logger: l,
		slogger: l.slogger.With(
			slog.String("request_id", requestID),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_id", userID),
		),
		ctx:       context.Background(),
		requestID: requestID,
	}
}

// ContextLogger adds request context to log messages
type ContextLogger struct {
	logger    *Logger
	slogger   *slog.Logger
	ctx       context.Context
	requestID string
}

// RequestID returns the id attached to this logger.
func (cl *ContextLogger) RequestID() string {
	return cl.requestID
}

func (cl *ContextLogger) logf(level LogLevel, format string, args []any) {
	if cl.logger.level > level {
		return
	}
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	cl.slogger.Log(cl.ctx, level.toSlogLevel(), SanitizeLogMessage(message))
}

func (cl *ContextLogger) Debug(format string, args ...any) { cl.logf(LogLevelDebug, format, args) }

func (cl *ContextLogger) Info(format string, args ...any) { cl.logf(LogLevelInfo, format, args) }

func (cl *ContextLogger) Warn(format string, args ...any) { cl.logf(LogLevelWarn, format, args) }

func (cl *ContextLogger) Error(format string, args ...any) { cl.logf(LogLevelError, format, args) }

// DebugCtx logs a debug message with additional structured attributes
func (cl *ContextLogger) DebugCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelDebug, msg, attrs...)
}

// InfoCtx logs an info message with additional structured attributes
func (cl *ContextLogger) InfoCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelInfo, msg, attrs...)
}

// WarnCtx logs a warning message with additional structured attributes
func (cl *ContextLogger) WarnCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelWarn, msg, attrs...)
}

// ErrorCtx logs an error message with additional structured attributes
func (cl *ContextLogger) ErrorCtx(msg string, attrs ...slog.Attr) {
	cl.slogger.LogAttrs(cl.ctx, slog.LevelError, msg, attrs...)
}

// WithAttrs returns a new ContextLogger with additional attributes
func (cl *ContextLogger) WithAttrs(attrs ...slog.Attr) *ContextLogger {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return &ContextLogger{
		logger:    cl.logger,
		slogger:   cl.slogger.With(args...),
		ctx:       cl.ctx,
		requestID: cl.requestID,
	}
}
