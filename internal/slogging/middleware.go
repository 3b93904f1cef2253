package slogging

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware returns a Gin middleware for logging requests using slog
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := Get().WithContext(c)
		c.Set(loggerKey, logger)

		logger.DebugCtx("Request started",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("user_agent", c.GetHeader("User-Agent")),
		)

		start := time.Now()
		c.Next()

		statusCode := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status_code", statusCode),
			slog.Duration("duration", time.Since(start)),
			slog.Int64("response_size", int64(c.Writer.Size())),
		}
		if user, ok := c.Get(UserKey); ok {
			attrs = append(attrs, slog.Any("user", user))
		}

		switch {
		case statusCode >= 500:
			logger.ErrorCtx("Request completed with server error", attrs...)
		case statusCode >= 400:
			logger.WarnCtx("Request completed with client error", attrs...)
		default:
			logger.InfoCtx("Request completed successfully", attrs...)
		}
	}
}

// Recoverer creates middleware for recovering from panics using slog
func Recoverer() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				var logger *ContextLogger
				if l, ok := c.Get(loggerKey); ok {
					logger, _ = l.(*ContextLogger)
				}
				if logger == nil {
					logger = Get().WithContext(c)
				}

				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)

				logger.ErrorCtx("Panic recovered",
					slog.Any("panic_value", err),
					slog.String("stack_trace", string(buf[:n])),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":             "server_error",
					"error_description": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
