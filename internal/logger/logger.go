package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const correlationHeader = "X-Correlation-ID"

type contextKey string

const correlationContextKey contextKey = "docvaultCorrelationID"

var global *zap.Logger = zap.NewNop()

// Init builds the process-wide zap logger. The level is taken from the
// LOG_LEVEL environment variable (debug, info, warn, error), defaulting to info.
func Init() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	global = logg
	return logg, nil
}

// L returns the process-wide logger. Safe to call before Init; it falls back
// to a no-op logger.
func L() *zap.Logger {
	return global
}

// Middleware attaches a correlation id to each request (honoring an incoming
// X-Correlation-ID header) and logs the request outcome.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(string(correlationContextKey), id)
		c.Header(correlationHeader, id)

		start := time.Now()
		c.Next()

		global.Info("http request",
			zap.String("correlation_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// CorrelationID returns the request's correlation id, or "" when the
// middleware did not run.
func CorrelationID(c *gin.Context) string {
	value, exists := c.Get(string(correlationContextKey))
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}
