package http

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/orderbook/pkg/errorbank"
)

// RequestLogger logs one line per request. Requests slower than threshold
// are logged at warn, server errors at error, everything else at info.
// Register it before Recover so panics are logged as 500s.
func RequestLogger(logger *zap.Logger, threshold time.Duration) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slow := threshold > 0 && v.Latency >= threshold

			level := zapcore.InfoLevel
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case slow:
				level = zapcore.WarnLevel
			}

			if ce := logger.Check(level, "http request"); ce != nil {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("route", v.RoutePath),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("duration", v.Latency),
					zap.Bool("slow", slow),
				}
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				ce.Write(fields...)
			}
			return nil
		},
	})
}

// Recover turns handler panics into opaque 500s. The panic value and stack
// only go to the log.
func Recover(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.Error(err),
				zap.String("route", c.Path()),
				zap.ByteString("stack", stack),
			)
			return errorbank.Internal("internal error", errorbank.WithCause(err))
		},
	})
}
