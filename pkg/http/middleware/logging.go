package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	applogger "CoinPulse/pkg/logger"
)

// RequestLogging logs one line per request. Server errors log at warn, the
// rest at debug. Health probes are skipped.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		Skipper:     func(c echo.Context) bool { return c.Path() == "/healthz" },
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			fields := []applogger.Field{
				applogger.String("method", v.Method),
				applogger.String("uri", v.URI),
				applogger.String("remote", v.RemoteIP),
				applogger.Int("status", v.Status),
				applogger.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, applogger.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError || v.Error != nil {
				l.Warn("http request", fields...)
				return nil
			}
			l.Debug("http request", fields...)
			return nil
		},
	})
}
