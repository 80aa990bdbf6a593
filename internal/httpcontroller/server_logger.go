package httpcontroller

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/logging"
)

// initLogger opens the web log file. When file logging is disabled or fails
// the shared structured logger is used instead.
func (s *Server) initLogger() {
	s.discardEchoLogger()

	logCfg := s.Settings.WebServer.Log
	if !logCfg.Enabled || logCfg.Path == "" {
		return
	}

	level := new(slog.LevelVar)
	if s.Settings.WebServer.Debug || s.Settings.Debug {
		level.Set(slog.LevelDebug)
	}

	webLogger, closeFunc, err := logging.NewFileLogger(logCfg.Path, "web", level)
	if err != nil {
		logging.ForService("web").Warn("failed to initialize web file logger, using default logger",
			"path", logCfg.Path, "error", err)
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFunc
}

// LoggingMiddleware logs every completed request with its latency and size.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", ctx.Path(),
				"status", res.Status,
				"ip", ctx.RealIP(),
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_out", res.Size,
			}
			if requestID := res.Header().Get(echo.HeaderXRequestID); requestID != "" {
				attrs = append(attrs, "request_id", requestID)
			}
			if ctx.Request().Header.Get("HX-Request") != "" {
				attrs = append(attrs, "htmx", true)
			}

			logger := s.logger()
			switch {
			case err != nil:
				attrs = append(attrs, "error", err.Error())
				logger.Error("HTTP Request", attrs...)
			case res.Status >= 500:
				logger.Error("HTTP Request", attrs...)
			case res.Status >= 400:
				logger.Warn("HTTP Request", attrs...)
			default:
				logger.Info("HTTP Request", attrs...)
			}

			return err
		}
	}
}
