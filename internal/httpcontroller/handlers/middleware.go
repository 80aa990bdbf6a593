package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/observability/metrics"
)

// TelemetryMiddleware provides HTTP request telemetry
type TelemetryMiddleware struct {
	httpMetrics *metrics.HTTPMetrics
	sessions    func() int
}

// NewTelemetryMiddleware creates a new telemetry middleware instance. Both
// arguments may be nil.
func NewTelemetryMiddleware(httpMetrics *metrics.HTTPMetrics, sessionCount func() int) *TelemetryMiddleware {
	return &TelemetryMiddleware{
		httpMetrics: httpMetrics,
		sessions:    sessionCount,
	}
}

// Middleware returns the Echo middleware function
func (tm *TelemetryMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tm.httpMetrics == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			duration := time.Since(start).Seconds()

			path := normalizePath(c.Path())
			method := c.Request().Method

			statusCode := c.Response().Status
			if statusCode == 0 {
				statusCode = 200
			}

			tm.httpMetrics.RecordHTTPRequest(method, path, statusCode, duration)
			tm.httpMetrics.RecordHTTPResponseSize(method, path, c.Response().Size)
			if err != nil {
				tm.httpMetrics.RecordHTTPRequestError(method, path, categorizeError(err))
			}
			if tm.sessions != nil {
				tm.httpMetrics.SetActiveSessions(tm.sessions())
			}

			return err
		}
	}
}

// RecordTemplateRender records template rendering metrics
func (tm *TelemetryMiddleware) RecordTemplateRender(name string, duration time.Duration, err error) {
	if tm.httpMetrics == nil {
		return
	}
	tm.httpMetrics.RecordTemplateRender(name, duration.Seconds())
	if err != nil {
		tm.httpMetrics.RecordTemplateRenderError(name, "execution")
	}
}

// RecordHandlerOperation records a controller operation driven by a handler
func (tm *TelemetryMiddleware) RecordHandlerOperation(handler, operation string, duration time.Duration, err error) {
	if tm.httpMetrics == nil {
		return
	}
	status := metrics.OutcomeSuccess
	if err != nil {
		status = metrics.OutcomeError
	}
	tm.httpMetrics.RecordHandlerOperation(handler, operation, status, duration.Seconds())
}

// normalizePath keeps metric labels bounded. Echo reports the route pattern,
// so only unmatched requests need folding.
func normalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}

// categorizeError categorizes errors for metrics
func categorizeError(err error) string {
	var enhancedErr *errors.EnhancedError
	if errors.As(err, &enhancedErr) {
		return string(enhancedErr.GetCategory())
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch {
		case echoErr.Code == 403:
			return "csrf"
		case echoErr.Code == 404:
			return "not_found"
		case echoErr.Code < 500:
			return "client"
		default:
			return "system"
		}
	}

	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return "handler"
	}

	return "unknown"
}
