// internal/httpcontroller/middleware.go
package httpcontroller

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/newsportal/reader/internal/httpcontroller/handlers"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.Echo.Use(s.Handlers.Telemetry.Middleware())
	s.Echo.Use(s.LoggingMiddleware())
	s.Echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
	}))
	s.Echo.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   s.Settings.Session.Secure,
		CookieSameSite: http.SameSiteLaxMode,
		ContextKey:     handlers.CSRFContextKey,
		Skipper:        skipCSRF,
	}))
	s.Echo.Use(s.CacheControlMiddleware())
}

// skipCSRF exempts static assets and the health probe.
func skipCSRF(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/assets/") || path == "/healthz"
}

// CacheControlMiddleware keeps per-session pages out of shared caches and
// marks responses as varying with the HTMX request header.
func (s *Server) CacheControlMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/assets/") {
				h := c.Response().Header()
				h.Set("Cache-Control", "no-store")
				h.Add("Vary", "HX-Request")
			}
			return next(c)
		}
	}
}
