// internal/httpcontroller/server.go

// Package httpcontroller serves the reader's HTML front end.
package httpcontroller

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/feed"
	"github.com/newsportal/reader/internal/httpcontroller/handlers"
	"github.com/newsportal/reader/internal/logging"
	"github.com/newsportal/reader/internal/observability"
	"github.com/newsportal/reader/internal/render"
	"github.com/newsportal/reader/internal/session"
)

// BlogSource is the blog API as used by the front end.
type BlogSource interface {
	feed.PostSource
	handlers.TagLister
}

// Server encapsulates Echo server and related configurations.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Handlers *handlers.Handlers
	Renderer *render.Renderer
	Sessions *session.Store
	Metrics  *observability.Metrics // nil when telemetry is disabled

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New builds the server. metrics may be nil. A template set without the
// root layout is reported as an error.
func New(settings *conf.Settings, source BlogSource, metrics *observability.Metrics) (*Server, error) {
	configureDefaultSettings(settings)

	sessions, err := session.NewStore(session.ConfigFromSettings(&settings.Session), source)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Renderer: render.New(render.OptionsFromSettings(&settings.UI)),
		Sessions: sessions,
		Metrics:  metrics,
	}

	var telemetry *handlers.TelemetryMiddleware
	if metrics != nil {
		telemetry = handlers.NewTelemetryMiddleware(metrics.HTTP, sessions.Count)
	} else {
		telemetry = handlers.NewTelemetryMiddleware(nil, nil)
	}
	s.Handlers = handlers.New(settings, sessions, source, s.Renderer, telemetry)

	if err := s.initializeServer(); err != nil {
		s.closeLogger()
		return nil, err
	}
	return s, nil
}

// initializeServer configures and initializes the server.
func (s *Server) initializeServer() error {
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.Echo.HTTPErrorHandler = func(err error, c echo.Context) {
		if renderErr := s.Handlers.HandleError(err, c); renderErr != nil {
			s.logger().Error("failed to render error page", "error", renderErr)
			if !c.Response().Committed {
				_ = c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
		}
	}

	s.initLogger()
	if err := s.setupTemplateRenderer(); err != nil {
		return err
	}
	s.configureMiddleware()
	s.initRoutes()
	return nil
}

// Start begins serving in the background. The returned channel receives the
// error that stopped the listener, http.ErrServerClosed after Shutdown.
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		s.logger().Info("HTTP server starting", "address", s.Settings.WebServer.Listen)
		errChan <- s.Echo.Start(s.Settings.WebServer.Listen)
	}()

	return errChan
}

// Shutdown gracefully stops the server and closes the web log.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	s.closeLogger()
	if err != nil {
		return errors.New(err).
			Component("http-controller").
			Category(errors.CategoryState).
			Context("operation", "shutdown").
			Build()
	}
	return nil
}

// configureDefaultSettings sets default values for server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Listen == "" {
		settings.WebServer.Listen = ":8080"
	}
}

func (s *Server) logger() *slog.Logger {
	if s.webLogger != nil {
		return s.webLogger
	}
	return logging.ForService("web")
}

func (s *Server) closeLogger() {
	if s.webLoggerClose == nil {
		return
	}
	if err := s.webLoggerClose(); err != nil {
		logging.ForService("web").Warn("failed to close web log", "error", err)
	}
	s.webLoggerClose = nil
}

// discardEchoLogger silences Echo's own logger; requests are logged by middleware.
func (s *Server) discardEchoLogger() {
	s.Echo.Logger.SetOutput(io.Discard)
}
