// internal/httpcontroller/handlers/handlers.go

// Package handlers implements the page handlers of the web front end.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/logging"
	"github.com/newsportal/reader/internal/render"
	"github.com/newsportal/reader/internal/session"
)

// CSRFContextKey is the key used to store the CSRF token in the context
const CSRFContextKey = "reader-csrf"

// SessionStore resolves the view state of a request's browser session.
type SessionStore interface {
	Get(w http.ResponseWriter, r *http.Request) (*session.View, error)
	Count() int
}

// TagLister fetches the tag index.
type TagLister interface {
	ListTags(ctx context.Context) ([]blogapi.Tag, error)
}

// Handlers holds the dependencies of the page handlers.
type Handlers struct {
	Settings  *conf.Settings
	Sessions  SessionStore
	Tags      TagLister
	Renderer  *render.Renderer
	Telemetry *TelemetryMiddleware
	logger    *slog.Logger
}

// New creates a new Handlers instance with the given dependencies.
func New(settings *conf.Settings, sessions SessionStore, tags TagLister, renderer *render.Renderer, telemetry *TelemetryMiddleware) *Handlers {
	return &Handlers{
		Settings:  settings,
		Sessions:  sessions,
		Tags:      tags,
		Renderer:  renderer,
		Telemetry: telemetry,
		logger:    logging.ForService("web").With("component", "handlers"),
	}
}

// HandlerError is a custom error type that includes an HTTP status code and a user-friendly message.
type HandlerError struct {
	Err     error
	Message string
	Code    int
}

// Error implements the error interface for HandlerError.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// NewHandlerError creates a new HandlerError and logs it.
func (h *Handlers) NewHandlerError(err error, message string, code int) *HandlerError {
	he := &HandlerError{Err: err, Message: message, Code: code}
	h.logger.Error("handler error", "message", message, "code", code, "error", err)
	return he
}

// HandleError renders err as an error page. It is also installed as Echo's
// HTTP error handler, so routing and CSRF failures render the same way.
func (h *Handlers) HandleError(err error, c echo.Context) error {
	var he *HandlerError
	var echoHTTPError *echo.HTTPError
	var enhancedErr *errors.EnhancedError

	switch {
	case errors.As(err, &he):
	case errors.As(err, &echoHTTPError):
		he = &HandlerError{
			Err:     echoHTTPError,
			Message: fmt.Sprintf("%v", echoHTTPError.Message),
			Code:    echoHTTPError.Code,
		}
	case errors.As(err, &enhancedErr):
		he = &HandlerError{
			Err:     enhancedErr,
			Message: http.StatusText(mapCategoryToHTTPStatus(enhancedErr.GetCategory())),
			Code:    mapCategoryToHTTPStatus(enhancedErr.GetCategory()),
		}
	default:
		he = &HandlerError{
			Err:     err,
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		}
	}

	if c.Response().Committed {
		return nil
	}

	if he.Code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Request().URL.Path, "code", he.Code, "error", he.Err)
	}

	message := he.Message
	if he.Code == http.StatusNotFound {
		message = h.Renderer.T(render.MsgPageNotFound)
	}

	data := h.pageData(c, "error", fmt.Sprintf("%d", he.Code))
	data.Error = &ErrorView{Code: he.Code, Message: message}
	if h.Settings != nil && h.Settings.Debug {
		data.Error.Detail = he.Error()
	}

	if isHTMX(c) {
		return h.renderTemplate(c, he.Code, "errorContent", data)
	}
	return h.renderTemplate(c, he.Code, "root", data)
}

// mapCategoryToHTTPStatus maps error categories to appropriate HTTP status codes
func mapCategoryToHTTPStatus(category errors.ErrorCategory) int {
	switch category {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryNetwork, errors.CategoryHTTP, errors.CategoryParsing:
		return http.StatusBadGateway
	case errors.CategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WithErrorHandling wraps an Echo handler function with error handling.
func (h *Handlers) WithErrorHandling(fn func(echo.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := fn(c)
		if err != nil {
			return h.HandleError(err, c)
		}
		return nil
	}
}

// renderTemplate renders a template and records its duration.
func (h *Handlers) renderTemplate(c echo.Context, code int, name string, data *RenderData) error {
	start := time.Now()
	err := c.Render(code, name, data)
	if h.Telemetry != nil {
		h.Telemetry.RecordTemplateRender(name, time.Since(start), err)
	}
	if err != nil {
		return errors.New(err).
			Component("http-controller").
			Category(errors.CategoryTemplate).
			Context("template", name).
			Build()
	}
	return nil
}

// observe records a controller operation.
func (h *Handlers) observe(handler, operation string, start time.Time, err error) {
	if h.Telemetry != nil {
		h.Telemetry.RecordHandlerOperation(handler, operation, time.Since(start), err)
	}
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") != ""
}
