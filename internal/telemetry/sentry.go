// Package telemetry provides privacy-compliant error tracking through Sentry.
package telemetry

import (
	"fmt"
	"net/url"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/logging"
)

// flushTimeout bounds how long Flush waits for queued events.
const flushTimeout = 2 * time.Second

var sentryInitialized atomic.Bool

// allowedExtra lists the extra fields kept on outgoing events.
var allowedExtra = map[string]bool{
	"error_type": true,
	"component":  true,
	"category":   true,
	"endpoint":   true,
}

var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// InitSentry initializes the Sentry SDK when enabled in settings and routes
// enhanced errors to it. A disabled configuration is not an error.
func InitSentry(settings *conf.Settings) error {
	return initSentry(settings, nil)
}

func initSentry(settings *conf.Settings, transport sentry.Transport) error {
	logger := logging.ForService("telemetry")

	if !settings.Sentry.Enabled {
		logger.Debug("Sentry telemetry is disabled")
		return nil
	}
	if settings.Sentry.DSN == "" {
		return errors.Newf("sentry is enabled but no DSN is configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	release := "reader"
	if settings.Version != "" {
		release = fmt.Sprintf("reader@%s", settings.Version)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		Environment:      settings.Sentry.Environment,
		Release:          release,
		SampleRate:       1.0,
		AttachStacktrace: false,
		ServerName:       "",
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetPrivacyScrubber(ScrubMessage)
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	logger.Info("Sentry telemetry initialized", "environment", settings.Sentry.Environment, "release", release)
	return nil
}

// IsInitialized reports whether InitSentry enabled reporting.
func IsInitialized() bool {
	return sentryInitialized.Load()
}

// Flush waits for queued events to be delivered.
func Flush() {
	if !sentryInitialized.Load() {
		return
	}
	if !sentry.Flush(flushTimeout) {
		logging.ForService("telemetry").Warn("Sentry flush timed out", "timeout", flushTimeout)
	}
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Message = ScrubMessage(event.Message)

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if !allowedExtra[k] {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	for i := range event.Exception {
		event.Exception[i].Value = ScrubMessage(event.Exception[i].Value)
	}

	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Headers = nil
		event.Request.QueryString = ""
	}

	return event
}

// ScrubMessage reduces every URL in message to scheme, host and path.
func ScrubMessage(message string) string {
	return urlPattern.ReplaceAllStringFunc(message, func(raw string) string {
		u, err := url.Parse(raw)
		if err != nil {
			return "[url]"
		}
		u.User = nil
		u.RawQuery = ""
		u.Fragment = ""
		return u.String()
	})
}
