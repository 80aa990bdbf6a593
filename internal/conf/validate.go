// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrMissingBaseURL is returned when no blog API address is configured.
var ErrMissingBaseURL = errors.New("api base URL is not configured, set api.baseurl or READER_API_BASEURL")

// SupportedLocales lists the UI languages with message catalogs.
var SupportedLocales = []language.Tag{language.English, language.Russian}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateAPISettings(&settings.API); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSessionSettings(&settings.Session); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateUISettings(&settings.UI); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "Sentry DSN is required when Sentry is enabled")
	}

	if settings.Telemetry.Enabled && settings.Telemetry.Listen == "" {
		ve.Errors = append(ve.Errors, "telemetry listen address is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateAPISettings checks the blog API settings. An empty base URL passes,
// RequireBaseURL enforces it where the API is used.
func validateAPISettings(settings *APIConfig) error {
	if settings.BaseURL != "" {
		if err := validateEnvURL(settings.BaseURL); err != nil {
			return fmt.Errorf("invalid api base URL %q: %w", settings.BaseURL, err)
		}
	}

	if settings.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", settings.Timeout)
	}

	if settings.RateLimit < 0 {
		return fmt.Errorf("api rate limit must not be negative, got %v", settings.RateLimit)
	}

	if settings.RateLimit > 0 && settings.Burst < 1 {
		return fmt.Errorf("api burst must be at least 1 when rate limiting, got %d", settings.Burst)
	}

	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	if settings.Listen == "" {
		return errors.New("webserver listen address is required")
	}
	return nil
}

func validateSessionSettings(settings *SessionSettings) error {
	if settings.CookieName == "" {
		return errors.New("session cookie name is required")
	}
	if settings.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", settings.TTL)
	}
	return nil
}

func validateUISettings(settings *UISettings) error {
	locale, err := NormalizeLocale(settings.Locale)
	if err != nil {
		return err
	}
	settings.Locale = locale

	if err := validateEnvTimeZone(settings.TimeZone); settings.TimeZone != "" && err != nil {
		return fmt.Errorf("invalid ui time zone %q: %w", settings.TimeZone, err)
	}

	if settings.TimeFormat == "" {
		return errors.New("ui time format is required")
	}

	return nil
}

// NormalizeLocale maps a user supplied locale such as "ru-RU" onto a supported UI language.
func NormalizeLocale(inputLocale string) (string, error) {
	trimmed := strings.TrimSpace(inputLocale)
	if trimmed == "" {
		return "", errors.New("locale is required")
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", inputLocale, err)
	}

	base, _ := tag.Base()
	for _, supported := range SupportedLocales {
		if supportedBase, _ := supported.Base(); supportedBase == base {
			return supported.String(), nil
		}
	}

	return "", fmt.Errorf("unsupported locale %q, supported: en, ru", inputLocale)
}

// RequireBaseURL returns ErrMissingBaseURL when the API address is empty.
func (s *Settings) RequireBaseURL() error {
	if s.API.BaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}
