// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "READER_DEBUG", validateEnvBool},

		// Blog API
		{"api.baseurl", "READER_API_BASEURL", validateEnvURL},
		{"api.timeout", "READER_API_TIMEOUT", validateEnvDuration},
		{"api.ratelimit", "READER_API_RATELIMIT", validateEnvRate},

		// Web front end
		{"webserver.listen", "READER_WEBSERVER_LISTEN", nil},
		{"webserver.debug", "READER_WEBSERVER_DEBUG", validateEnvBool},
		{"session.secret", "READER_SESSION_SECRET", nil},
		{"session.ttl", "READER_SESSION_TTL", validateEnvDuration},
		{"session.secure", "READER_SESSION_SECURE", validateEnvBool},

		// Presentation
		{"ui.locale", "READER_UI_LOCALE", validateEnvLocale},
		{"ui.timezone", "READER_UI_TIMEZONE", validateEnvTimeZone},

		// Observability
		{"telemetry.enabled", "READER_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.listen", "READER_TELEMETRY_LISTEN", nil},
		{"sentry.enabled", "READER_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "READER_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is missing")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration, expected a value like 10s or 30m")
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

func validateEnvRate(value string) error {
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number")
	}
	if rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	return nil
}

func validateEnvLocale(value string) error {
	if _, err := NormalizeLocale(value); err != nil {
		return err
	}
	return nil
}

func validateEnvTimeZone(value string) error {
	if strings.EqualFold(value, "local") {
		return nil
	}
	_, err := time.LoadLocation(value)
	return err
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars()
}
