// config.go: settings struct for the reader and functions to load and save it.
package conf

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// APIConfig describes the blog backend the reader consumes.
type APIConfig struct {
	BaseURL   string        // base address of the blog API, without trailing slash
	Timeout   time.Duration // per request timeout
	UserAgent string        // User-Agent header for outbound requests
	RateLimit float64       // outbound requests per second, 0 disables pacing
	Burst     int           // burst size for the rate limiter
}

// WebServerSettings contains settings for the HTML front end.
type WebServerSettings struct {
	Debug  bool      // true to enable debug mode
	Listen string    // listen address, e.g. ":8080"
	Log    LogConfig // logging configuration for web server
}

// SessionSettings controls per-browser view state.
type SessionSettings struct {
	CookieName string        // name of the session cookie
	TTL        time.Duration // idle expiry of server-side view state
	Secret     string        // cookie signing secret
	Secure     bool          // true to mark the cookie Secure
}

// UISettings controls presentation.
type UISettings struct {
	Locale     string // UI language, en or ru
	TimeZone   string // IANA zone used for timestamps, "Local" for host zone
	TimeFormat string // Go time layout for timestamps
	SiteTitle  string // title shown in the page header
}

// TelemetrySettings controls the Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to enable the metrics endpoint
	Listen  string // listen address for the metrics endpoint
}

// SentrySettings controls error reporting.
type SentrySettings struct {
	Enabled     bool   // true to forward enhanced errors to Sentry
	DSN         string // Sentry DSN
	Environment string // Sentry environment tag
}

// Settings is the complete reader configuration.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"`
	BuildDate string `yaml:"-"`

	Main struct {
		Name string    // instance name
		Log  LogConfig // logging configuration
	}

	API       APIConfig
	WebServer WebServerSettings
	Session   SessionSettings
	UI        UISettings
	Telemetry TelemetrySettings
	Sentry    SentrySettings
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // Path to the log file
	Rotation RotationType // Type of log rotation
	MaxSize  int64        // Max size in bytes for RotationSize
	Compress bool         // true to gzip rotated files
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
	configFile       string
)

// SetConfigFile makes Load read the given file instead of searching the default paths.
func SetConfigFile(path string) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	configFile = path
}

// Load reads the configuration file and environment variables into the settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settings.API.BaseURL = strings.TrimRight(strings.TrimSpace(settings.API.BaseURL), "/")

	// Without a stored secret sessions still work, but do not survive a restart
	if settings.Session.Secret == "" {
		settings.Session.Secret = GenerateRandomSecret()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")
	defaultConfig := strings.Replace(getDefaultConfig(),
		`secret: ""`, fmt.Sprintf("secret: %q", GenerateRandomSecret()), 1)

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance, nil before Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading it on first use.
// A configuration that fails to load is fatal.
func Setting() *Settings {
	once.Do(func() {
		if GetSettings() == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig writes settings to configPath atomically.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := MarshalYAML(settings)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}

// MarshalYAML renders settings as YAML.
func MarshalYAML(settings *Settings) ([]byte, error) {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return yamlData, nil
}

// Redacted returns a copy of settings with secrets masked, for display.
func (s *Settings) Redacted() *Settings {
	c := *s
	if c.Session.Secret != "" {
		c.Session.Secret = "[REDACTED]"
	}
	if c.Sentry.DSN != "" {
		c.Sentry.DSN = "[REDACTED]"
	}
	return &c
}

// GenerateRandomSecret generates a URL-safe base64 encoded random string
// suitable for use as a cookie secret. The output is 43 characters long,
// providing 256 bits of entropy.
func GenerateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("Failed to generate random secret: %v", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// Location resolves the configured UI time zone.
func (s *UISettings) Location() *time.Location {
	if s.TimeZone == "" || strings.EqualFold(s.TimeZone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
