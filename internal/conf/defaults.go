// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "reader")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/reader.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.compress", false)

	viper.SetDefault("api.baseurl", "")
	viper.SetDefault("api.timeout", 10*time.Second)
	viper.SetDefault("api.useragent", "reader/1.0")
	viper.SetDefault("api.ratelimit", 0)
	viper.SetDefault("api.burst", 1)

	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.listen", ":8080")
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)

	viper.SetDefault("session.cookiename", "reader_session")
	viper.SetDefault("session.ttl", 30*time.Minute)
	viper.SetDefault("session.secret", "")
	viper.SetDefault("session.secure", false)

	viper.SetDefault("ui.locale", "en")
	viper.SetDefault("ui.timezone", "Local")
	viper.SetDefault("ui.timeformat", "02.01.2006 15:04")
	viper.SetDefault("ui.sitetitle", "Blog")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")
}
