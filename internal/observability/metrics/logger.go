// Package metrics provides Prometheus collectors for the reader's components.
package metrics

import (
	"log/slog"

	"github.com/newsportal/reader/internal/logging"
)

func logger() *slog.Logger {
	return logging.ForService("telemetry")
}
