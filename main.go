package main

import (
	"fmt"
	"os"

	"github.com/newsportal/reader/cmd"
	"github.com/newsportal/reader/cmd/status"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/logging"
)

// buildDate and version are set at build time with -ldflags
var (
	buildDate string
	version   string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	logging.Init()

	settings := &conf.Settings{Version: version, BuildDate: buildDate}
	rootCmd := cmd.RootCommand(settings)

	if err := rootCmd.Execute(); err != nil {
		// status has already printed its result
		if errors.Is(err, status.ErrUnavailable) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
