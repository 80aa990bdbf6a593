// Package serve implements the command that runs the web front end.
package serve

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/httpcontroller"
	"github.com/newsportal/reader/internal/logging"
	"github.com/newsportal/reader/internal/observability"
	"github.com/newsportal/reader/internal/telemetry"
)

// shutdownTimeout bounds the graceful shutdown of the web server.
const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog front end",
		Long:  "Start the web front end that reads posts from the blog API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		logging.Error("error setting up flags", "command", "serve", "error", err)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("listen", "", "Listen address of the web front end")
	cmd.Flags().Bool("telemetry", false, "Enable Prometheus telemetry endpoint")
	cmd.Flags().String("telemetry-listen", "", "Listen address of the telemetry endpoint")

	bindings := map[string]string{
		"listen":           "webserver.listen",
		"telemetry":        "telemetry.enabled",
		"telemetry-listen": "telemetry.listen",
	}
	for flag, key := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// Run serves until ctx is cancelled or the process receives SIGINT or SIGTERM.
func Run(ctx context.Context, settings *conf.Settings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.ForService("serve")

	if err := settings.RequireBaseURL(); err != nil {
		return err
	}

	if err := telemetry.InitSentry(settings); err != nil {
		logger.Warn("error tracking unavailable", "error", err)
	}
	defer telemetry.Flush()

	var (
		metrics *observability.Metrics
		wg      sync.WaitGroup
		quit    = make(chan struct{})
	)
	defer wg.Wait()
	defer close(quit)

	if settings.Telemetry.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		endpoint, err := observability.NewEndpoint(settings, m)
		if err != nil {
			return err
		}
		endpoint.Start(&wg, quit)
		metrics = m
	}

	clientCfg := blogapi.ConfigFromSettings(settings)
	if metrics != nil {
		clientCfg.Metrics = metrics.BlogAPI
	}
	client, err := blogapi.NewClient(clientCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	server, err := httpcontroller.New(settings, client, metrics)
	if err != nil {
		return err
	}
	errCh := server.Start()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}
	if err := blogapi.CloseLogger(); err != nil {
		logger.Warn("failed to close API log", "error", err)
	}

	return serveErr
}
