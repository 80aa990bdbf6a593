// Package status implements the backend availability probe.
package status

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/render"
)

// ErrUnavailable is returned when the API did not answer with a success status.
var ErrUnavailable = errors.NewStd("blog API unavailable")

// Pinger probes the API.
type Pinger interface {
	Ping(ctx context.Context) (int, error)
}

// Command creates the status command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the blog API is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.RequireBaseURL(); err != nil {
				return err
			}
			client, err := blogapi.NewClient(blogapi.ConfigFromSettings(settings))
			if err != nil {
				return err
			}
			defer client.Close()

			r := render.New(render.OptionsFromSettings(&settings.UI))
			return Check(cmd.Context(), cmd.OutOrStdout(), client, r)
		},
	}
}

// Check prints the availability of the API. It returns ErrUnavailable
// after printing when the API is unreachable or answered with an error.
func Check(ctx context.Context, w io.Writer, p Pinger, r *render.Renderer) error {
	code, err := p.Ping(ctx)

	var line string
	switch {
	case err != nil:
		line = r.T(render.MsgUnreachable)
	case code == http.StatusOK:
		line = r.T(render.MsgAvailable)
	default:
		line = r.T(render.MsgStatusError, code)
	}

	if _, werr := fmt.Fprintln(w, line); werr != nil {
		return werr
	}
	if err != nil || code != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}
