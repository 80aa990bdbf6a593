// Package read implements terminal views of the blog.
package read

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/feed"
	"github.com/newsportal/reader/internal/render"
)

// Source is the API as used by the terminal views.
type Source interface {
	feed.PostSource
	ListTags(ctx context.Context) ([]blogapi.Tag, error)
}

// Command creates the read command and its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the blog in the terminal",
	}
	cmd.PersistentFlags().IntVarP(&pages, "pages", "p", 1, "Number of list pages to load")

	withClient := func(run func(ctx context.Context, w io.Writer, src Source, r *render.Renderer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := settings.RequireBaseURL(); err != nil {
				return err
			}
			client, err := blogapi.NewClient(blogapi.ConfigFromSettings(settings))
			if err != nil {
				return err
			}
			defer client.Close()

			r := render.New(render.OptionsFromSettings(&settings.UI))
			return run(cmd.Context(), cmd.OutOrStdout(), client, r, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the latest posts",
			Args:  cobra.NoArgs,
			RunE: withClient(func(ctx context.Context, w io.Writer, src Source, r *render.Renderer, _ []string) error {
				return List(ctx, w, src, r, "", pages)
			}),
		},
		&cobra.Command{
			Use:   "tag <slug>",
			Short: "List posts carrying a tag",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(func(ctx context.Context, w io.Writer, src Source, r *render.Renderer, args []string) error {
				return List(ctx, w, src, r, args[0], pages)
			}),
		},
		&cobra.Command{
			Use:   "post <slug>",
			Short: "Show a single post",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(func(ctx context.Context, w io.Writer, src Source, r *render.Renderer, args []string) error {
				return Post(ctx, w, src, r, args[0])
			}),
		},
		&cobra.Command{
			Use:   "tags",
			Short: "List all tags",
			Args:  cobra.NoArgs,
			RunE: withClient(func(ctx context.Context, w io.Writer, src Source, r *render.Renderer, _ []string) error {
				return Tags(ctx, w, src, r)
			}),
		},
	)

	return cmd
}

// List mounts a list for key, loads up to pages pages and prints the cards.
// A failed fetch is printed inline like in the web view.
func List(ctx context.Context, w io.Writer, src feed.PostSource, r *render.Renderer, key string, pages int) error {
	list := feed.NewListController(src)

	snap, err := list.Mount(ctx, key)
	for i := 1; err == nil && i < pages && snap.CanLoadMore(); i++ {
		snap, err = list.LoadNext(ctx)
	}
	if err != nil && snap.Problem == nil {
		return err
	}
	return r.WriteCards(w, snap)
}

// Post prints a single post, or the not-found or error message.
func Post(ctx context.Context, w io.Writer, src feed.PostSource, r *render.Renderer, slug string) error {
	snap := feed.NewDetailController(src).Load(ctx, slug)
	return r.WriteDetail(w, snap)
}

// Tags prints the tag index.
func Tags(ctx context.Context, w io.Writer, src Source, r *render.Renderer) error {
	tags, err := src.ListTags(ctx)
	if err != nil {
		if _, werr := io.WriteString(w, r.Problem(feed.ProblemFrom(err))+"\n"); werr != nil {
			return errors.Join(err, werr)
		}
		return nil
	}
	return r.WriteTags(w, tags)
}
