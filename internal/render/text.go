package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/k3a/html2text"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/feed"
)

// plainText converts sanitized markup to plain text with Unix line breaks.
func plainText(sanitized string) string {
	withBreaks := lineBreaks.Replace(sanitized)
	return strings.TrimSpace(html2text.HTML2TextWithOptions(withBreaks, html2text.WithUnixLineBreaks()))
}

// WriteCards prints a list view for a terminal.
func (r *Renderer) WriteCards(w io.Writer, snap feed.ListSnapshot) error {
	var b strings.Builder

	if snap.Key != "" {
		fmt.Fprintf(&b, "%s\n\n", r.TagHeading(snap.Key))
	}
	for i := range snap.Posts {
		writeCard(&b, r.Card(&snap.Posts[i]))
		b.WriteString("\n")
	}
	switch {
	case snap.Problem != nil:
		fmt.Fprintf(&b, "%s\n", r.Problem(snap.Problem))
	case snap.Empty():
		fmt.Fprintf(&b, "%s\n", r.T(MsgNoPosts))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDetail prints a detail view for a terminal.
func (r *Renderer) WriteDetail(w io.Writer, snap feed.DetailSnapshot) error {
	var b strings.Builder

	switch snap.State {
	case feed.DetailFound:
		d := r.Detail(snap.Post)
		writeCard(&b, &d.CardView)
		if d.Text != "" {
			fmt.Fprintf(&b, "\n%s\n", d.Text)
		}
	case feed.DetailNotFound:
		fmt.Fprintf(&b, "%s\n", r.T(MsgPostNotFound))
	case feed.DetailError:
		fmt.Fprintf(&b, "%s\n", r.Problem(snap.Problem))
	default:
		fmt.Fprintf(&b, "%s\n", r.T(MsgLoading))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTags prints the tag index for a terminal.
func (r *Renderer) WriteTags(w io.Writer, tags []blogapi.Tag) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.T(MsgTags))
	chips := r.TagIndex(tags)
	if len(chips) == 0 {
		fmt.Fprintf(&b, "%s\n", r.T(MsgNoTags))
	}
	for _, t := range chips {
		fmt.Fprintf(&b, "  %s  %s\n", t.Label, t.Href)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCard(b *strings.Builder, c *CardView) {
	if c == nil {
		return
	}
	fmt.Fprintf(b, "%s  %s\n", c.Title, c.Href)
	if c.Timestamp != "" {
		fmt.Fprintf(b, "  %s\n", c.Timestamp)
	}
	if c.Cover != "" {
		fmt.Fprintf(b, "  %s\n", c.Cover)
	}
	if len(c.Tags) > 0 {
		labels := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			labels = append(labels, "#"+t.Label)
		}
		fmt.Fprintf(b, "  %s\n", strings.Join(labels, " "))
	}
}
