// Package render turns posts into view models for the HTML pages and the
// terminal, and localizes UI strings.
package render

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/feed"
)

// DefaultTimeLayout is used when no layout is configured.
const DefaultTimeLayout = "02.01.2006 15:04"

// PostPath is the route of a post's detail view.
func PostPath(slug string) string {
	return "/post/" + url.PathEscape(slug)
}

// TagPath is the route of a tag's list view.
func TagPath(slug string) string {
	return "/tag/" + url.PathEscape(slug)
}

// TagView is a tag chip.
type TagView struct {
	Label string
	Href  string
}

// CardView is the compact list representation of a post. Empty fields are
// not rendered.
type CardView struct {
	Title     string
	Href      string
	Cover     string
	Timestamp string
	Datetime  string // RFC 3339, for the datetime attribute
	Tags      []TagView
}

// DetailView is the full representation of a post.
type DetailView struct {
	CardView
	Body template.HTML
	Text string // plain text body for terminals
}

// Options configures a Renderer.
type Options struct {
	Locale     string
	Location   *time.Location
	TimeLayout string
}

// OptionsFromSettings derives renderer options from UI settings.
func OptionsFromSettings(ui *conf.UISettings) Options {
	return Options{
		Locale:     ui.Locale,
		Location:   ui.Location(),
		TimeLayout: ui.TimeFormat,
	}
}

// Renderer builds view models. It is safe for concurrent use.
type Renderer struct {
	tag     language.Tag
	printer *message.Printer
	loc     *time.Location
	layout  string
	policy  *bluemonday.Policy
}

// New creates a Renderer. Unknown locales fall back to English.
func New(opts Options) *Renderer {
	tag := language.English
	if locale, err := conf.NormalizeLocale(opts.Locale); err == nil {
		tag = language.Make(locale)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	layout := opts.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		tag:     tag,
		printer: newPrinter(tag),
		loc:     loc,
		layout:  layout,
		policy:  policy,
	}
}

// Lang is the BCP 47 tag of the active locale, e.g. for the html lang attribute.
func (r *Renderer) Lang() string {
	return r.tag.String()
}

// T returns the localized form of key formatted with args.
func (r *Renderer) T(key string, args ...any) string {
	return r.printer.Sprintf(key, args...)
}

// Card builds the list representation of post. A nil post yields nil.
func (r *Renderer) Card(post *blogapi.Post) *CardView {
	if post == nil {
		return nil
	}
	c := &CardView{
		Title: post.Title,
		Href:  PostPath(post.Slug),
		Cover: strings.TrimSpace(post.Cover),
		Tags:  r.tags(post.Tags),
	}
	if post.CreatedAt != nil && !post.CreatedAt.IsZero() {
		c.Timestamp = r.FormatTime(*post.CreatedAt)
		c.Datetime = post.CreatedAt.Format(time.RFC3339)
	}
	return c
}

// Cards builds cards for a list of posts in order.
func (r *Renderer) Cards(posts []blogapi.Post) []*CardView {
	out := make([]*CardView, 0, len(posts))
	for i := range posts {
		out = append(out, r.Card(&posts[i]))
	}
	return out
}

// Detail builds the full representation of post. A nil post yields nil.
func (r *Renderer) Detail(post *blogapi.Post) *DetailView {
	card := r.Card(post)
	if card == nil {
		return nil
	}
	sanitized := r.policy.Sanitize(post.Body)
	return &DetailView{
		CardView: *card,
		Body:     bodyHTML(sanitized),
		Text:     plainText(sanitized),
	}
}

// FormatTime renders t in the configured zone and layout.
func (r *Renderer) FormatTime(t time.Time) string {
	return t.In(r.loc).Format(r.layout)
}

// Problem renders a fetch problem as an inline message. nil yields "".
func (r *Renderer) Problem(p *feed.Problem) string {
	if p == nil {
		return ""
	}
	var reason string
	switch p.Kind {
	case feed.ProblemNotFound:
		return r.T(MsgPostNotFound)
	case feed.ProblemNetwork:
		reason = r.T(MsgNetworkFailed)
	case feed.ProblemHTTP:
		reason = r.T(MsgHTTPFailed, p.Status)
	case feed.ProblemParse:
		reason = r.T(MsgParseFailed)
	case feed.ProblemInvalid:
		reason = r.T(MsgInvalid)
	default:
		reason = r.T(MsgUnknown)
	}
	return r.T(MsgError, reason)
}

// TagHeading is the title of a tag's list view.
func (r *Renderer) TagHeading(slug string) string {
	return r.T(MsgTagHeading, slug)
}

// TagIndex builds chips for the tag index.
func (r *Renderer) TagIndex(tags []blogapi.Tag) []TagView {
	return r.tags(tags)
}

func (r *Renderer) tags(tags []blogapi.Tag) []TagView {
	if len(tags) == 0 {
		return nil
	}
	out := make([]TagView, 0, len(tags))
	for _, t := range tags {
		if t.Slug == "" {
			continue
		}
		label := t.Name
		if label == "" {
			label = t.Slug
		}
		out = append(out, TagView{Label: label, Href: TagPath(t.Slug)})
	}
	return out
}

var lineBreaks = strings.NewReplacer("\r\n", "<br/>", "\n", "<br/>")

// bodyHTML converts newlines of already sanitized markup into line breaks.
func bodyHTML(sanitized string) template.HTML {
	return template.HTML(lineBreaks.Replace(sanitized)) //nolint:gosec // input is sanitized
}
