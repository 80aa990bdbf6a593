package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/feed"
	"github.com/newsportal/reader/internal/render"
)

// RenderData is passed to the root layout and every content template.
type RenderData struct {
	C         echo.Context
	Page      string // content template rendered inside the layout
	Title     string
	SiteTitle string
	Lang      string
	CSRFToken string

	List  *ListView
	Post  *PostView
	Tags  *TagsView
	Error *ErrorView
}

// ListView is the post list of the index and tag pages.
type ListView struct {
	Key         string // filter key, posted back by the load-more form
	Heading     string
	Cards       []*render.CardView
	CanLoadMore bool
	Empty       bool
	Problem     string
}

// PostView is the detail page.
type PostView struct {
	Slug     string
	Detail   *render.DetailView
	NotFound bool
	Problem  string
}

// TagsView is the tag index.
type TagsView struct {
	Tags    []render.TagView
	Problem string
}

// ErrorView describes an error page.
type ErrorView struct {
	Code    int
	Message string
	Detail  string
}

func (h *Handlers) pageData(c echo.Context, page, title string) *RenderData {
	d := &RenderData{
		C:         c,
		Page:      page,
		Title:     title,
		Lang:      h.Renderer.Lang(),
		SiteTitle: "Blog",
	}
	if h.Settings != nil && h.Settings.UI.SiteTitle != "" {
		d.SiteTitle = h.Settings.UI.SiteTitle
	}
	if token, ok := c.Get(CSRFContextKey).(string); ok {
		d.CSRFToken = token
	}
	if d.Title == "" {
		d.Title = d.SiteTitle
	}
	return d
}

func (h *Handlers) listView(snap feed.ListSnapshot) *ListView {
	v := &ListView{
		Key:         snap.Key,
		Cards:       h.Renderer.Cards(snap.Posts),
		CanLoadMore: snap.CanLoadMore(),
		Empty:       snap.Empty(),
		Problem:     h.Renderer.Problem(snap.Problem),
	}
	if snap.Key != "" {
		v.Heading = h.Renderer.TagHeading(snap.Key)
	}
	return v
}

func (h *Handlers) postView(snap feed.DetailSnapshot) *PostView {
	v := &PostView{Slug: snap.Slug}
	switch snap.State {
	case feed.DetailFound:
		v.Detail = h.Renderer.Detail(snap.Post)
	case feed.DetailNotFound:
		v.NotFound = true
	case feed.DetailError:
		v.Problem = h.Renderer.Problem(snap.Problem)
	}
	return v
}
