// posts.go: request handlers for the post list, tag and post pages.
package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/feed"
	"github.com/newsportal/reader/internal/render"
	"github.com/newsportal/reader/internal/session"
)

// Index renders the first page of all posts.
func (h *Handlers) Index(c echo.Context) error {
	return h.mountList(c, "")
}

// Tag renders the first page of posts carrying the tag in the path.
func (h *Handlers) Tag(c echo.Context) error {
	return h.mountList(c, c.Param("slug"))
}

// mountList reloads the session's list view for key and renders it.
func (h *Handlers) mountList(c echo.Context, key string) error {
	view, err := h.view(c)
	if err != nil {
		return err
	}

	start := time.Now()
	snap, err := view.List(key).Mount(c.Request().Context(), key)
	h.observe("list", "mount", start, ignoreSuperseded(err))

	return h.renderList(c, snap, listStatus(snap, err))
}

// LoadMore appends the next page to the list view named by the form's key.
// HTMX requests get the list fragment, plain form posts get the whole page.
func (h *Handlers) LoadMore(c echo.Context) error {
	view, err := h.view(c)
	if err != nil {
		return err
	}

	key := c.FormValue("key")
	start := time.Now()
	var snap feed.ListSnapshot
	if lc := view.FindList(key); lc != nil {
		snap, err = lc.LoadNext(c.Request().Context())
	} else {
		err = feed.ErrNotMounted
	}
	switch {
	case errors.Is(err, feed.ErrNotMounted):
		target := listPath(key)
		if isHTMX(c) {
			c.Response().Header().Set("HX-Redirect", target)
			return c.NoContent(http.StatusOK)
		}
		return c.Redirect(http.StatusSeeOther, target)
	case errors.Is(err, feed.ErrLoadInFlight), errors.Is(err, feed.ErrNoMorePages):
		h.logger.Debug("load more ignored", "session_id", view.ID, "reason", err)
		err = nil
	default:
		h.observe("list", "load_next", start, ignoreSuperseded(err))
	}

	if isHTMX(c) {
		// HTMX does not swap error responses; the problem is part of the fragment.
		data := h.pageData(c, "list", "")
		data.List = h.listView(snap)
		return h.renderTemplate(c, http.StatusOK, "feed", data)
	}
	return h.renderList(c, snap, listStatus(snap, err))
}

// Post renders a single post.
func (h *Handlers) Post(c echo.Context) error {
	view, err := h.view(c)
	if err != nil {
		return err
	}

	start := time.Now()
	snap := view.Detail.Load(c.Request().Context(), c.Param("slug"))

	var loadErr error
	if snap.State == feed.DetailError {
		loadErr = errors.NewStd(string(snap.Problem.Kind))
	}
	h.observe("detail", "load", start, loadErr)

	data := h.pageData(c, "post", "")
	data.Post = h.postView(snap)

	status := http.StatusOK
	switch snap.State {
	case feed.DetailFound:
		data.Title = snap.Post.Title
	case feed.DetailNotFound:
		data.Title = h.Renderer.T(render.MsgPostNotFound)
		status = http.StatusNotFound
	case feed.DetailError:
		status = snap.Problem.HTTPStatus()
	}

	return h.renderTemplate(c, status, "root", data)
}

// TagIndex renders all tags.
func (h *Handlers) TagIndex(c echo.Context) error {
	start := time.Now()
	tags, err := h.Tags.ListTags(c.Request().Context())
	h.observe("tags", "list", start, err)

	data := h.pageData(c, "tags", h.Renderer.T(render.MsgTags))
	data.Tags = &TagsView{Tags: h.Renderer.TagIndex(tags)}

	status := http.StatusOK
	if err != nil {
		p := feed.ProblemFrom(err)
		data.Tags.Problem = h.Renderer.Problem(p)
		status = p.HTTPStatus()
	}
	return h.renderTemplate(c, status, "root", data)
}

// Healthz reports that the front end is serving.
func (h *Handlers) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) renderList(c echo.Context, snap feed.ListSnapshot, status int) error {
	title := ""
	if snap.Key != "" {
		title = h.Renderer.TagHeading(snap.Key)
	}
	data := h.pageData(c, "list", title)
	data.List = h.listView(snap)
	return h.renderTemplate(c, status, "root", data)
}

func (h *Handlers) view(c echo.Context) (*session.View, error) {
	view, err := h.Sessions.Get(c.Response(), c.Request())
	if err != nil {
		return nil, h.NewHandlerError(err, "Session unavailable", http.StatusInternalServerError)
	}
	return view, nil
}

// listStatus is the status a list page is served with. A superseded fetch
// renders the newer state and is not an error.
func listStatus(snap feed.ListSnapshot, err error) int {
	if err == nil || errors.Is(err, feed.ErrSuperseded) {
		return http.StatusOK
	}
	return snap.Problem.HTTPStatus()
}

// listPath is the page showing the list view for key.
func listPath(key string) string {
	if key == "" {
		return "/"
	}
	return render.TagPath(key)
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, feed.ErrSuperseded) {
		return nil
	}
	return err
}
