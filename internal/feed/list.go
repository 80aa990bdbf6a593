package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/logging"
)

// PostSource is the subset of the API client the controllers need.
type PostSource interface {
	ListPosts(ctx context.Context, page int) (*blogapi.Page, error)
	ListPostsByTag(ctx context.Context, tag string, page int) (*blogapi.Page, error)
	GetPost(ctx context.Context, slug string) (*blogapi.Post, error)
}

var (
	// ErrLoadInFlight is returned by LoadNext while a fetch for the list is running.
	ErrLoadInFlight = errors.NewStd("a page is already loading")
	// ErrNoMorePages is returned by LoadNext when the API reported no next page.
	ErrNoMorePages = errors.NewStd("no more pages")
	// ErrNotMounted is returned by LoadNext before any list was mounted.
	ErrNotMounted = errors.NewStd("list is not mounted")
	// ErrSuperseded is returned when a fetch finished after the list moved on.
	ErrSuperseded = errors.NewStd("list changed while the page was loading")
)

// ListState is the lifecycle state of a ListController.
type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListLoaded
	ListError
)

func (s ListState) String() string {
	switch s {
	case ListIdle:
		return "idle"
	case ListLoading:
		return "loading"
	case ListLoaded:
		return "loaded"
	case ListError:
		return "error"
	default:
		return "unknown"
	}
}

// ListSnapshot is an immutable copy of a list's state.
type ListSnapshot struct {
	State   ListState
	Key     string // filter key, empty for all posts, otherwise a tag slug
	Page    int    // last page merged into Posts, 0 before the first success
	Posts   []blogapi.Post
	HasMore bool
	Problem *Problem
}

// CanLoadMore reports whether a "load next" action should be offered.
func (s ListSnapshot) CanLoadMore() bool {
	return s.HasMore && s.State != ListLoading
}

// Empty reports a loaded list without posts.
func (s ListSnapshot) Empty() bool {
	return s.State == ListLoaded && len(s.Posts) == 0
}

// listTicket identifies one fetch. Results whose generation is no longer
// current are discarded.
type listTicket struct {
	generation uint64
	key        string
	page       int
}

// ListController owns paging state for one list view and accumulates pages
// in fetch order. It is safe for concurrent use; the lock is never held
// across network I/O.
type ListController struct {
	src    PostSource
	logger *slog.Logger

	mu         sync.Mutex
	mounted    bool
	state      ListState
	key        string
	page       int
	posts      []blogapi.Post
	hasMore    bool
	problem    *Problem
	generation uint64
}

// NewListController creates an idle controller reading from src.
func NewListController(src PostSource) *ListController {
	return &ListController{
		src:    src,
		logger: logging.ForService("feed").With("controller", "list"),
	}
}

// Mount resets the list to the first page of key and fetches it. Any fetch
// still running for the previous mount is discarded when it completes.
func (c *ListController) Mount(ctx context.Context, key string) (ListSnapshot, error) {
	return c.run(ctx, c.beginMount(key))
}

// SetFilter mounts key when it differs from the current filter key, otherwise
// it leaves the accumulated list untouched.
func (c *ListController) SetFilter(ctx context.Context, key string) (ListSnapshot, error) {
	c.mu.Lock()
	same := c.mounted && c.key == key
	c.mu.Unlock()

	if same {
		return c.Snapshot(), nil
	}
	return c.Mount(ctx, key)
}

// LoadNext fetches the page after the last loaded one and appends it.
func (c *ListController) LoadNext(ctx context.Context) (ListSnapshot, error) {
	t, err := c.beginNext()
	if err != nil {
		return c.Snapshot(), err
	}
	return c.run(ctx, t)
}

// Snapshot returns a copy of the current state.
func (c *ListController) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ListController) snapshotLocked() ListSnapshot {
	return ListSnapshot{
		State:   c.state,
		Key:     c.key,
		Page:    c.page,
		Posts:   slices.Clone(c.posts),
		HasMore: c.hasMore,
		Problem: c.problem,
	}
}

func (c *ListController) run(ctx context.Context, t listTicket) (ListSnapshot, error) {
	var (
		page *blogapi.Page
		err  error
	)
	if t.key == "" {
		page, err = c.src.ListPosts(ctx, t.page)
	} else {
		page, err = c.src.ListPostsByTag(ctx, t.key, t.page)
	}
	return c.resolve(t, page, err)
}

// beginMount resets state for key and enters Loading.
func (c *ListController) beginMount(key string) listTicket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.mounted = true
	c.key = key
	c.page = 0
	c.posts = nil
	c.hasMore = false
	c.problem = nil
	c.state = ListLoading

	return listTicket{generation: c.generation, key: key, page: 1}
}

// beginNext enters Loading for the next page, refusing overlapping loads.
func (c *ListController) beginNext() (listTicket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.mounted:
		return listTicket{}, ErrNotMounted
	case c.state == ListLoading:
		return listTicket{}, ErrLoadInFlight
	case !c.hasMore:
		return listTicket{}, ErrNoMorePages
	}

	c.generation++
	c.state = ListLoading
	c.problem = nil

	return listTicket{generation: c.generation, key: c.key, page: c.page + 1}, nil
}

// resolve merges a completed fetch if its ticket is still current.
func (c *ListController) resolve(t listTicket, page *blogapi.Page, err error) (ListSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation {
		c.logger.Debug("discarding stale list response", "key", t.key, "page", t.page)
		return c.snapshotLocked(), ErrSuperseded
	}

	if err != nil {
		c.state = ListError
		c.problem = ProblemFrom(err)
		c.logger.Warn("list fetch failed", "key", t.key, "page", t.page, "error", err)
		return c.snapshotLocked(), err
	}

	if t.page == 1 {
		c.posts = slices.Clone(page.Posts)
	} else {
		c.posts = append(c.posts, page.Posts...)
	}
	c.page = t.page
	c.hasMore = page.HasMore
	c.problem = nil
	c.state = ListLoaded

	c.logger.Debug("list page loaded", "key", t.key, "page", t.page, "posts", len(page.Posts), "has_more", page.HasMore)
	return c.snapshotLocked(), nil
}
