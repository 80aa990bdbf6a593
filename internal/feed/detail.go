package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/logging"
)

// DetailState is the lifecycle state of a DetailController.
type DetailState int

const (
	DetailIdle DetailState = iota
	DetailLoading
	DetailFound
	DetailNotFound
	DetailError
)

func (s DetailState) String() string {
	switch s {
	case DetailIdle:
		return "idle"
	case DetailLoading:
		return "loading"
	case DetailFound:
		return "found"
	case DetailNotFound:
		return "not_found"
	case DetailError:
		return "error"
	default:
		return "unknown"
	}
}

// DetailSnapshot is a copy of a detail view's state. Post is set only in
// DetailFound and Problem only in DetailError.
type DetailSnapshot struct {
	State   DetailState
	Slug    string
	Post    *blogapi.Post
	Problem *Problem
}

// DetailTicket identifies one post fetch.
type DetailTicket struct {
	generation uint64
	Slug       string
}

// DetailController tracks the post shown by a detail view. Only the most
// recently requested slug may change the state; earlier responses are
// dropped when they arrive.
type DetailController struct {
	src    PostSource
	logger *slog.Logger

	mu         sync.Mutex
	state      DetailState
	slug       string
	post       *blogapi.Post
	problem    *Problem
	generation uint64
}

// NewDetailController creates an idle controller reading from src.
func NewDetailController(src PostSource) *DetailController {
	return &DetailController{
		src:    src,
		logger: logging.ForService("feed").With("controller", "detail"),
	}
}

// Load fetches slug and returns the outcome for that slug. The controller's
// state only changes if slug is still the latest request when the fetch ends.
func (c *DetailController) Load(ctx context.Context, slug string) DetailSnapshot {
	t := c.Begin(slug)
	post, err := c.src.GetPost(ctx, slug)
	snap, applied := c.Resolve(t, post, err)
	if !applied {
		return outcome(slug, post, err)
	}
	return snap
}

// Begin marks slug as the current request and clears the previous post.
func (c *DetailController) Begin(slug string) DetailTicket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.slug = slug
	c.state = DetailLoading
	c.post = nil
	c.problem = nil

	return DetailTicket{generation: c.generation, Slug: slug}
}

// Resolve applies a fetch result if t is still current and reports whether it did.
func (c *DetailController) Resolve(t DetailTicket, post *blogapi.Post, err error) (DetailSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation {
		c.logger.Debug("discarding stale post response", "slug", t.Slug, "current", c.slug)
		return c.snapshotLocked(), false
	}

	s := outcome(t.Slug, post, err)
	c.state = s.State
	c.post = s.Post
	c.problem = s.Problem

	if s.State == DetailError {
		c.logger.Warn("post fetch failed", "slug", t.Slug, "error", err)
	}
	return c.snapshotLocked(), true
}

// Snapshot returns a copy of the current state.
func (c *DetailController) Snapshot() DetailSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *DetailController) snapshotLocked() DetailSnapshot {
	s := DetailSnapshot{State: c.state, Slug: c.slug, Problem: c.problem}
	if c.post != nil {
		p := *c.post
		s.Post = &p
	}
	return s
}

func outcome(slug string, post *blogapi.Post, err error) DetailSnapshot {
	switch {
	case blogapi.IsNotFound(err):
		return DetailSnapshot{State: DetailNotFound, Slug: slug}
	case err != nil:
		return DetailSnapshot{State: DetailError, Slug: slug, Problem: ProblemFrom(err)}
	case post == nil:
		return DetailSnapshot{State: DetailNotFound, Slug: slug}
	default:
		p := *post
		return DetailSnapshot{State: DetailFound, Slug: slug, Post: &p}
	}
}
