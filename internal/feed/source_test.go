package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/newsportal/reader/internal/blogapi"
)

type pageKey struct {
	tag  string
	page int
}

type pageResult struct {
	page *blogapi.Page
	err  error
}

type postResult struct {
	post *blogapi.Post
	err  error
}

// fakeSource serves scripted results. A gate registered for a request blocks
// it until the channel is closed.
type fakeSource struct {
	mu    sync.Mutex
	pages map[pageKey]pageResult
	posts map[string]postResult
	gates map[string]chan struct{}
	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages: make(map[pageKey]pageResult),
		posts: make(map[string]postResult),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeSource) setPage(tag string, page int, p *blogapi.Page, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[pageKey{tag, page}] = pageResult{p, err}
}

func (f *fakeSource) setPost(slug string, p *blogapi.Post, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[slug] = postResult{p, err}
}

// gate makes the request named by id block until the returned channel is closed.
func (f *fakeSource) gate(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[id] = ch
	return ch
}

func (f *fakeSource) enter(ctx context.Context, id string) error {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	ch := f.gates[id]
	f.mu.Unlock()

	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) ListPosts(ctx context.Context, page int) (*blogapi.Page, error) {
	return f.ListPostsByTag(ctx, "", page)
}

func (f *fakeSource) ListPostsByTag(ctx context.Context, tag string, page int) (*blogapi.Page, error) {
	if err := f.enter(ctx, fmt.Sprintf("list:%s:%d", tag, page)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.pages[pageKey{tag, page}]
	if !ok {
		return nil, &blogapi.FetchError{Kind: blogapi.KindHTTP, Status: 404, Endpoint: blogapi.EndpointListPosts}
	}
	return r.page, r.err
}

func (f *fakeSource) GetPost(ctx context.Context, slug string) (*blogapi.Post, error) {
	if err := f.enter(ctx, "post:"+slug); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.posts[slug]
	if !ok {
		return nil, &blogapi.FetchError{Kind: blogapi.KindNotFound, Status: 404, Endpoint: blogapi.EndpointGetPost}
	}
	return r.post, r.err
}

func posts(slugs ...string) []blogapi.Post {
	out := make([]blogapi.Post, 0, len(slugs))
	for i, s := range slugs {
		out = append(out, blogapi.Post{ID: int64(i + 1), Slug: s, Title: s})
	}
	return out
}

func slugs(ps []blogapi.Post) []string {
	out := make([]string, 0, len(ps))
	for i := range ps {
		out = append(out, ps[i].Slug)
	}
	return out
}
