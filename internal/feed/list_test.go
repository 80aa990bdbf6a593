package feed

import (
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/blogapi"
)

func TestListConcatenatesPagesFromAPI(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponderWithQuery(http.MethodGet, "https://blog.test/posts/", "page=1",
		httpmock.NewStringResponder(http.StatusOK, `{"results": [{"slug": "a"}, {"slug": "b"}], "next": "p2"}`))
	transport.RegisterResponderWithQuery(http.MethodGet, "https://blog.test/posts/", "page=2",
		httpmock.NewStringResponder(http.StatusOK, `{"results": [{"slug": "c"}], "next": null}`))

	client, err := blogapi.NewClient(blogapi.Config{BaseURL: "https://blog.test", Transport: transport})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	c := NewListController(client)

	snap, err := c.Mount(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs(snap.Posts))
	assert.True(t, snap.CanLoadMore())
	assert.Equal(t, ListLoaded, snap.State)

	snap, err = c.LoadNext(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, slugs(snap.Posts))
	assert.False(t, snap.CanLoadMore())
	assert.Equal(t, 2, snap.Page)

	_, err = c.LoadNext(t.Context())
	require.ErrorIs(t, err, ErrNoMorePages)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestListMountReplacesAccumulatedPosts(t *testing.T) {
	src := newFakeSource()
	src.setPage("", 1, &blogapi.Page{Posts: posts("a", "b"), HasMore: true}, nil)
	src.setPage("", 2, &blogapi.Page{Posts: posts("c")}, nil)

	c := NewListController(src)
	_, err := c.Mount(t.Context(), "")
	require.NoError(t, err)
	_, err = c.LoadNext(t.Context())
	require.NoError(t, err)

	snap, err := c.Mount(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs(snap.Posts))
	assert.Equal(t, 1, snap.Page)
}

func TestListSetFilterResetsOnlyOnChange(t *testing.T) {
	src := newFakeSource()
	src.setPage("", 1, &blogapi.Page{Posts: posts("a", "b"), HasMore: true}, nil)
	src.setPage("", 2, &blogapi.Page{Posts: posts("c")}, nil)
	src.setPage("go", 1, &blogapi.Page{Posts: posts("g1")}, nil)

	c := NewListController(src)
	_, err := c.SetFilter(t.Context(), "")
	require.NoError(t, err)
	_, err = c.LoadNext(t.Context())
	require.NoError(t, err)

	snap, err := c.SetFilter(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, slugs(snap.Posts), "same key keeps the list")
	assert.Equal(t, 2, src.callCount())

	snap, err = c.SetFilter(t.Context(), "go")
	require.NoError(t, err)
	assert.Equal(t, "go", snap.Key)
	assert.Equal(t, []string{"g1"}, slugs(snap.Posts))
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.HasMore)
}

func TestListEmptyTag(t *testing.T) {
	src := newFakeSource()
	src.setPage("nothing", 1, &blogapi.Page{Posts: []blogapi.Post{}}, nil)

	c := NewListController(src)
	snap, err := c.Mount(t.Context(), "nothing")
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.False(t, snap.CanLoadMore())
	assert.Nil(t, snap.Problem)
}

func TestListErrorKeepsLoadedPosts(t *testing.T) {
	src := newFakeSource()
	src.setPage("", 1, &blogapi.Page{Posts: posts("a", "b"), HasMore: true}, nil)
	src.setPage("", 2, nil, &blogapi.FetchError{Kind: blogapi.KindHTTP, Status: http.StatusBadGateway, Endpoint: blogapi.EndpointListPosts})

	c := NewListController(src)
	_, err := c.Mount(t.Context(), "")
	require.NoError(t, err)

	snap, err := c.LoadNext(t.Context())
	require.Error(t, err)
	assert.Equal(t, ListError, snap.State)
	assert.Equal(t, []string{"a", "b"}, slugs(snap.Posts))
	assert.Equal(t, 1, snap.Page, "failed page is not counted")
	require.NotNil(t, snap.Problem)
	assert.Equal(t, ProblemHTTP, snap.Problem.Kind)
	assert.True(t, snap.CanLoadMore(), "the failed page can be retried")

	src.setPage("", 2, &blogapi.Page{Posts: posts("c")}, nil)
	snap, err = c.LoadNext(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, slugs(snap.Posts))
	assert.Nil(t, snap.Problem)
}

func TestListFirstPageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ProblemKind
	}{
		{"network", &blogapi.FetchError{Kind: blogapi.KindNetwork, Endpoint: blogapi.EndpointListPosts}, ProblemNetwork},
		{"parse", &blogapi.FetchError{Kind: blogapi.KindParse, Endpoint: blogapi.EndpointListPosts}, ProblemParse},
		{"http", &blogapi.FetchError{Kind: blogapi.KindHTTP, Status: 500, Endpoint: blogapi.EndpointListPosts}, ProblemHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.setPage("", 1, nil, tt.err)

			snap, err := NewListController(src).Mount(t.Context(), "")
			require.Error(t, err)
			assert.Equal(t, ListError, snap.State)
			assert.Empty(t, snap.Posts)
			require.NotNil(t, snap.Problem)
			assert.Equal(t, tt.kind, snap.Problem.Kind)
			assert.False(t, snap.CanLoadMore())
		})
	}
}

func TestListLoadNextGuards(t *testing.T) {
	src := newFakeSource()
	c := NewListController(src)

	_, err := c.LoadNext(t.Context())
	require.ErrorIs(t, err, ErrNotMounted)

	src.setPage("", 1, &blogapi.Page{Posts: posts("a"), HasMore: true}, nil)
	src.setPage("", 2, &blogapi.Page{Posts: posts("b")}, nil)
	_, err = c.Mount(t.Context(), "")
	require.NoError(t, err)

	release := src.gate("list::2")
	done := make(chan ListSnapshot)
	go func() {
		snap, _ := c.LoadNext(t.Context())
		done <- snap
	}()

	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, ListLoading, c.Snapshot().State)
	assert.False(t, c.Snapshot().CanLoadMore())

	_, err = c.LoadNext(t.Context())
	require.ErrorIs(t, err, ErrLoadInFlight)

	close(release)
	snap := <-done
	assert.Equal(t, []string{"a", "b"}, slugs(snap.Posts))
	assert.Equal(t, 2, src.callCount(), "guarded call made no request")
}

func TestListDiscardsSupersededResponse(t *testing.T) {
	src := newFakeSource()
	src.setPage("", 1, &blogapi.Page{Posts: posts("old"), HasMore: true}, nil)
	src.setPage("go", 1, &blogapi.Page{Posts: posts("new")}, nil)

	c := NewListController(src)
	release := src.gate("list::1")
	errc := make(chan error)
	go func() {
		_, err := c.Mount(t.Context(), "")
		errc <- err
	}()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)

	snap, err := c.Mount(t.Context(), "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, slugs(snap.Posts))

	close(release)
	require.ErrorIs(t, <-errc, ErrSuperseded)

	snap = c.Snapshot()
	assert.Equal(t, "go", snap.Key)
	assert.Equal(t, []string{"new"}, slugs(snap.Posts))
	assert.False(t, snap.HasMore)
}

func TestListSnapshotIsACopy(t *testing.T) {
	src := newFakeSource()
	src.setPage("", 1, &blogapi.Page{Posts: posts("a")}, nil)

	c := NewListController(src)
	snap, err := c.Mount(t.Context(), "")
	require.NoError(t, err)

	snap.Posts[0].Slug = "mutated"
	assert.Equal(t, "a", c.Snapshot().Posts[0].Slug)
}

func TestListStateString(t *testing.T) {
	assert.Equal(t, "idle", ListIdle.String())
	assert.Equal(t, "loading", ListLoading.String())
	assert.Equal(t, "loaded", ListLoaded.String())
	assert.Equal(t, "error", ListError.String())
}
