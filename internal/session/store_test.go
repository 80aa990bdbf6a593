package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/errors"
)

type nopSource struct{}

func (nopSource) ListPosts(context.Context, int) (*blogapi.Page, error) {
	return &blogapi.Page{Posts: []blogapi.Post{}}, nil
}

func (nopSource) ListPostsByTag(context.Context, string, int) (*blogapi.Page, error) {
	return &blogapi.Page{Posts: []blogapi.Post{}}, nil
}

func (nopSource) GetPost(context.Context, string) (*blogapi.Post, error) {
	return nil, nil
}

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := NewStore(Config{CookieName: "test_session", Secret: "secret", TTL: ttl}, nopSource{})
	require.NoError(t, err)
	t.Cleanup(s.Flush)
	return s
}

// roundTrip performs Get and returns the view plus any cookie that was set.
func roundTrip(t *testing.T, s *Store, cookies ...*http.Cookie) (*View, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()

	view, err := s.Get(rec, req)
	require.NoError(t, err)
	return view, rec.Result().Cookies()
}

func TestNewStoreRequiresSecret(t *testing.T) {
	_, err := NewStore(Config{}, nopSource{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestGetCreatesAndReusesView(t *testing.T) {
	s := newTestStore(t, time.Minute)

	first, cookies := roundTrip(t, s)
	require.NotNil(t, first)
	require.NotEmpty(t, first.ID)
	require.NotNil(t, first.List(""))
	require.NotNil(t, first.Detail)
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "test_session", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	again, _ := roundTrip(t, s, c)
	assert.Same(t, first, again)
	assert.Equal(t, 1, s.Count())
}

func TestGetSeparatesBrowsers(t *testing.T) {
	s := newTestStore(t, time.Minute)

	a, _ := roundTrip(t, s)
	b, _ := roundTrip(t, s)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.List(""), b.List(""))
	assert.Equal(t, 2, s.Count())
}

func TestGetReplacesForeignCookie(t *testing.T) {
	s := newTestStore(t, time.Minute)
	other, err := NewStore(Config{CookieName: "test_session", Secret: "other", TTL: time.Minute}, nopSource{})
	require.NoError(t, err)

	foreign, cookies := roundTrip(t, other)
	view, _ := roundTrip(t, s, cookies[0])
	assert.NotEqual(t, foreign.ID, view.ID)
}

func TestGetAfterExpiry(t *testing.T) {
	s := newTestStore(t, time.Minute)

	first, cookies := roundTrip(t, s)
	s.Flush()

	again, _ := roundTrip(t, s, cookies[0])
	assert.NotEqual(t, first.ID, again.ID)
}

func TestViewKeepsListPerKey(t *testing.T) {
	s := newTestStore(t, time.Minute)
	view, _ := roundTrip(t, s)

	assert.Nil(t, view.FindList("go"))

	all := view.List("")
	tagged := view.List("go")

	assert.NotSame(t, all, tagged)
	assert.Same(t, all, view.List(""))
	assert.Same(t, tagged, view.List("go"))
	assert.Same(t, tagged, view.FindList("go"))
}
