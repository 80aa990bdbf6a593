package render

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsportal/reader/internal/blogapi"
	"github.com/newsportal/reader/internal/feed"
)

func newTestRenderer(locale string) *Renderer {
	return New(Options{
		Locale:     locale,
		Location:   time.FixedZone("UTC+3", 3*60*60),
		TimeLayout: "02.01.2006 15:04",
	})
}

func fullPost() *blogapi.Post {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return &blogapi.Post{
		ID:        1,
		Slug:      "hello-world",
		Title:     "Hello",
		Cover:     "https://blog.test/media/cover.jpg",
		Body:      "first line\nsecond <b>bold</b><script>alert(1)</script>",
		CreatedAt: &created,
		Tags:      []blogapi.Tag{{Slug: "go", Name: "Go"}, {Slug: "news"}},
	}
}

func TestCard(t *testing.T) {
	r := newTestRenderer("en")

	c := r.Card(fullPost())
	require.NotNil(t, c)
	assert.Equal(t, "Hello", c.Title)
	assert.Equal(t, "/post/hello-world", c.Href)
	assert.Equal(t, "https://blog.test/media/cover.jpg", c.Cover)
	assert.Equal(t, "01.03.2024 13:30", c.Timestamp, "rendered in the configured zone")
	assert.Equal(t, "2024-03-01T10:30:00Z", c.Datetime)
	assert.Equal(t, []TagView{
		{Label: "Go", Href: "/tag/go"},
		{Label: "news", Href: "/tag/news"},
	}, c.Tags)
}

func TestCardSuppressesAbsentFields(t *testing.T) {
	r := newTestRenderer("en")

	c := r.Card(&blogapi.Post{Slug: "bare", Title: "Bare", Cover: "  "})
	require.NotNil(t, c)
	assert.Empty(t, c.Cover)
	assert.Empty(t, c.Timestamp)
	assert.Empty(t, c.Datetime)
	assert.Nil(t, c.Tags)

	assert.Nil(t, r.Card(nil))
	assert.Nil(t, r.Detail(nil))
}

func TestDetailBodyPipeline(t *testing.T) {
	r := newTestRenderer("en")

	d := r.Detail(fullPost())
	require.NotNil(t, d)

	body := string(d.Body)
	assert.Contains(t, body, "first line<br/>second <b>bold</b>")
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "alert(1)")
	assert.Equal(t, "first line\nsecond bold", d.Text)
}

func TestDetailEscapesTextBeforeLineBreaks(t *testing.T) {
	r := newTestRenderer("en")

	d := r.Detail(&blogapi.Post{Slug: "s", Title: "T", Body: "a < b\r\n<br> stays"})
	require.NotNil(t, d)
	assert.Equal(t, "a &lt; b<br/><br> stays", string(d.Body))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/post/a%20b", PostPath("a b"))
	assert.Equal(t, "/tag/c%2B%2B", TagPath("c++"))
}

func TestLocalizedStrings(t *testing.T) {
	en := newTestRenderer("en")
	ru := newTestRenderer("ru-RU")

	assert.Equal(t, "en", en.Lang())
	assert.Equal(t, "ru", ru.Lang())

	assert.Equal(t, "Load more", en.T(MsgLoadMore))
	assert.Equal(t, "Загрузить ещё", ru.T(MsgLoadMore))
	assert.Equal(t, "Тег: go", ru.TagHeading("go"))
	assert.Equal(t, "Постов нет.", ru.T(MsgNoPosts))
	assert.Equal(t, "Пост не найден.", ru.T(MsgPostNotFound))
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	r := newTestRenderer("xx-invalid-!!")
	assert.Equal(t, "en", r.Lang())
	assert.Equal(t, "No posts.", r.T(MsgNoPosts))
}

func TestRussianCatalogComplete(t *testing.T) {
	ru := newTestRenderer("ru")
	for key, want := range russian {
		if strings.Contains(key, "%") {
			continue
		}
		assert.Equal(t, want, ru.T(key), key)
	}
}

func TestProblem(t *testing.T) {
	en := newTestRenderer("en")
	ru := newTestRenderer("ru")

	tests := []struct {
		name string
		p    *feed.Problem
		en   string
		ru   string
	}{
		{"nil", nil, "", ""},
		{"not found", &feed.Problem{Kind: feed.ProblemNotFound}, "Post not found.", "Пост не найден."},
		{"http", &feed.Problem{Kind: feed.ProblemHTTP, Status: http.StatusServiceUnavailable},
			"Error: server responded with status 503", "Ошибка: сервер вернул статус 503"},
		{"network", &feed.Problem{Kind: feed.ProblemNetwork}, "Error: could not reach the server", "Ошибка: сервер недоступен"},
		{"parse", &feed.Problem{Kind: feed.ProblemParse}, "Error: unexpected response from the server", "Ошибка: неожиданный ответ сервера"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.en, en.Problem(tt.p))
			assert.Equal(t, tt.ru, ru.Problem(tt.p))
		})
	}
}

func TestWriteCards(t *testing.T) {
	r := newTestRenderer("en")

	var buf bytes.Buffer
	require.NoError(t, r.WriteCards(&buf, feed.ListSnapshot{
		State: feed.ListLoaded,
		Posts: []blogapi.Post{*fullPost(), {Slug: "bare", Title: "Bare"}},
	}))

	out := buf.String()
	assert.Contains(t, out, "Hello  /post/hello-world\n")
	assert.Contains(t, out, "  01.03.2024 13:30\n")
	assert.Contains(t, out, "  #Go #news\n")
	assert.Contains(t, out, "Bare  /post/bare\n")
	assert.NotContains(t, out, "No posts.")
}

func TestWriteCardsEmptyTag(t *testing.T) {
	r := newTestRenderer("ru")

	var buf bytes.Buffer
	require.NoError(t, r.WriteCards(&buf, feed.ListSnapshot{State: feed.ListLoaded, Key: "go", Posts: []blogapi.Post{}}))
	assert.Equal(t, "Тег: go\n\nПостов нет.\n", buf.String())
}

func TestWriteDetail(t *testing.T) {
	r := newTestRenderer("en")

	tests := []struct {
		name string
		snap feed.DetailSnapshot
		want []string
	}{
		{"found", feed.DetailSnapshot{State: feed.DetailFound, Slug: "hello-world", Post: fullPost()},
			[]string{"Hello  /post/hello-world", "first line\nsecond bold"}},
		{"not found", feed.DetailSnapshot{State: feed.DetailNotFound, Slug: "x"}, []string{"Post not found."}},
		{"error", feed.DetailSnapshot{State: feed.DetailError, Problem: &feed.Problem{Kind: feed.ProblemHTTP, Status: 500}},
			[]string{"Error: server responded with status 500"}},
		{"loading", feed.DetailSnapshot{State: feed.DetailLoading}, []string{"Loading…"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.WriteDetail(&buf, tt.snap))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteTags(t *testing.T) {
	r := newTestRenderer("en")

	var buf bytes.Buffer
	require.NoError(t, r.WriteTags(&buf, []blogapi.Tag{{Slug: "go", Name: "Go"}, {Name: "no slug"}}))
	assert.Equal(t, "Tags\n  Go  /tag/go\n", buf.String())

	buf.Reset()
	require.NoError(t, r.WriteTags(&buf, nil))
	assert.Equal(t, "Tags\nNo tags.\n", buf.String())
}
