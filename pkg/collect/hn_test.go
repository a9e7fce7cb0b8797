package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	items := map[string]string{
		"/topstories.json": `[1, 2, 3, 4]`,
		"/item/1.json":     `{"id":1,"type":"story","by":"alice","time":1709251200,"title":"Markets are crashing","kids":[10,11]}`,
		"/item/2.json":     `{"id":2,"type":"story","by":"bob","time":1709251260,"title":"Ask HN: is it over?","text":"<p>it&#x27;s over, nothing matters</p>"}`,
		"/item/3.json":     `{"id":3,"type":"story","deleted":true,"time":1709251320}`,
		"/item/4.json":     `{"id":4,"type":"job","time":1709251380,"title":"Hiring"}`,
		"/item/10.json":    `{"id":10,"type":"comment","by":"carol","parent":1,"time":1709251500,"text":"we&#x27;re cooked"}`,
		"/item/11.json":    `{"id":11,"type":"comment","dead":true,"parent":1,"time":1709251560,"text":"spam"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := items[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCollect_Stories(t *testing.T) {
	srv := testServer(t)
	h := NewHackerNews(WithBaseURL(srv.URL))

	units, err := h.Collect(context.Background(), FeedTop)
	require.NoError(t, err)

	// 2 stories survive; deleted and non-text types are skipped,
	// comments are off by default
	require.Len(t, units, 2)

	assert.Equal(t, "hn-1", units[0].ID)
	assert.Equal(t, PlatformHackerNews, units[0].Platform)
	assert.Equal(t, "alice", units[0].Author)
	assert.Equal(t, "Markets are crashing", units[0].Content)
	assert.Equal(t, int64(1709251200), units[0].CreatedAt.Unix())

	// story text is unescaped and appended to the title
	assert.Contains(t, units[1].Content, "Ask HN: is it over?")
	assert.Contains(t, units[1].Content, "it's over, nothing matters")
}

func TestCollect_WithComments(t *testing.T) {
	srv := testServer(t)
	h := NewHackerNews(WithBaseURL(srv.URL), WithCommentLimit(5))

	units, err := h.Collect(context.Background(), FeedTop)
	require.NoError(t, err)

	// the live comment comes through, the dead one does not
	require.Len(t, units, 3)
	assert.Equal(t, "hn-10", units[1].ID)
	assert.Equal(t, "hn-1", units[1].ParentID)
	assert.Equal(t, "we're cooked", units[1].Content)
}

func TestCollect_StoryLimit(t *testing.T) {
	srv := testServer(t)
	h := NewHackerNews(WithBaseURL(srv.URL), WithStoryLimit(1))

	units, err := h.Collect(context.Background(), FeedTop)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "hn-1", units[0].ID)
}

func TestCollect_UnknownFeed(t *testing.T) {
	h := NewHackerNews()
	_, err := h.Collect(context.Background(), "best")
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", cleanText(""))
	assert.Equal(t, "a\nb", cleanText("a<p>b"))
	assert.Equal(t, "x > y", cleanText("<i>x</i> &gt; y"))
}
