package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<link>http://example.com</link>
		<description>test</description>
		<item>
			<title>First</title>
			<link>http://example.com/1</link>
			<description>&lt;p&gt;Market up&lt;/p&gt;</description>
			<pubDate>Wed, 03 May 2023 15:04:05 +0000</pubDate>
		</item>
		<item>
			<title>Second</title>
			<link>http://example.com/2</link>
		</item>
	</channel>
</rss>`

func newFeedServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &ua
}

func TestFetch(t *testing.T) {
	for _, parser := range []string{"", ParserGofeed} {
		t.Run("parser "+parser, func(t *testing.T) {
			srv, ua := newFeedServer(t, http.StatusOK, testFeed)

			src := New(model.Source{Category: "국내주식", FeedURL: srv.URL, Parser: parser}, &http.Client{Timeout: time.Second}, "Mozilla/5.0 test")
			assert.Equal(t, "국내주식", src.Name())

			items, err := src.Fetch(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 2)

			assert.Equal(t, "First", items[0].Title)
			assert.Equal(t, "http://example.com/1", items[0].Link)
			assert.Equal(t, "<p>Market up</p>", items[0].Summary)
			assert.True(t, items[0].PublishedAt.Equal(time.Date(2023, 5, 3, 15, 4, 5, 0, time.UTC)))

			assert.Equal(t, "Second", items[1].Title)
			assert.True(t, items[1].PublishedAt.IsZero())

			assert.Equal(t, "Mozilla/5.0 test", *ua)
		})
	}
}

func TestFetch_BadStatus(t *testing.T) {
	srv, _ := newFeedServer(t, http.StatusInternalServerError, "")

	src := New(model.Source{FeedURL: srv.URL}, http.DefaultClient, "ua")
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestFetch_MalformedFeed(t *testing.T) {
	for _, parser := range []string{"", ParserGofeed} {
		srv, _ := newFeedServer(t, http.StatusOK, "this is not a feed")

		src := New(model.Source{FeedURL: srv.URL, Parser: parser}, http.DefaultClient, "ua")
		_, err := src.Fetch(context.Background())
		require.Error(t, err)
	}
}

func TestDefaultClient(t *testing.T) {
	assert.Equal(t, DefaultTimeout, DefaultClient().Timeout)
}
