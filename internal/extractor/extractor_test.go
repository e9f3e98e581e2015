package extractor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Market report</title></head>
<body>
	<nav><a href="/">Home</a> <a href="/markets">Markets</a></nav>
	<article>
		<h1>KOSPI closes higher as chip stocks rally</h1>
		<p>Seoul shares ended the session higher on Friday, led by semiconductor makers after strong export data lifted sentiment across the board.</p>
		<p>Foreign investors were net buyers for a third straight day, while the won strengthened against the dollar in late trade.</p>
		<p>Analysts said the rally could continue if global chip demand holds up through the end of the quarter.</p>
	</article>
	<footer>Copyright</footer>
</body>
</html>`

func staticParser(text string, err error) ParseFunc {
	return func(r io.Reader, _ *url.URL) (string, error) {
		_, _ = io.Copy(io.Discard, r)
		return text, err
	}
}

func newPageServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_FullText(t *testing.T) {
	var gotUA string
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	})

	ex := New(5*time.Second, "Mozilla/5.0 test")
	content := ex.Extract(context.Background(), srv.URL+"/news/1", "summary")

	require.Equal(t, model.OriginFull, content.Origin)
	assert.NoError(t, content.Cause)
	assert.Contains(t, content.Text, "semiconductor makers")
	assert.Equal(t, "Mozilla/5.0 test", gotUA)
}

func TestExtract_FullTextIsParserOutput(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})

	text := strings.Repeat("a", MinTextLength)
	ex := New(time.Second, "ua").WithParser(staticParser(text, nil))

	content := ex.Extract(context.Background(), srv.URL, "summary")
	assert.Equal(t, model.OriginFull, content.Origin)
	assert.Equal(t, text, content.Text)
}

func TestExtract_ShortText(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})

	// 49 символов, на один меньше порога
	short := strings.Repeat("가", MinTextLength-1)
	ex := New(time.Second, "ua").WithParser(staticParser(short, nil))

	t.Run("with summary", func(t *testing.T) {
		content := ex.Extract(context.Background(), srv.URL, "Market up")
		assert.Equal(t, model.OriginSummary, content.Origin)
		assert.Equal(t, BlockedPrefix+"Market up", content.Text)
		assert.ErrorIs(t, content.Cause, ErrContentBlocked)
	})

	t.Run("without summary", func(t *testing.T) {
		content := ex.Extract(context.Background(), srv.URL, "")
		assert.Equal(t, model.OriginUnavailable, content.Origin)
		assert.Equal(t, UnavailableText, content.Text)
		assert.ErrorIs(t, content.Cause, ErrContentBlocked)
	})
}

func TestExtract_ParseError(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("garbage"))
	})

	parseErr := errors.New("malformed document")
	ex := New(time.Second, "ua").WithParser(staticParser("", parseErr))

	content := ex.Extract(context.Background(), srv.URL, "Market up")
	assert.Equal(t, model.OriginSummary, content.Origin)
	assert.True(t, strings.HasPrefix(content.Text, ConnectionErrorPrefix))
	assert.ErrorIs(t, content.Cause, parseErr)
}

func TestExtract_Timeout(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ex := New(50*time.Millisecond, "ua")

	content := ex.Extract(context.Background(), srv.URL, "Market up")
	assert.Equal(t, model.OriginSummary, content.Origin)
	assert.Equal(t, ConnectionErrorPrefix+"Market up", content.Text)
	assert.Error(t, content.Cause)
}

func TestExtract_BadStatus(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	ex := New(time.Second, "ua")

	content := ex.Extract(context.Background(), srv.URL, "")
	assert.Equal(t, model.OriginUnavailable, content.Origin)
	assert.Equal(t, UnavailableText, content.Text)
	assert.Error(t, content.Cause)
}

func TestExtract_RelativeURL(t *testing.T) {
	ex := New(time.Second, "ua")

	content := ex.Extract(context.Background(), "/news/1", "summary")
	assert.Equal(t, model.OriginSummary, content.Origin)
	assert.Equal(t, ConnectionErrorPrefix+"summary", content.Text)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb", cleanText("\n a\n\n\n\nb \n"))
}

func TestExtract_PageSizeLimit(t *testing.T) {
	srv := newPageServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	})

	var read int
	ex := New(5*time.Second, "ua").WithParser(func(r io.Reader, _ *url.URL) (string, error) {
		data, err := io.ReadAll(r)
		read = len(data)
		return strings.Repeat("본문", 40), err
	})
	ex.maxBytes = 1024

	content := ex.Extract(context.Background(), srv.URL, "")
	assert.Equal(t, model.OriginFull, content.Origin)
	assert.Equal(t, 1024, read)
}
