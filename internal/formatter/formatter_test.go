package formatter

import (
	"strings"
	"testing"

	"github.com/kovalyov-valentin/news-feed-sync/internal/markup"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(text string) Input {
	return Input{
		Category:    "국내주식",
		SourceLabel: "연합뉴스",
		Title:       "코스피 상승 마감",
		Link:        "https://example.com/news/1",
		Date:        "2026-10-17T09:00:00Z",
		Content:     model.Content{Text: text, Origin: model.OriginFull},
		Icon:        "📈",
	}
}

func TestFormat_Fields(t *testing.T) {
	rec := Format(input("본문"))

	assert.Equal(t, "[연합뉴스] 코스피 상승 마감", rec.Title)
	assert.Equal(t, "국내주식", rec.Category)
	assert.Equal(t, "https://example.com/news/1", rec.URL)
	assert.Equal(t, "2026-10-17T09:00:00Z", rec.Date)
	assert.Equal(t, "📈", rec.Icon)
	assert.Equal(t, CalloutLabel, rec.Callout)
	assert.Equal(t, "본문", rec.Body)
	assert.Equal(t, LinkBackPrefix+"https://example.com/news/1", rec.LinkBack)
}

func TestFormat_PlainTitle(t *testing.T) {
	in := input("본문")
	in.SourceLabel = ""
	in.Icon = ""

	rec := Format(in)
	assert.Equal(t, "코스피 상승 마감", rec.Title)
	assert.Empty(t, rec.Icon)
}

func TestFormat_Idempotent(t *testing.T) {
	in := input(strings.Repeat("가나다", 1000))
	assert.Equal(t, Format(in), Format(in))
}

func TestFormat_TruncationLaw(t *testing.T) {
	testCases := []struct {
		name   string
		length int
	}{
		{name: "short", length: 10},
		{name: "exactly at cap", length: MaxBodyLength},
		{name: "one over cap", length: MaxBodyLength + 1},
		{name: "long", length: 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("가", tc.length)
			rec := Format(input(text))

			if tc.length > MaxBodyLength {
				require.Equal(t, MaxBodyLength+markup.RuneLen(TruncationMarker), markup.RuneLen(rec.Body))
				assert.True(t, strings.HasSuffix(rec.Body, TruncationMarker))
			} else {
				require.Equal(t, text, rec.Body)
			}

			// Ссылка на оригинал есть всегда, даже после обрезки
			assert.Contains(t, rec.LinkBack, "https://example.com/news/1")
		})
	}
}

func TestFormat_Digest(t *testing.T) {
	in := input("본문")
	in.Digest = "반도체 강세로 지수 상승."

	rec := Format(in)
	assert.Equal(t, CalloutLabel+"\n"+DigestLabel+"반도체 강세로 지수 상승.", rec.Callout)
}

func TestFormat_DatePassThrough(t *testing.T) {
	in := input("본문")
	in.Date = "yesterday"

	assert.Equal(t, "yesterday", Format(in).Date)
}
