package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// Клиент для лент, которые SlyMarbo/rss разбирает плохо (json feed, нестандартный atom)
type GofeedSource struct {
	URL        string
	SourceName string

	client    *http.Client
	userAgent string
}

func NewGofeedSourceFromModel(m model.Source, client *http.Client, userAgent string) GofeedSource {
	return GofeedSource{
		URL:        m.FeedURL,
		SourceName: m.Category,
		client:     client,
		userAgent:  userAgent,
	}
}

func (s GofeedSource) Fetch(ctx context.Context) ([]model.Item, error) {
	data, err := download(ctx, s.client, s.userAgent, s.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.URL, err)
	}

	return lo.Map(feed.Items, func(item *gofeed.Item, _ int) model.Item {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		return model.Item{
			Title:       item.Title,
			Categories:  item.Categories,
			Link:        item.Link,
			PublishedAt: published,
			Summary:     item.Description,
		}
	}), nil
}

func (s GofeedSource) Name() string {
	return s.SourceName
}
