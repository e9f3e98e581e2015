package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/samber/lo"
)

// RSS клиент.
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceName string

	client    *http.Client
	userAgent string
}

// Конструктор, который из модели источника создает источник уже как клиент для RSS лент
func NewRSSSourceFromModel(m model.Source, client *http.Client, userAgent string) RSSSource {
	return RSSSource{
		URL:        m.FeedURL,
		SourceName: m.Category,
		client:     client,
		userAgent:  userAgent,
	}
}

// Публичный метод, который обрабатывает данные из ленты, возвращая слайс статей в порядке ленты
func (s RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	data, err := download(ctx, s.client, s.userAgent, s.URL)
	if err != nil {
		return nil, err
	}

	feed, err := rss.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.URL, err)
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.Item {
		// Дату берем только если ее удалось разобрать
		var published time.Time
		if item.DateValid {
			published = item.Date
		}

		return model.Item{
			Title:       item.Title,
			Categories:  item.Categories,
			Link:        item.Link,
			PublishedAt: published,
			Summary:     item.Summary,
		}
	}), nil
}

func (s RSSSource) Name() string {
	return s.SourceName
}
