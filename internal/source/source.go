package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
)

const ParserGofeed = "gofeed"

// Ленты больше этого размера не читаем
const maxFeedBytes = 10 << 20

// Значения для клиентов, которым не передали настройки из конфига
const (
	DefaultTimeout   = 12 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DefaultClient - http клиент с таймаутом. http.DefaultClient ждет ответа бесконечно
func DefaultClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Интерфейс источника
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// New создает клиент ленты по модели источника.
// Парсер выбирается полем Parser, по умолчанию SlyMarbo/rss
func New(m model.Source, client *http.Client, userAgent string) Source {
	if m.Parser == ParserGofeed {
		return NewGofeedSourceFromModel(m, client, userAgent)
	}

	return NewRSSSourceFromModel(m, client, userAgent)
}

// Загружает тело ленты. Оба парсера разбирают уже скачанные байты,
// чтобы таймаут, контекст и User-Agent были одинаковыми
func download(ctx context.Context, client *http.Client, userAgent string, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", url, err)
	}

	return data, nil
}
