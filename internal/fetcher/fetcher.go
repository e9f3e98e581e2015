package fetcher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/formatter"
	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/kovalyov-valentin/news-feed-sync/internal/markup"
	"github.com/kovalyov-valentin/news-feed-sync/internal/metrics"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/kovalyov-valentin/news-feed-sync/internal/source"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

type RecordStorage interface {
	Create(ctx context.Context, record model.Record) error
}

type Extractor interface {
	Extract(ctx context.Context, link string, summary string) model.Content
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Источник ленты. RSS клиент из пакета source реализует этот интерфейс
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Создает клиент ленты по модели источника
type SourceFactory func(m model.Source) Source

// Настройки, которые раньше жили в отдельных копиях скрипта
type Options struct {
	// Сколько статей брать из ленты за прогон
	MaxItemsPerSource int
	// Добавлять ли "[Источник] " к заголовку
	LabeledTitles bool
	// Ставить ли иконку источника на запись
	Icons bool
	// Статьи с этими словами в заголовке или категориях пропускаем
	FilterKeywords []string
	// Часовой пояс даты записи, nil - локальный.
	// Очистка считает границу в том же поясе
	Location *time.Location
}

// Попытка записать одну статью
type Attempt struct {
	Record model.Record
	// Ошибка хранилища, nil если запись удалась
	Err error
}

type Stats struct {
	Sources        int
	SourceFailures int
	Created        int
	WriteFailures  int
}

// Структура сборщика
type Fetcher struct {
	// Хранилище записей
	records RecordStorage
	// Список лент
	sources    []model.Source
	newSource  SourceFactory
	extractor  Extractor
	summarizer Summarizer
	metrics    *metrics.Metrics
	opts       Options
	now        func() time.Time
}

func NewFetcher(
	recordStorage RecordStorage,
	sources []model.Source,
	extractor Extractor,
	summarizer Summarizer,
	m *metrics.Metrics,
	opts Options,
) *Fetcher {
	return &Fetcher{
		records:    recordStorage,
		sources:    sources,
		extractor:  extractor,
		summarizer: summarizer,
		metrics:    m,
		opts:       opts,
		now:        time.Now,
		newSource:  DefaultSourceFactory(source.DefaultClient(), source.DefaultUserAgent),
	}
}

// WithSourceFactory задает, как строить клиент ленты
func (f *Fetcher) WithSourceFactory(factory SourceFactory) *Fetcher {
	f.newSource = factory
	return f
}

// WithClock подменяет текущее время для статей без даты публикации
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Фабрика по умолчанию: клиенты из пакета source с общим http клиентом
func DefaultSourceFactory(client *http.Client, userAgent string) SourceFactory {
	return func(m model.Source) Source {
		return source.New(m, client, userAgent)
	}
}

func (f *Fetcher) location() *time.Location {
	if f.opts.Location == nil {
		return time.Local
	}
	return f.opts.Location
}

// Fetch обходит все ленты по очереди.
// Ошибка одной ленты не мешает остальным
func (f *Fetcher) Fetch(ctx context.Context) Stats {
	var stats Stats

	for _, src := range f.sources {
		stats.Sources++

		attempts, err := f.Ingest(ctx, src)
		if err != nil {
			logger.Log.WithField("source", src.Category).Errorf("Failed to fetch feed %s: %v", src.FeedURL, err)
			f.metrics.SourceFailures.WithLabelValues(src.Category).Inc()
			stats.SourceFailures++
			continue
		}

		for _, a := range attempts {
			if a.Err != nil {
				stats.WriteFailures++
				continue
			}
			stats.Created++
		}
	}

	return stats
}

// Ingest забирает ленту одного источника и пишет первые MaxItemsPerSource статей.
// Возвращает все попытки записи. Ошибка возвращается только если ленту не удалось получить
func (f *Fetcher) Ingest(ctx context.Context, src model.Source) ([]Attempt, error) {
	items, err := f.newSource(src).Fetch(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithField("source", src.Category)
	log.Debugf("Feed has %d items", len(items))

	// Берем первые N в порядке ленты, остальные не трогаем
	items = lo.Subset(items, 0, uint(f.opts.MaxItemsPerSource))

	attempts := make([]Attempt, 0, len(items))

	for _, item := range items {
		// Проверка item, может его нужно скипнуть
		if f.itemShouldBeSkipped(item) {
			log.WithField("link", item.Link).Debug("Item skipped by filter keywords")
			continue
		}

		attempts = append(attempts, f.processItem(ctx, src, item))
	}

	return attempts, nil
}

func (f *Fetcher) processItem(ctx context.Context, src model.Source, item model.Item) Attempt {
	log := logger.Log.WithFields(map[string]interface{}{
		"source": src.Category,
		"link":   item.Link,
	})

	published := item.PublishedAt
	if published.IsZero() {
		published = f.now()
	}

	content := f.extractor.Extract(ctx, item.Link, markup.StripSummary(item.Summary))
	f.metrics.Extractions.WithLabelValues(content.Origin.String()).Inc()
	if content.Cause != nil {
		log.WithField("origin", content.Origin.String()).Warnf("Full text unavailable: %v", content.Cause)
	}

	var digest string
	if content.Origin == model.OriginFull && f.summarizer != nil {
		d, err := f.summarizer.Summarize(ctx, content.Text)
		if err != nil {
			log.Warnf("Failed to summarize article: %v", err)
		}
		digest = d
	}

	record := formatter.Format(formatter.Input{
		Category:    src.Category,
		SourceLabel: lo.Ternary(f.opts.LabeledTitles, src.Label, ""),
		Title:       item.Title,
		Link:        item.Link,
		Date:        published.In(f.location()).Format(time.RFC3339),
		Content:     content,
		Icon:        lo.Ternary(f.opts.Icons, src.Icon, ""),
		Digest:      digest,
	})

	if err := f.records.Create(ctx, record); err != nil {
		log.Errorf("Failed to save record %q: %v", item.Title, err)
		f.metrics.WriteFailures.WithLabelValues(src.Category).Inc()
		return Attempt{Record: record, Err: err}
	}

	f.metrics.RecordsCreated.WithLabelValues(src.Category).Inc()
	log.Infof("Saved: %s", record.Title)

	return Attempt{Record: record}
}

// Проходимся по списку категорий, к которым относится эта статья, и по title.
// Хотим выяснить есть ли ключевые слова на основе которых мы пропускаем эту статью
func (f *Fetcher) itemShouldBeSkipped(item model.Item) bool {
	// Сет, а не слайс, чтобы быстро проверять присутствует ли ключевое слово в наборе категорий
	categoriesSet := set.New(item.Categories...)

	for _, keyword := range f.opts.FilterKeywords {
		titleContainsKeyword := strings.Contains(strings.ToLower(item.Title), strings.ToLower(keyword))

		if categoriesSet.Contains(keyword) || titleContainsKeyword {
			return true
		}
	}

	return false
}
