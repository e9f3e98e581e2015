package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/news-feed-sync/internal/config"
	"github.com/kovalyov-valentin/news-feed-sync/internal/extractor"
	"github.com/kovalyov-valentin/news-feed-sync/internal/fetcher"
	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/kovalyov-valentin/news-feed-sync/internal/metrics"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/kovalyov-valentin/news-feed-sync/internal/pipeline"
	"github.com/kovalyov-valentin/news-feed-sync/internal/scheduler"
	"github.com/kovalyov-valentin/news-feed-sync/internal/storage"
	"github.com/kovalyov-valentin/news-feed-sync/internal/summary"
	"github.com/kovalyov-valentin/news-feed-sync/internal/sweeper"
	_ "github.com/lib/pq"
)

// Хранилище записей, нужное и сборщику, и очистке
type recordStorage interface {
	fetcher.RecordStorage
	QueryOnOrBefore(ctx context.Context, cutoff string, cursor string) (model.Page, error)
	Archive(ctx context.Context, id string) error
}

func main() {
	// Без секретов не делаем ничего: выходим с ненулевым кодом до первого запроса
	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Debug)

	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	records, closeStorage, err := openStorage(ctx, cfg, httpClient)
	if err != nil {
		logger.Log.Fatalf("failed to open storage: %v", err)
	}
	defer closeStorage()

	// Инициализируем наши зависимости
	var (
		m        = metrics.New()
		sweep    = sweeper.New(records, cfg.RetentionDays, m)
		articles = fetcher.NewFetcher(
			records,
			config.Feeds,
			extractor.New(cfg.RequestTimeout, cfg.UserAgent),
			summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIPromt),
			m,
			fetcher.Options{
				MaxItemsPerSource: cfg.MaxItemsPerSource,
				LabeledTitles:     cfg.LabeledTitles,
				Icons:             cfg.Icons,
				FilterKeywords:    cfg.FilterKeywords,
			},
		).WithSourceFactory(fetcher.DefaultSourceFactory(httpClient, cfg.UserAgent))
		syncer = pipeline.New(sweep, articles, m, cfg.PushgatewayURL)
	)

	// Без расписания один прогон и выход, как в CI
	if cfg.Schedule == "" {
		syncer.Run(ctx)
		return
	}

	if err := scheduler.New(cfg.Schedule, syncer).Start(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Log.Errorf("scheduler failed: %v", err)
			return
		}

		logger.Log.Info("scheduler stopped")
	}
}

func openStorage(ctx context.Context, cfg config.Config, client *http.Client) (recordStorage, func(), error) {
	if cfg.Backend == config.BackendPostgres {
		db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}

		pg := storage.NewPostgresStorage(db, cfg.DatabaseID)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return pg, func() { _ = db.Close() }, nil
	}

	notion := storage.NewNotionStorage(client, storage.NotionOptions{
		BaseURL:    cfg.NotionBaseURL,
		Token:      cfg.NotionToken,
		Version:    cfg.NotionVersion,
		DatabaseID: cfg.DatabaseID,
		Properties: storage.NotionProperties{
			Title:    cfg.TitleProperty,
			URL:      cfg.URLProperty,
			Date:     cfg.DateProperty,
			Category: cfg.CategoryProperty,
		},
	})

	return notion, func() {}, nil
}
