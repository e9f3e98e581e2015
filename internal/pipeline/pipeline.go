package pipeline

import (
	"context"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/fetcher"
	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/kovalyov-valentin/news-feed-sync/internal/metrics"
	"github.com/kovalyov-valentin/news-feed-sync/internal/sweeper"
)

const metricsJob = "news_sync"

type Sweeper interface {
	Sweep(ctx context.Context) sweeper.Stats
}

type Fetcher interface {
	Fetch(ctx context.Context) fetcher.Stats
}

// Один прогон синхронизации: сначала очистка старых записей, потом сбор новых
type Pipeline struct {
	sweeper        Sweeper
	fetcher        Fetcher
	metrics        *metrics.Metrics
	pushgatewayURL string
}

func New(s Sweeper, f Fetcher, m *metrics.Metrics, pushgatewayURL string) *Pipeline {
	return &Pipeline{
		sweeper:        s,
		fetcher:        f,
		metrics:        m,
		pushgatewayURL: pushgatewayURL,
	}
}

// Run никогда не возвращает ошибку: все сбои по источникам и статьям уже залогированы внутри
func (p *Pipeline) Run(ctx context.Context) {
	started := time.Now()
	logger.Log.Info("--- Sync started ---")

	swept := p.sweeper.Sweep(ctx)
	fetched := p.fetcher.Fetch(ctx)

	logger.Log.WithFields(map[string]interface{}{
		"archived":       swept.Archived,
		"archive_failed": swept.Failed,
		"sources":        fetched.Sources,
		"sources_failed": fetched.SourceFailures,
		"created":        fetched.Created,
		"writes_failed":  fetched.WriteFailures,
		"duration":       time.Since(started).Round(time.Millisecond).String(),
	}).Info("--- Sync finished ---")

	if p.pushgatewayURL == "" {
		return
	}

	if err := p.metrics.Push(ctx, p.pushgatewayURL, metricsJob); err != nil {
		logger.Log.Warnf("Failed to push metrics: %v", err)
	}
}
