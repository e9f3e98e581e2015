package sweeper

import (
	"context"
	"time"

	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/kovalyov-valentin/news-feed-sync/internal/metrics"
	"github.com/kovalyov-valentin/news-feed-sync/internal/model"
	"github.com/samber/lo"
)

// Хранилище, из которого чистим старые записи
type RecordArchiver interface {
	QueryOnOrBefore(ctx context.Context, cutoff string, cursor string) (model.Page, error)
	Archive(ctx context.Context, id string) error
}

type Stats struct {
	Matched  int
	Archived int
	Failed   int
}

type Sweeper struct {
	records       RecordArchiver
	retentionDays int
	metrics       *metrics.Metrics
	now           func() time.Time
	// nil - локальный пояс процесса
	location *time.Location
}

func New(records RecordArchiver, retentionDays int, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		records:       records,
		retentionDays: retentionDays,
		metrics:       m,
		now:           time.Now,
	}
}

// WithClock подменяет текущее время, нужно для тестов
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// WithLocation задает пояс, в котором считаются дни. Должен совпадать с поясом дат записей
func (s *Sweeper) WithLocation(loc *time.Location) *Sweeper {
	s.location = loc
	return s
}

// Cutoff - граница очистки с точностью до дня: сегодня минус days.
// Записи с этой датой тоже попадают под очистку
func Cutoff(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(time.DateOnly)
}

// Sweep архивирует все записи старше срока хранения.
// Ошибки только логируются: очистка не должна ронять прогон
func (s *Sweeper) Sweep(ctx context.Context) Stats {
	loc := s.location
	if loc == nil {
		loc = time.Local
	}

	cutoff := Cutoff(s.now().In(loc), s.retentionDays)
	log := logger.Log.WithField("cutoff", cutoff)

	// Сначала выбираем все страницы, потом архивируем.
	// Если архивировать на ходу, курсор может съехать на уже измененной выборке
	ids := s.collect(ctx, log, cutoff)

	stats := Stats{Matched: len(ids)}

	for _, id := range ids {
		if err := s.records.Archive(ctx, id); err != nil {
			log.WithField("id", id).Errorf("Failed to archive record: %v", err)
			s.metrics.ArchiveFailures.Inc()
			stats.Failed++
			continue
		}

		s.metrics.RecordsArchived.Inc()
		stats.Archived++
	}

	log.Infof("Retention sweep done: matched=%d archived=%d failed=%d", stats.Matched, stats.Archived, stats.Failed)

	return stats
}

func (s *Sweeper) collect(ctx context.Context, log *logger.Entry, cutoff string) []string {
	var (
		ids    []string
		cursor string
	)

	for {
		page, err := s.records.QueryOnOrBefore(ctx, cutoff, cursor)
		if err != nil {
			// Архивируем то, что успели выбрать
			log.Errorf("Failed to query records for sweep: %v", err)
			break
		}

		for _, r := range page.Records {
			if r.Archived {
				continue
			}
			ids = append(ids, r.ID)
		}

		if !page.HasMore || page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		cursor = page.NextCursor
	}

	return lo.Uniq(ids)
}
