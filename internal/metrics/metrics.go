package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "news_sync"

// Счетчики одного прогона. Процесс короткоживущий, поэтому метрики не отдаются по http,
// а при необходимости отправляются в Pushgateway в конце прогона
type Metrics struct {
	registry *prometheus.Registry

	Extractions     *prometheus.CounterVec
	RecordsCreated  *prometheus.CounterVec
	WriteFailures   *prometheus.CounterVec
	SourceFailures  *prometheus.CounterVec
	RecordsArchived prometheus.Counter
	ArchiveFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Article text extractions by fallback tier.",
		}, []string{"origin"}),
		RecordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records written to the store.",
		}, []string{"category"}),
		WriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_write_failures_total",
			Help:      "Records the store rejected.",
		}, []string{"category"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Feeds that could not be fetched or parsed.",
		}, []string{"category"}),
		RecordsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_archived_total",
			Help:      "Records archived by the retention sweep.",
		}),
		ArchiveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Records the retention sweep failed to archive.",
		}),
	}

	m.registry.MustRegister(
		m.Extractions,
		m.RecordsCreated,
		m.WriteFailures,
		m.SourceFailures,
		m.RecordsArchived,
		m.ArchiveFailures,
	)

	return m
}

// Push отправляет все счетчики в Pushgateway под указанным job
func (m *Metrics) Push(ctx context.Context, url string, job string) error {
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
