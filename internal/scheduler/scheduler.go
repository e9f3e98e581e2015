package scheduler

import (
	"context"

	"github.com/kovalyov-valentin/news-feed-sync/internal/logger"
	"github.com/robfig/cron/v3"
)

// То, что запускаем по расписанию. Pipeline реализует этот интерфейс
type Runner interface {
	Run(ctx context.Context)
}

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	runner Runner
}

func New(spec string, runner Runner) *Scheduler {
	return &Scheduler{
		// Если прогон не успел закончиться к следующему тику, тик пропускаем:
		// прогоны должны идти строго по одному
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		spec:   spec,
		runner: runner,
	}
}

// Start регистрирует задачу и блокируется до отмены контекста.
// После отмены ждет окончания текущего прогона
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runner.Run(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.Infof("Scheduler started with spec %q", s.spec)

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()

	return ctx.Err()
}
