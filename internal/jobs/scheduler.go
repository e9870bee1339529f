package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named tasks on cron specs with a leading seconds field.
// A tick that fires while the previous run of the same task is still going
// is skipped, and missed ticks are not replayed.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func NewScheduler(timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Add registers task under spec. Failures are logged and the task waits for
// its next tick.
func (s *Scheduler) Add(spec string, name string, task func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := task(ctx); err != nil {
			slog.Error("scheduled task failed", "task", name, "duration", time.Since(start), "error", err)
			return
		}
		slog.Debug("scheduled task finished", "task", name, "duration", time.Since(start))
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running tasks and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduled tasks still running at shutdown")
	}
}
