package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
)

// Periodic enqueues the recurring maintenance tasks on their cron specs.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	if log == nil {
		log = logger.Discard()
	}
	opt, err := redisOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	task, err := NewPurgeDecisionTokensTask(PurgeDecisionTokensPayload{})
	if err != nil {
		return nil, err
	}
	cronSpec := cfg.GetTokenPurgeCron()
	if cronSpec == "" {
		cronSpec = "@hourly"
	}
	if _, err := s.Register(cronSpec, task, asynq.Queue(queueName(cfg))); err != nil {
		return nil, fmt.Errorf("register token purge %q: %w", cronSpec, err)
	}

	return &Periodic{scheduler: s, log: log}, nil
}

// Run starts the scheduler and stops it when ctx is done.
func (p *Periodic) Run(ctx context.Context) error {
	if p == nil || p.scheduler == nil {
		return nil
	}
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	p.log.Info("periodic scheduler started")

	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
