package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
)

// TokenPurger deletes decision tokens that expired before cutoff.
type TokenPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	tokens TokenPurger
	log    *logger.Logger
	now    func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, tokens TokenPurger, log *logger.Logger) (*Worker, error) {
	opt, err := redisOptFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(tokens, log)
	w.server = server
	return w, nil
}

func newWorker(tokens TokenPurger, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	w := &Worker{
		mux:    asynq.NewServeMux(),
		tokens: tokens,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	w.mux.HandleFunc(TaskPurgeDecisionTokens, w.handlePurgeDecisionTokens)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handlePurgeDecisionTokens(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePurgeDecisionTokensPayload(task)
	if err != nil {
		return err
	}

	deleted, err := w.tokens.DeleteExpired(ctx, w.now().Add(-payload.Grace()))
	if err != nil {
		w.log.DatabaseError("purge_decision_tokens", err)
		return err
	}
	if deleted > 0 {
		w.log.Info("purged expired decision tokens", "deleted", deleted)
	}
	return nil
}
