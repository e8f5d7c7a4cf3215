package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/internal/email"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/metrics"
)

const (
	DefaultTimeout = 10 * time.Second

	statusSent    = "sent"
	statusFailed  = "failed"
	statusTimeout = "timeout"
	statusSkipped = "skipped"

	maxParallelPerBatch = 4
)

var errNoRecipient = errors.New("message has no recipient")

// Dispatcher delivers email best-effort. Callers never wait for a transport
// and never see its errors; failures are logged and counted.
type Dispatcher struct {
	sender  email.Sender
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Logger
	metrics *metrics.WorkflowMetrics
	wg      sync.WaitGroup
}

type Option func(*Dispatcher)

// WithTimeout bounds each delivery.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithMaxPerSecond caps outbound throughput. Zero leaves it unlimited.
func WithMaxPerSecond(perSecond float64) Option {
	return func(disp *Dispatcher) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			disp.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func NewDispatcher(sender email.Sender, log *logger.Logger, m *metrics.WorkflowMetrics, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Discard()
	}
	d := &Dispatcher{
		sender:  sender,
		timeout: DefaultTimeout,
		log:     log,
		metrics: m,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts delivering msg and returns immediately.
func (d *Dispatcher) Dispatch(msg email.Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.deliver(msg)
	}()
}

// DispatchAll delivers every message independently. One failure does not
// stop the others. It returns immediately.
func (d *Dispatcher) DispatchAll(msgs ...email.Message) {
	if len(msgs) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		var (
			g      errgroup.Group
			mu     sync.Mutex
			failed int
		)
		g.SetLimit(maxParallelPerBatch)
		for _, msg := range msgs {
			g.Go(func() error {
				if err := d.deliver(msg); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if failed > 0 {
			d.log.Warn("notification batch settled with failures", "total", len(msgs), "failed", failed)
		}
	}()
}

// Wait blocks until in-flight deliveries settle or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver races one transport call against the timeout. A sender that
// ignores ctx is abandoned when the timer fires.
func (d *Dispatcher) deliver(msg email.Message) error {
	start := time.Now()
	if msg.To == "" {
		d.metrics.ObserveNotification(msg.Kind, statusSkipped, 0)
		d.log.Debug("notification skipped", "kind", msg.Kind, "reason", errNoRecipient)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return d.record(msg, start, statusTimeout, fmt.Errorf("throttled: %w", err))
		}
	}

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("sender panic: %v", r)
			}
		}()
		result <- d.sender.Send(ctx, msg)
	}()

	select {
	case err := <-result:
		if err != nil {
			return d.record(msg, start, statusFailed, err)
		}
		return d.record(msg, start, statusSent, nil)
	case <-ctx.Done():
		return d.record(msg, start, statusTimeout, fmt.Errorf("delivery timed out after %s", d.timeout))
	}
}

func (d *Dispatcher) record(msg email.Message, start time.Time, status string, err error) error {
	d.metrics.ObserveNotification(msg.Kind, status, time.Since(start).Seconds())
	if err != nil {
		d.log.NotificationFailed(msg.Kind, msg.To, err)
		return err
	}
	d.log.Debug("notification sent", "kind", msg.Kind, "to", logger.MaskEmail(msg.To))
	return nil
}
