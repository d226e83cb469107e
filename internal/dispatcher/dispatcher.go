// Package dispatcher delivers notification messages over channel-specific
// gateways with bounded retry, per-channel rate limiting, and dead-lettering.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

// Payload is what a gateway puts on the wire for one message.
type Payload struct {
	Title string
	Body  string
}

// Gateway sends one payload to one endpoint. A returned error is a failed
// delivery attempt; implementations must respect ctx cancellation.
type Gateway interface {
	Send(ctx context.Context, endpoint string, payload Payload) error
}

type deadLetterRecorder interface {
	Record(ctx context.Context, msg models.NotificationMessage, reason string, attempts int) error
}

// Status is the delivery state of one message. Delivered and Failed are
// terminal; nothing transitions out of them.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSending   Status = "SENDING"
	StatusRetrying  Status = "RETRYING"
	StatusDelivered Status = "DELIVERED"
	StatusFailed    Status = "FAILED"
)

type Config struct {
	MaxRetries  int
	SendTimeout time.Duration
	BaseBackoff time.Duration
	Workers     int
	QueueSize   int
}

// Limits is the token bucket configuration for one channel.
type Limits struct {
	RatePerSec float64
	Burst      int
}

type Dispatcher struct {
	log logger.Logger
	cfg Config

	gateways    map[models.Channel]Gateway
	limiters    map[models.Channel]*rate.Limiter
	deadLetters deadLetterRecorder

	queue  chan models.NotificationMessage
	group  *errgroup.Group
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// New wires one gateway and one independent token bucket per channel, so
// throttling or an outage on one channel never blocks the other.
func New(
	log logger.Logger,
	cfg Config,
	gateways map[models.Channel]Gateway,
	limits map[models.Channel]Limits,
	deadLetters deadLetterRecorder,
) *Dispatcher {
	limiters := make(map[models.Channel]*rate.Limiter, len(limits))
	for channel, l := range limits {
		limiters[channel] = rate.NewLimiter(rate.Limit(l.RatePerSec), l.Burst)
	}

	return &Dispatcher{
		log:         log,
		cfg:         cfg,
		gateways:    gateways,
		limiters:    limiters,
		deadLetters: deadLetters,
		queue:       make(chan models.NotificationMessage, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until Stop is
// called or ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	d.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.group.Go(func() error {
			d.worker(ctx)
			return nil
		})
	}
}

// Enqueue hands messages to the pool. It blocks when the queue is full,
// which backpressures a poll cycle producing faster than providers accept.
func (d *Dispatcher) Enqueue(ctx context.Context, msgs []models.NotificationMessage) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.log.Warn("enqueue after stop, dropping messages", logger.Int("count", len(msgs)))
		return
	}
	d.mu.Unlock()

	for _, msg := range msgs {
		select {
		case <-ctx.Done():
			return
		case d.queue <- msg:
		}
	}
}

// Stop closes the queue and waits for in-flight deliveries to settle.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.queue)
	_ = d.group.Wait()
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for msg := range d.queue {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.deliver(ctx, msg)
	}
}
