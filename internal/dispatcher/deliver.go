package dispatcher

import (
	"context"
	"time"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	internalErrors "github.com/tomocrafter/takya-notifier/internal/lib/errors"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

// deliver runs one message through the state machine
// Pending -> Sending -> {Delivered | Retrying -> Sending | Failed}.
// Attempts are counted per message: max retries plus the initial try, after
// which the message is dead-lettered exactly once and never retried again.
func (d *Dispatcher) deliver(ctx context.Context, msg models.NotificationMessage) {
	log := d.log.With(
		logger.String("channel", string(msg.Channel)),
		logger.String("subscription", msg.SubscriptionUUID.String()),
		logger.String("key", msg.IdempotencyKey),
	)

	status := StatusPending

	gateway, ok := d.gateways[msg.Channel]
	if !ok {
		status = StatusFailed
		log.Error("message dead-lettered", logger.Err(internalErrors.ErrUnknownChannel), logger.String("status", string(status)))
		d.deadLetter(ctx, msg, internalErrors.ErrUnknownChannel.Error(), 0)
		return
	}

	limiter := d.limiters[msg.Channel]
	maxAttempts := d.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempts := 0

loop:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		status = StatusSending
		attempts = attempt

		err := d.sendOnce(ctx, gateway, msg)
		if err == nil {
			status = StatusDelivered
			log.Debug("message delivered", logger.Int("attempts", attempts), logger.String("status", string(status)))
			return
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		status = StatusRetrying
		delay := backoff(d.cfg.BaseBackoff, attempt)
		log.Debug("send retry scheduled",
			logger.Int("attempt", attempt),
			logger.String("delay", delay.String()),
			logger.String("status", string(status)),
			logger.Err(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			lastErr = ctx.Err()
			break loop
		case <-timer.C:
		}
	}

	status = StatusFailed
	log.Error("message dead-lettered",
		logger.Int("attempts", attempts),
		logger.String("status", string(status)),
		logger.Err(lastErr),
	)
	d.deadLetter(ctx, msg, lastErr.Error(), attempts)
}

// sendOnce bounds a single delivery attempt; a timed-out send is cancelled
// and counts as a failed attempt rather than dangling into the next cycle.
func (d *Dispatcher) sendOnce(ctx context.Context, gateway Gateway, msg models.NotificationMessage) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	return gateway.Send(sendCtx, msg.Endpoint, Payload{Title: msg.Title, Body: msg.Body})
}

// deadLetter records the terminal failure. Recording survives shutdown
// cancellation so the dead letter is never silently lost.
func (d *Dispatcher) deadLetter(ctx context.Context, msg models.NotificationMessage, reason string, attempts int) {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := d.deadLetters.Record(recordCtx, msg, reason, attempts); err != nil {
		d.log.Error("failed to record dead letter", logger.Err(err))
	}
}

func backoff(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
