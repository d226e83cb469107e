// Package poll drives the notification pipeline: one scheduler runs one
// cycle at a time, so diffing is strictly sequential and deterministic.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/tomocrafter/takya-notifier/internal/diff"
	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/internal/scrape"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type scraper interface {
	Fetch(ctx context.Context) ([]scrape.RawRecord, error)
}

type recordNormalizer interface {
	Normalize(records []scrape.RawRecord, prev models.Snapshot) []models.Item
}

type snapshotRepository interface {
	Snapshot(ctx context.Context) (models.Snapshot, bool, error)
	ReplaceSnapshot(ctx context.Context, items []models.Item) error
}

type subscriptionLister interface {
	List(ctx context.Context) ([]models.Subscription, error)
}

type messageRouter interface {
	Route(events []models.ChangeEvent, subs []models.Subscription) []models.NotificationMessage
}

type messageDispatcher interface {
	Enqueue(ctx context.Context, msgs []models.NotificationMessage)
}

type errorReporter interface {
	CaptureError(err error)
}

type Service struct {
	log      logger.Logger
	reporter errorReporter

	scraper    scraper
	normalizer recordNormalizer
	snapshots  snapshotRepository
	subs       subscriptionLister
	router     messageRouter
	dispatcher messageDispatcher

	interval time.Duration
}

func New(
	log logger.Logger,
	reporter errorReporter,
	scraper scraper,
	normalizer recordNormalizer,
	snapshots snapshotRepository,
	subs subscriptionLister,
	router messageRouter,
	dispatcher messageDispatcher,
	interval time.Duration,
) *Service {
	return &Service{
		log:        log,
		reporter:   reporter,
		scraper:    scraper,
		normalizer: normalizer,
		snapshots:  snapshots,
		subs:       subs,
		router:     router,
		dispatcher: dispatcher,
		interval:   interval,
	}
}

// Run executes one cycle immediately, then one per tick until ctx is
// cancelled. A failed cycle is logged and reported; the next tick starts
// over from durably committed state, so nothing is skipped or double-fired.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.Cycle(ctx); err != nil {
			s.log.Error("poll cycle failed", logger.Err(err))
			s.reporter.CaptureError(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cycle runs the pipeline once: fetch, normalize, diff against the previous
// snapshot, route matching events, hand messages to the dispatcher, then
// commit the new snapshot as the baseline for the next cycle. The commit
// comes after the messages are handed off; if it fails or the process dies
// first, the next cycle re-diffs the same changes and the router's dedup
// cache suppresses the repeats.
func (s *Service) Cycle(ctx context.Context) error {
	const op = "services.poll.Cycle"

	start := time.Now()

	records, err := s.scraper.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	prev, hasBaseline, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	items := s.normalizer.Normalize(records, prev)

	next := make(models.Snapshot, len(items))
	for _, item := range items {
		next[item.OrderID] = item
	}

	if !hasBaseline {
		// First run ever: persist the baseline without emitting events so a
		// fresh deployment does not fire a notification for every listing.
		persisted := make([]models.Item, 0, len(next))
		for _, item := range next {
			persisted = append(persisted, item)
		}
		if err = s.snapshots.ReplaceSnapshot(ctx, persisted); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("baseline snapshot persisted", logger.Int("items", len(next)))
		return nil
	}

	events := diff.Diff(prev, next)

	var dispatched int
	if len(events) > 0 {
		subs, err := s.subs.List(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		msgs := s.router.Route(events, subs)
		if len(msgs) > 0 {
			s.dispatcher.Enqueue(ctx, msgs)
		}
		dispatched = len(msgs)
	}

	persisted := make([]models.Item, 0, len(next))
	for _, item := range next {
		persisted = append(persisted, item)
	}
	if err = s.snapshots.ReplaceSnapshot(ctx, persisted); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("poll cycle complete",
		logger.Int("items", len(next)),
		logger.Int("events", len(events)),
		logger.Int("messages", dispatched),
		logger.String("took", time.Since(start).String()),
	)

	return nil
}
