package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/internal/normalizer"
	"github.com/tomocrafter/takya-notifier/internal/router"
	"github.com/tomocrafter/takya-notifier/internal/scrape"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type fakeScraper struct {
	records []scrape.RawRecord
	err     error
}

func (f *fakeScraper) Fetch(context.Context) ([]scrape.RawRecord, error) {
	return f.records, f.err
}

// memorySnapshots mimics the store: a baseline only exists once a
// ReplaceSnapshot commit has happened.
type memorySnapshots struct {
	snapshot  models.Snapshot
	committed bool
	replaces  int
	failNext  bool
}

func (m *memorySnapshots) Snapshot(context.Context) (models.Snapshot, bool, error) {
	copied := make(models.Snapshot, len(m.snapshot))
	for id, item := range m.snapshot {
		copied[id] = item
	}
	return copied, m.committed, nil
}

func (m *memorySnapshots) ReplaceSnapshot(_ context.Context, items []models.Item) error {
	if m.failNext {
		m.failNext = false
		return errors.New("transaction failed")
	}
	m.snapshot = make(models.Snapshot, len(items))
	for _, item := range items {
		m.snapshot[item.OrderID] = item
	}
	m.committed = true
	m.replaces++
	return nil
}

type fakeSubs struct {
	subs []models.Subscription
}

func (f *fakeSubs) List(context.Context) ([]models.Subscription, error) {
	return f.subs, nil
}

type captureDispatcher struct {
	msgs []models.NotificationMessage
}

func (c *captureDispatcher) Enqueue(_ context.Context, msgs []models.NotificationMessage) {
	c.msgs = append(c.msgs, msgs...)
}

type noopReporter struct{}

func (noopReporter) CaptureError(error) {}

func newTestService(scraper *fakeScraper, snapshots *memorySnapshots, subs *fakeSubs, disp *captureDispatcher) *Service {
	log := logger.NewSlogLogger(logger.EnvLocal)
	return New(
		log,
		noopReporter{},
		scraper,
		normalizer.New(log),
		snapshots,
		subs,
		router.New(log, router.NewDedup(128, time.Minute)),
		disp,
		time.Minute,
	)
}

func akRecord(price string) scrape.RawRecord {
	return scrape.RawRecord{OrderID: "1", Name: "AK-47", Kind: "Rifle", Exterior: "Field-Tested", Price: price}
}

func TestCycleBootstrapEmitsNothing(t *testing.T) {
	scraper := &fakeScraper{records: []scrape.RawRecord{akRecord("1000")}}
	snapshots := &memorySnapshots{}
	maxPrice := 1000
	subs := &fakeSubs{subs: []models.Subscription{{
		UUID:     uuid.New(),
		Channel:  models.ChannelFCM,
		Endpoint: "token",
		Filter:   models.Filter{MaxPrice: &maxPrice},
	}}}
	disp := &captureDispatcher{}

	svc := newTestService(scraper, snapshots, subs, disp)

	require.NoError(t, svc.Cycle(context.Background()))

	require.Empty(t, disp.msgs)
	require.True(t, snapshots.committed)
	require.Len(t, snapshots.snapshot, 1)
	require.Equal(t, 1000, snapshots.snapshot[1].Price)
}

func TestCycleCreatedThenPriceChanged(t *testing.T) {
	scraper := &fakeScraper{}
	snapshots := &memorySnapshots{}
	maxPrice := 1000
	subs := &fakeSubs{subs: []models.Subscription{{
		UUID:     uuid.New(),
		Channel:  models.ChannelFCM,
		Endpoint: "token",
		Filter:   models.Filter{MaxPrice: &maxPrice},
	}}}
	disp := &captureDispatcher{}

	svc := newTestService(scraper, snapshots, subs, disp)

	// empty committed baseline
	scraper.records = nil
	require.NoError(t, svc.Cycle(context.Background()))
	require.True(t, snapshots.committed)

	// the listing appears: one Created message
	scraper.records = []scrape.RawRecord{akRecord("1000")}
	require.NoError(t, svc.Cycle(context.Background()))
	require.Len(t, disp.msgs, 1)
	require.Contains(t, disp.msgs[0].Title, "新たに追加されました")

	// price drops to 900: one PriceChanged message with both values
	scraper.records = []scrape.RawRecord{akRecord("900")}
	require.NoError(t, svc.Cycle(context.Background()))
	require.Len(t, disp.msgs, 2)
	require.Contains(t, disp.msgs[1].Title, "価格が変更されました")
	require.Contains(t, disp.msgs[1].Body, "1000 円から 900 円")
	require.Equal(t, 900, snapshots.snapshot[1].Price)
}

func TestCycleAbortsOnFetchFailure(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("network down")}
	snapshots := &memorySnapshots{}
	disp := &captureDispatcher{}

	svc := newTestService(scraper, snapshots, &fakeSubs{}, disp)

	require.Error(t, svc.Cycle(context.Background()))
	require.Empty(t, disp.msgs)
	require.False(t, snapshots.committed)
}

func TestCycleRetryAfterFailedCommitDoesNotDuplicate(t *testing.T) {
	scraper := &fakeScraper{records: []scrape.RawRecord{akRecord("1000")}}
	snapshots := &memorySnapshots{committed: true}
	subs := &fakeSubs{subs: []models.Subscription{{
		UUID:     uuid.New(),
		Channel:  models.ChannelFCM,
		Endpoint: "token",
	}}}
	disp := &captureDispatcher{}

	svc := newTestService(scraper, snapshots, subs, disp)

	// messages were handed off but the snapshot commit failed
	snapshots.failNext = true
	require.Error(t, svc.Cycle(context.Background()))
	require.Len(t, disp.msgs, 1)

	// next tick re-fetches and re-diffs the same changes; the dedup cache
	// suppresses the already dispatched message
	require.NoError(t, svc.Cycle(context.Background()))
	require.Len(t, disp.msgs, 1)
	require.True(t, snapshots.committed)
}

func TestCycleDiffOfIdenticalSnapshotsIsQuiet(t *testing.T) {
	scraper := &fakeScraper{records: []scrape.RawRecord{akRecord("1000")}}
	snapshots := &memorySnapshots{}
	subs := &fakeSubs{subs: []models.Subscription{{
		UUID:     uuid.New(),
		Channel:  models.ChannelFCM,
		Endpoint: "token",
	}}}
	disp := &captureDispatcher{}

	svc := newTestService(scraper, snapshots, subs, disp)

	require.NoError(t, svc.Cycle(context.Background())) // bootstrap
	require.NoError(t, svc.Cycle(context.Background()))
	require.NoError(t, svc.Cycle(context.Background()))

	require.Empty(t, disp.msgs)
}
