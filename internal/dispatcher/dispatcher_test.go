package dispatcher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tomocrafter/takya-notifier/internal/dispatcher"
	"github.com/tomocrafter/takya-notifier/internal/dispatcher/mocks"
	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type recorderSpy struct {
	mu      sync.Mutex
	records []recordedLetter
}

type recordedLetter struct {
	msg      models.NotificationMessage
	reason   string
	attempts int
}

func (r *recorderSpy) Record(_ context.Context, msg models.NotificationMessage, reason string, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedLetter{msg: msg, reason: reason, attempts: attempts})
	return nil
}

func (r *recorderSpy) recorded() []recordedLetter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedLetter(nil), r.records...)
}

func testConfig(maxRetries int) dispatcher.Config {
	return dispatcher.Config{
		MaxRetries:  maxRetries,
		SendTimeout: 100 * time.Millisecond,
		BaseBackoff: time.Millisecond,
		Workers:     1,
		QueueSize:   8,
	}
}

func testLimits() map[models.Channel]dispatcher.Limits {
	return map[models.Channel]dispatcher.Limits{
		models.ChannelFCM:     {RatePerSec: 1000, Burst: 1000},
		models.ChannelWebPush: {RatePerSec: 1000, Burst: 1000},
	}
}

func testMessage(channel models.Channel) models.NotificationMessage {
	return models.NotificationMessage{
		SubscriptionUUID: uuid.New(),
		Channel:          channel,
		Endpoint:         "token-1",
		Title:            "title",
		Body:             "body",
		IdempotencyKey:   "key-1",
	}
}

func TestDeliveredOnFirstAttempt(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	gateway := mocks.NewMockGateway(ctl)
	gateway.EXPECT().Send(gomock.Any(), "token-1", dispatcher.Payload{Title: "title", Body: "body"}).Return(nil).Times(1)

	spy := &recorderSpy{}
	d := dispatcher.New(
		logger.NewSlogLogger(logger.EnvLocal),
		testConfig(3),
		map[models.Channel]dispatcher.Gateway{models.ChannelFCM: gateway},
		testLimits(),
		spy,
	)

	d.Start(context.Background())
	d.Enqueue(context.Background(), []models.NotificationMessage{testMessage(models.ChannelFCM)})
	d.Stop()

	require.Empty(t, spy.recorded())
}

func TestRetriesThenDelivered(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	gateway := mocks.NewMockGateway(ctl)
	gomock.InOrder(
		gateway.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("transient")).Times(2),
		gateway.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1),
	)

	spy := &recorderSpy{}
	d := dispatcher.New(
		logger.NewSlogLogger(logger.EnvLocal),
		testConfig(3),
		map[models.Channel]dispatcher.Gateway{models.ChannelFCM: gateway},
		testLimits(),
		spy,
	)

	d.Start(context.Background())
	d.Enqueue(context.Background(), []models.NotificationMessage{testMessage(models.ChannelFCM)})
	d.Stop()

	require.Empty(t, spy.recorded())
}

func TestExhaustedRetriesDeadLetterExactlyOnce(t *testing.T) {
	const maxRetries = 2

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	gateway := mocks.NewMockGateway(ctl)
	gateway.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("provider down")).
		Times(maxRetries + 1)

	spy := &recorderSpy{}
	d := dispatcher.New(
		logger.NewSlogLogger(logger.EnvLocal),
		testConfig(maxRetries),
		map[models.Channel]dispatcher.Gateway{models.ChannelFCM: gateway},
		testLimits(),
		spy,
	)

	msg := testMessage(models.ChannelFCM)

	d.Start(context.Background())
	d.Enqueue(context.Background(), []models.NotificationMessage{msg})
	d.Stop()

	records := spy.recorded()
	require.Len(t, records, 1)
	require.Equal(t, msg.IdempotencyKey, records[0].msg.IdempotencyKey)
	require.Equal(t, maxRetries+1, records[0].attempts)
	require.Contains(t, records[0].reason, "provider down")
}

func TestUnknownChannelDeadLettered(t *testing.T) {
	spy := &recorderSpy{}
	d := dispatcher.New(
		logger.NewSlogLogger(logger.EnvLocal),
		testConfig(3),
		map[models.Channel]dispatcher.Gateway{},
		testLimits(),
		spy,
	)

	d.Start(context.Background())
	d.Enqueue(context.Background(), []models.NotificationMessage{testMessage(models.ChannelWebPush)})
	d.Stop()

	records := spy.recorded()
	require.Len(t, records, 1)
	require.Equal(t, 0, records[0].attempts)
}

func TestChannelFailureDoesNotBlockOtherChannel(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	failing := mocks.NewMockGateway(ctl)
	failing.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("outage")).AnyTimes()

	healthy := mocks.NewMockGateway(ctl)
	healthy.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	spy := &recorderSpy{}
	cfg := testConfig(1)
	cfg.Workers = 2
	d := dispatcher.New(
		logger.NewSlogLogger(logger.EnvLocal),
		cfg,
		map[models.Channel]dispatcher.Gateway{
			models.ChannelFCM:     failing,
			models.ChannelWebPush: healthy,
		},
		testLimits(),
		spy,
	)

	d.Start(context.Background())
	d.Enqueue(context.Background(), []models.NotificationMessage{
		testMessage(models.ChannelFCM),
		testMessage(models.ChannelWebPush),
	})
	d.Stop()

	// only the failing channel's message ends up dead-lettered
	records := spy.recorded()
	require.Len(t, records, 1)
	require.Equal(t, models.ChannelFCM, records[0].msg.Channel)
}
