package app

import (
	"context"
	"fmt"

	httpapp "github.com/tomocrafter/takya-notifier/internal/app/http"
	"github.com/tomocrafter/takya-notifier/internal/config"
	notifier_http "github.com/tomocrafter/takya-notifier/internal/delivery/http"
	"github.com/tomocrafter/takya-notifier/internal/dispatcher"
	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/internal/gateway/fcm"
	"github.com/tomocrafter/takya-notifier/internal/gateway/webpush"
	"github.com/tomocrafter/takya-notifier/internal/normalizer"
	"github.com/tomocrafter/takya-notifier/internal/repository"
	"github.com/tomocrafter/takya-notifier/internal/router"
	"github.com/tomocrafter/takya-notifier/internal/scrape"
	"github.com/tomocrafter/takya-notifier/internal/services/poll"
	"github.com/tomocrafter/takya-notifier/pkg/databases/postgres"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
	"github.com/tomocrafter/takya-notifier/pkg/reporting"
)

type App struct {
	log logger.Logger

	db         *postgres.PgDB
	reporter   *reporting.Reporter
	dispatcher *dispatcher.Dispatcher
	pollSvc    *poll.Service
	HTTPServer *httpapp.App

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func NewApp(ctx context.Context, log logger.Logger, cfg *config.Config) (*App, error) {
	db, err := postgres.NewPostgresDB(ctx, log, postgresDSN(&cfg.Postgres))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	reporter, err := reporting.New(cfg.Sentry.DSN, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init error reporting: %w", err)
	}

	repo := repository.NewRepository(log, db.GetDB())

	gateways := map[models.Channel]dispatcher.Gateway{
		models.ChannelFCM: fcm.New(cfg.Dispatch.FCM.ServerKey),
		models.ChannelWebPush: webpush.New(webpush.Config{
			VAPIDPublicKey:  cfg.Dispatch.WebPush.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Dispatch.WebPush.VAPIDPrivateKey,
			Subscriber:      cfg.Dispatch.WebPush.Subscriber,
		}),
	}

	limits := map[models.Channel]dispatcher.Limits{
		models.ChannelFCM:     {RatePerSec: cfg.Dispatch.FCM.RatePerSec, Burst: cfg.Dispatch.FCM.Burst},
		models.ChannelWebPush: {RatePerSec: cfg.Dispatch.WebPush.RatePerSec, Burst: cfg.Dispatch.WebPush.Burst},
	}

	disp := dispatcher.New(log, dispatcher.Config{
		MaxRetries:  cfg.Dispatch.MaxRetries,
		SendTimeout: cfg.Dispatch.SendTimeout,
		BaseBackoff: cfg.Dispatch.BaseBackoff,
		Workers:     cfg.Dispatch.Workers,
		QueueSize:   cfg.Dispatch.QueueSize,
	}, gateways, limits, repo.DeadLetters)

	dedup := router.NewDedup(cfg.Dedup.Size, cfg.Dedup.TTL)

	pollSvc := poll.New(
		log,
		reporter,
		scrape.New(log, cfg.Scrape.URL, cfg.Scrape.UserAgent),
		normalizer.New(log),
		repo.Items,
		repo.Subscriptions,
		router.New(log, dedup),
		disp,
		cfg.Poll.Interval,
	)

	handler := notifier_http.NewHandler(log, repo.Subscriptions, repo.Subscriptions, repo.Subscriptions, repo.DeadLetters)

	return &App{
		log:        log,
		db:         db,
		reporter:   reporter,
		dispatcher: disp,
		pollSvc:    pollSvc,
		HTTPServer: httpapp.NewApp(log, handler, cfg.HTTP.Port),
	}, nil
}

// Start launches the dispatcher pool and the poll loop.
func (a *App) Start(ctx context.Context) {
	a.dispatcher.Start(ctx)

	pollCtx, cancel := context.WithCancel(ctx)
	a.pollCancel = cancel
	a.pollDone = make(chan struct{})

	go func() {
		defer close(a.pollDone)
		a.pollSvc.Run(pollCtx)
	}()

	a.log.Info("poll loop started")
}

// Stop shuts the pipeline down in dependency order: the poll loop first so
// nothing new is enqueued, then the dispatcher drain, then the outer edges.
func (a *App) Stop(ctx context.Context) error {
	if a.pollCancel != nil {
		a.pollCancel()
		<-a.pollDone
	}

	a.dispatcher.Stop()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}

	a.reporter.Close()

	return nil
}

func postgresDSN(psqlCfg *config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		psqlCfg.Host, psqlCfg.Port, psqlCfg.User, psqlCfg.DbName, psqlCfg.Pwd, psqlCfg.SslMode)
}
