package httpapp

import (
	"context"
	"fmt"
	"net/http"

	notifier_http "github.com/tomocrafter/takya-notifier/internal/delivery/http"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type App struct {
	log        logger.Logger
	httpServer *http.Server
	port       int
}

func NewApp(log logger.Logger, handler *notifier_http.Handler, port int) *App {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.InitRoutes(),
	}

	return &App{
		log:        log,
		httpServer: httpServer,
		port:       port,
	}
}

func (a *App) RunWithPanic() {
	if err := a.Run(); err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("failed to run http server: %v", err))
	}
}

func (a *App) Run() error {
	const op = "httpapp.run"

	a.log.Info("starting http server", logger.String("op", op), logger.Int("port", a.port))

	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	const op = "httpapp.stop"

	a.log.Info("stopping http server", logger.String("op", op))

	return a.httpServer.Shutdown(ctx)
}
