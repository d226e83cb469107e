package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomocrafter/takya-notifier/internal/app"
	"github.com/tomocrafter/takya-notifier/internal/config"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	log := logger.NewSlogLogger(logger.SlogEnvironment(cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, log, &cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	go application.HTTPServer.RunWithPanic()

	application.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	if err = application.Stop(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fatal stop:", err)
		os.Exit(1)
	}

	log.Info("application stopped")
}
