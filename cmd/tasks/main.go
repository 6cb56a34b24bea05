package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/app"
	"taskManager/internal/cli"
	"taskManager/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := cli.New(func(ctx context.Context, configPath string) (*cli.Backend, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}

		a, err := app.New(cfg).Init(ctx)
		if err != nil {
			return nil, err
		}

		return &cli.Backend{
			Service:    a.Service(),
			NewWatcher: a.OverdueWorker,
			Close:      a.Close,
		}, nil
	})

	code := c.Execute(ctx)
	stop()
	os.Exit(code)
}
