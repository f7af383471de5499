package main

import (
	"context"
	"errors"
	"os"

	"github.com/fsdevblog/groph-points/internal/app"
	"github.com/fsdevblog/groph-points/internal/config"
	"github.com/fsdevblog/groph-points/internal/logger"
)

func main() {
	conf := config.MustLoadConfig()
	output, closeOutput := logger.Output(conf.LogFile)
	l := logger.New(output)
	defer func() { _ = closeOutput() }()

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			return
		}
		l.WithError(err).Error("app stopped")
		_ = closeOutput()
		os.Exit(1)
	}
}
