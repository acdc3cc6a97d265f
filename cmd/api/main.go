package main

import (
	"log"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := bootstrap.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	infra, err := app.Connect(cfg, logger, true)
	if err != nil {
		logger.Fatal("connect infrastructure failed", zap.Error(err))
	}
	defer infra.Close()

	router, err := app.BuildRouter(infra)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	if err := bootstrap.StartHTTPServer(
		ctx,
		router,
		bootstrap.DefaultServerConfig(cfg.Port),
		bootstrap.NewZapAuditLogger(logger),
		logger,
	); err != nil {
		logger.Error("http server failed", zap.Error(err))
	}
}
