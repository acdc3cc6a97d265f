package main

import (
	"flag"
	"log"

	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/db/migrate"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	direction := flag.String("direction", migrate.DirectionUp, "migration direction: up or down")
	flag.Parse()

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

	if err := migrate.Run(cfg.DatabaseURL(), *direction); err != nil {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}
	logger.Info("migration complete", zap.String("direction", *direction))
}
